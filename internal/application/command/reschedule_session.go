package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// RescheduleSessionCommand proposes moving a scheduled session to a
// different, currently available slot of the same mentor.
type RescheduleSessionCommand struct {
	SessionID     uuid.UUID
	MentorID      uuid.UUID
	NewScheduleID uuid.UUID
	Notes         string
}

// ConfirmRescheduleCommand completes a proposed move. Only then is the
// original slot released; while the session is rescheduling it keeps its
// claim so nobody else can book the slot out from under an undecided move.
type ConfirmRescheduleCommand struct {
	SessionID uuid.UUID
}

// RescheduleSessionHandler runs the two-step reschedule flow.
type RescheduleSessionHandler struct {
	schedules   schedule.Repository
	sessions    session.Repository
	invalidator AvailabilityInvalidator
	events      shared.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewRescheduleSessionHandler creates the handler.
func NewRescheduleSessionHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	invalidator AvailabilityInvalidator,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *slog.Logger,
) *RescheduleSessionHandler {
	return &RescheduleSessionHandler{
		schedules:   schedules,
		sessions:    sessions,
		invalidator: invalidator,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

// Handle proposes the move.
func (h *RescheduleSessionHandler) Handle(ctx context.Context, cmd RescheduleSessionCommand) (*session.Session, error) {
	const op = "RescheduleSession"

	if cmd.SessionID == uuid.Nil || cmd.MentorID == uuid.Nil {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "session id and mentor id are required")
	}

	sess, err := h.sessions.GetByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	current, err := h.schedules.GetByID(ctx, sess.ScheduleID)
	if err != nil {
		return nil, err
	}
	if current.MentorID != cmd.MentorID {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"session does not belong to this mentor")
	}

	target, err := h.schedules.GetByID(ctx, cmd.NewScheduleID)
	if err != nil {
		return nil, err
	}
	if target.MentorID != cmd.MentorID {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"target schedule belongs to a different mentor")
	}

	now := h.clock.Now()
	if !target.Start().After(now) {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"target schedule start has already passed")
	}
	claims, err := h.sessions.ListActiveBySchedules(ctx, []uuid.UUID{target.ID})
	if err != nil {
		return nil, fmt.Errorf("check target claims: %w", err)
	}
	if len(claims) > 0 {
		return nil, shared.NewDomainError("session", op, shared.ErrSlotClaimed,
			"target schedule is already claimed")
	}

	if err := sess.BeginReschedule(cmd.NewScheduleID, cmd.Notes, now); err != nil {
		return nil, err
	}
	if err := h.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if h.events != nil {
		if err := h.events.Publish(session.NewReschedulingEvent(sess, cmd.NewScheduleID)); err != nil {
			h.logger.Warn("failed to publish session event", slog.Any("error", err))
		}
	}

	h.logger.Info("session reschedule proposed",
		slog.String("session_id", sess.ID.String()),
		slog.String("new_schedule_id", cmd.NewScheduleID.String()))

	return sess, nil
}

// Confirm completes the move: the session swaps to the pending target slot
// and the original slot goes back to available. The swap is subject to the
// same uniqueness guarantee as booking, so a target claimed in the meantime
// rejects the confirmation with ErrSlotClaimed.
func (h *RescheduleSessionHandler) Confirm(ctx context.Context, cmd ConfirmRescheduleCommand) (*session.Session, error) {
	const op = "ConfirmReschedule"

	if cmd.SessionID == uuid.Nil {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "session id is required")
	}

	sess, err := h.sessions.GetByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	oldScheduleID := sess.ScheduleID

	now := h.clock.Now()
	if err := sess.ConfirmReschedule(now); err != nil {
		return nil, err
	}
	if err := h.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	sch, err := h.schedules.GetByID(ctx, sess.ScheduleID)
	if err == nil {
		if err := h.invalidator.InvalidateMentor(ctx, sch.MentorID); err != nil {
			h.logger.Warn("failed to invalidate availability cache",
				slog.String("mentor_id", sch.MentorID.String()),
				slog.Any("error", err))
		}
		if h.events != nil {
			if err := h.events.Publish(session.NewDecidedEvent(sess, sch.MentorID, true)); err != nil {
				h.logger.Warn("failed to publish session event", slog.Any("error", err))
			}
		}
	}

	h.logger.Info("session reschedule confirmed",
		slog.String("session_id", sess.ID.String()),
		slog.String("old_schedule_id", oldScheduleID.String()),
		slog.String("schedule_id", sess.ScheduleID.String()))

	return sess, nil
}
