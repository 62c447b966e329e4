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

// DecideSessionCommand is the mentor's decision on a pending request:
// approve moves it to scheduled, reject cancels it.
type DecideSessionCommand struct {
	SessionID uuid.UUID
	MentorID  uuid.UUID
	Approve   bool
}

// DecideSessionHandler applies approve/reject decisions.
type DecideSessionHandler struct {
	schedules   schedule.Repository
	sessions    session.Repository
	invalidator AvailabilityInvalidator
	events      shared.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewDecideSessionHandler creates the handler.
func NewDecideSessionHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	invalidator AvailabilityInvalidator,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *slog.Logger,
) *DecideSessionHandler {
	return &DecideSessionHandler{
		schedules:   schedules,
		sessions:    sessions,
		invalidator: invalidator,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

// Handle runs the command. Only the mentor owning the claimed schedule may
// decide; a rejection releases the slot back to available.
func (h *DecideSessionHandler) Handle(ctx context.Context, cmd DecideSessionCommand) (*session.Session, error) {
	const op = "DecideSession"

	if cmd.SessionID == uuid.Nil || cmd.MentorID == uuid.Nil {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "session id and mentor id are required")
	}

	sess, err := h.sessions.GetByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	sch, err := h.schedules.GetByID(ctx, sess.ScheduleID)
	if err != nil {
		return nil, err
	}
	if sch.MentorID != cmd.MentorID {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"session does not belong to this mentor")
	}

	now := h.clock.Now()
	if cmd.Approve {
		err = sess.Approve(now)
	} else {
		err = sess.Reject(now)
	}
	if err != nil {
		return nil, err
	}

	if err := h.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	// A rejection frees the slot, so the cached view changes either way.
	if err := h.invalidator.InvalidateMentor(ctx, sch.MentorID); err != nil {
		h.logger.Warn("failed to invalidate availability cache",
			slog.String("mentor_id", sch.MentorID.String()),
			slog.Any("error", err))
	}
	if h.events != nil {
		if err := h.events.Publish(session.NewDecidedEvent(sess, cmd.MentorID, cmd.Approve)); err != nil {
			h.logger.Warn("failed to publish session event", slog.Any("error", err))
		}
	}

	h.logger.Info("session decided",
		slog.String("session_id", sess.ID.String()),
		slog.Bool("approved", cmd.Approve))

	return sess, nil
}
