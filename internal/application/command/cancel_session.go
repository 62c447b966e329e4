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

// CancelSessionCommand cancels an active session, freeing its slot.
type CancelSessionCommand struct {
	SessionID uuid.UUID
}

// CancelSessionHandler cancels sessions. The cancelled session stays on
// record; only its schedule claim is released.
type CancelSessionHandler struct {
	schedules   schedule.Repository
	sessions    session.Repository
	invalidator AvailabilityInvalidator
	events      shared.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewCancelSessionHandler creates the handler.
func NewCancelSessionHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	invalidator AvailabilityInvalidator,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *slog.Logger,
) *CancelSessionHandler {
	return &CancelSessionHandler{
		schedules:   schedules,
		sessions:    sessions,
		invalidator: invalidator,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

// Handle runs the command.
func (h *CancelSessionHandler) Handle(ctx context.Context, cmd CancelSessionCommand) (*session.Session, error) {
	if cmd.SessionID == uuid.Nil {
		return nil, shared.NewDomainError("session", "CancelSession", shared.ErrInvalidID, "session id is required")
	}

	sess, err := h.sessions.GetByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Cancel(h.clock.Now()); err != nil {
		return nil, err
	}
	if err := h.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if sch, err := h.schedules.GetByID(ctx, sess.ScheduleID); err == nil {
		if err := h.invalidator.InvalidateMentor(ctx, sch.MentorID); err != nil {
			h.logger.Warn("failed to invalidate availability cache",
				slog.String("mentor_id", sch.MentorID.String()),
				slog.Any("error", err))
		}
	}
	if h.events != nil {
		if err := h.events.Publish(session.NewLifecycleEvent(shared.EventSessionCancelled, sess)); err != nil {
			h.logger.Warn("failed to publish session event", slog.Any("error", err))
		}
	}

	h.logger.Info("session cancelled", slog.String("session_id", sess.ID.String()))
	return sess, nil
}
