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

// CompleteSessionCommand marks a held session as completed.
type CompleteSessionCommand struct {
	SessionID uuid.UUID
}

// CompleteSessionHandler completes sessions once their slot has ended.
type CompleteSessionHandler struct {
	schedules schedule.Repository
	sessions  session.Repository
	events    shared.EventPublisher
	clock     shared.Clock
	logger    *slog.Logger
}

// NewCompleteSessionHandler creates the handler.
func NewCompleteSessionHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *slog.Logger,
) *CompleteSessionHandler {
	return &CompleteSessionHandler{
		schedules: schedules,
		sessions:  sessions,
		events:    events,
		clock:     clock,
		logger:    logger,
	}
}

// Handle runs the command. Completing an already-completed session is a
// no-op; completing from any other state than scheduled, or before the slot
// has ended, fails.
func (h *CompleteSessionHandler) Handle(ctx context.Context, cmd CompleteSessionCommand) (*session.Session, error) {
	if cmd.SessionID == uuid.Nil {
		return nil, shared.NewDomainError("session", "CompleteSession", shared.ErrInvalidID, "session id is required")
	}

	sess, err := h.sessions.GetByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == session.StatusCompleted {
		return sess, nil
	}

	sch, err := h.schedules.GetByID(ctx, sess.ScheduleID)
	if err != nil {
		return nil, err
	}

	if err := sess.Complete(sch.End(), h.clock.Now()); err != nil {
		return nil, err
	}
	if err := h.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if h.events != nil {
		if err := h.events.Publish(session.NewLifecycleEvent(shared.EventSessionCompleted, sess)); err != nil {
			h.logger.Warn("failed to publish session event", slog.Any("error", err))
		}
	}

	h.logger.Info("session completed", slog.String("session_id", sess.ID.String()))
	return sess, nil
}
