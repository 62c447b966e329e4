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

// DeleteScheduleCommand removes a published schedule.
type DeleteScheduleCommand struct {
	ScheduleID uuid.UUID
}

// DeleteScheduleHandler deletes schedules that no active session references.
type DeleteScheduleHandler struct {
	schedules   schedule.Repository
	sessions    session.Repository
	invalidator AvailabilityInvalidator
	events      shared.EventPublisher
	logger      *slog.Logger
}

// NewDeleteScheduleHandler creates the handler.
func NewDeleteScheduleHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	invalidator AvailabilityInvalidator,
	events shared.EventPublisher,
	logger *slog.Logger,
) *DeleteScheduleHandler {
	return &DeleteScheduleHandler{
		schedules:   schedules,
		sessions:    sessions,
		invalidator: invalidator,
		events:      events,
		logger:      logger,
	}
}

// Handle runs the command.
func (h *DeleteScheduleHandler) Handle(ctx context.Context, cmd DeleteScheduleCommand) error {
	const op = "DeleteSchedule"

	if cmd.ScheduleID == uuid.Nil {
		return shared.NewDomainError("schedule", op, shared.ErrInvalidID, "schedule id is required")
	}

	sch, err := h.schedules.GetByID(ctx, cmd.ScheduleID)
	if err != nil {
		return err
	}

	claims, err := h.sessions.ListActiveBySchedules(ctx, []uuid.UUID{sch.ID})
	if err != nil {
		return fmt.Errorf("check active claims: %w", err)
	}
	if len(claims) > 0 {
		return shared.NewDomainError("schedule", op, shared.ErrScheduleInUse,
			"schedule is claimed by an active session")
	}

	if err := h.schedules.Delete(ctx, sch.ID); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}

	if err := h.invalidator.InvalidateMentor(ctx, sch.MentorID); err != nil {
		h.logger.Warn("failed to invalidate availability cache",
			slog.String("mentor_id", sch.MentorID.String()),
			slog.Any("error", err))
	}
	if h.events != nil {
		if err := h.events.Publish(schedule.NewDeletedEvent(sch)); err != nil {
			h.logger.Warn("failed to publish schedule event", slog.Any("error", err))
		}
	}

	h.logger.Info("schedule deleted", slog.String("schedule_id", sch.ID.String()))
	return nil
}
