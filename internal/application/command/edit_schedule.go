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

// EditScheduleCommand replaces one existing schedule's block.
type EditScheduleCommand struct {
	ScheduleID uuid.UUID
	Block      schedule.TimeBlock
}

// Validate validates the command shape.
func (c EditScheduleCommand) Validate() error {
	if c.ScheduleID == uuid.Nil {
		return shared.NewDomainError("schedule", "EditSchedule", shared.ErrInvalidID, "schedule id is required")
	}
	return nil
}

// EditScheduleHandler replaces a schedule's block after re-validating it
// against the mentor's other schedules. Editing a claimed schedule is
// rejected: the booked learner is relying on the advertised time.
type EditScheduleHandler struct {
	schedules   schedule.Repository
	sessions    session.Repository
	validator   *schedule.Validator
	invalidator AvailabilityInvalidator
	events      shared.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewEditScheduleHandler creates the handler.
func NewEditScheduleHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	validator *schedule.Validator,
	invalidator AvailabilityInvalidator,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *slog.Logger,
) *EditScheduleHandler {
	return &EditScheduleHandler{
		schedules:   schedules,
		sessions:    sessions,
		validator:   validator,
		invalidator: invalidator,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

// Handle runs the command.
func (h *EditScheduleHandler) Handle(ctx context.Context, cmd EditScheduleCommand) (*schedule.Schedule, error) {
	const op = "EditSchedule"

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	sch, err := h.schedules.GetByID(ctx, cmd.ScheduleID)
	if err != nil {
		return nil, err
	}

	claims, err := h.sessions.ListActiveBySchedules(ctx, []uuid.UUID{sch.ID})
	if err != nil {
		return nil, fmt.Errorf("check active claims: %w", err)
	}
	if len(claims) > 0 {
		return nil, shared.NewDomainError("schedule", op, shared.ErrScheduleInUse,
			"schedule is claimed by an active session")
	}

	now := h.clock.Now()
	horizonEnd := now.Add(schedule.MaxLeadTime + schedule.MaxBatchSpan)
	persisted, err := h.schedules.ListByMentor(ctx, sch.MentorID, now, horizonEnd)
	if err != nil {
		return nil, fmt.Errorf("list persisted schedules: %w", err)
	}
	others := make([]schedule.TimeBlock, 0, len(persisted))
	for _, other := range persisted {
		if other.ID == sch.ID {
			continue
		}
		others = append(others, other.Block)
	}

	if err := h.validator.ValidateReplacement(cmd.Block, others); err != nil {
		return nil, err
	}

	sch.Replace(cmd.Block)
	if err := h.schedules.Update(ctx, sch); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	if err := h.invalidator.InvalidateMentor(ctx, sch.MentorID); err != nil {
		h.logger.Warn("failed to invalidate availability cache",
			slog.String("mentor_id", sch.MentorID.String()),
			slog.Any("error", err))
	}
	if h.events != nil {
		if err := h.events.Publish(schedule.NewEditedEvent(sch)); err != nil {
			h.logger.Warn("failed to publish schedule event", slog.Any("error", err))
		}
	}

	h.logger.Info("schedule edited", slog.String("schedule_id", sch.ID.String()))
	return sch, nil
}
