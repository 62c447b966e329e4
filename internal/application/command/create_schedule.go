package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// CreateScheduleCommand is a mentor's submission of one week of availability,
// optionally repeated weekly.
type CreateScheduleCommand struct {
	MentorID    uuid.UUID
	Blocks      []schedule.TimeBlock
	Repeating   bool
	RepeatWeeks int
}

// Validate validates the command shape; temporal rules live in the validator.
func (c CreateScheduleCommand) Validate() error {
	if c.MentorID == uuid.Nil {
		return shared.NewDomainError("schedule", "CreateSchedule", shared.ErrInvalidID, "mentor id is required")
	}
	if len(c.Blocks) == 0 {
		return shared.NewDomainError("schedule", "CreateSchedule", shared.ErrEmptyValue, "at least one time block is required")
	}
	return nil
}

// CreateScheduleHandler validates, expands, and persists schedule batches.
type CreateScheduleHandler struct {
	schedules   schedule.Repository
	validator   *schedule.Validator
	invalidator AvailabilityInvalidator
	events      shared.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewCreateScheduleHandler creates the handler.
func NewCreateScheduleHandler(
	schedules schedule.Repository,
	validator *schedule.Validator,
	invalidator AvailabilityInvalidator,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *slog.Logger,
) *CreateScheduleHandler {
	return &CreateScheduleHandler{
		schedules:   schedules,
		validator:   validator,
		invalidator: invalidator,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

// Handle runs the command. The whole batch is applied atomically: a single
// violated block rejects every schedule in the submission.
func (h *CreateScheduleHandler) Handle(ctx context.Context, cmd CreateScheduleCommand) ([]*schedule.Schedule, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()

	// Conflicts are checked against everything the mentor already has in the
	// publishable horizon, replica weeks included.
	horizonEnd := now.Add(schedule.MaxLeadTime + schedule.MaxBatchSpan)
	persisted, err := h.schedules.ListByMentor(ctx, cmd.MentorID, now, horizonEnd)
	if err != nil {
		return nil, fmt.Errorf("list persisted schedules: %w", err)
	}
	existing := make([]schedule.TimeBlock, 0, len(persisted))
	for _, s := range persisted {
		existing = append(existing, s.Block)
	}

	expanded, err := h.validator.ValidateAndExpand(schedule.BatchInput{
		Blocks:      cmd.Blocks,
		Repeating:   cmd.Repeating,
		RepeatWeeks: cmd.RepeatWeeks,
	}, existing)
	if err != nil {
		return nil, err
	}

	created := make([]*schedule.Schedule, 0, len(expanded))
	for _, block := range expanded {
		created = append(created, schedule.New(cmd.MentorID, block, now))
	}
	if err := h.schedules.CreateBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("persist schedule batch: %w", err)
	}

	if err := h.invalidator.InvalidateMentor(ctx, cmd.MentorID); err != nil {
		h.logger.Warn("failed to invalidate availability cache",
			slog.String("mentor_id", cmd.MentorID.String()),
			slog.Any("error", err))
	}
	for _, s := range created {
		h.publish(schedule.NewPublishedEvent(s))
	}

	h.logger.Info("schedule batch created",
		slog.String("mentor_id", cmd.MentorID.String()),
		slog.Int("blocks", len(cmd.Blocks)),
		slog.Int("schedules", len(created)),
		slog.Bool("repeating", cmd.Repeating))

	return created, nil
}

func (h *CreateScheduleHandler) publish(event shared.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(event); err != nil {
		h.logger.Warn("failed to publish schedule event",
			slog.String("event", string(event.EventType())),
			slog.Any("error", err))
	}
}
