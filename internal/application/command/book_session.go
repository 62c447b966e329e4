package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/directory"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// BookSessionCommand is a learner's claim on an available schedule slot.
type BookSessionCommand struct {
	LearnerID  uuid.UUID
	CourseID   uuid.UUID
	ScheduleID uuid.UUID
	Type       session.Type
}

// Validate validates the command shape.
func (c BookSessionCommand) Validate() error {
	const op = "BookSession"
	if c.LearnerID == uuid.Nil {
		return shared.NewDomainError("session", op, shared.ErrInvalidID, "learner id is required")
	}
	if c.CourseID == uuid.Nil {
		return shared.NewDomainError("session", op, shared.ErrInvalidID, "course id is required")
	}
	if c.ScheduleID == uuid.Nil {
		return shared.NewDomainError("session", op, shared.ErrInvalidID, "schedule id is required")
	}
	if !c.Type.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrValidation, "unknown session type")
	}
	return nil
}

// BookSessionHandler creates pending sessions against available slots.
//
// Double booking is not prevented here: the availability read and the insert
// are not one transaction, so two learners can both see the slot as free.
// The session repository's uniqueness guarantee decides the race; this
// handler only interprets its rejection as "slot already taken."
type BookSessionHandler struct {
	schedules   schedule.Repository
	sessions    session.Repository
	directory   directory.Directory
	invalidator AvailabilityInvalidator
	events      shared.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewBookSessionHandler creates the handler.
func NewBookSessionHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	dir directory.Directory,
	invalidator AvailabilityInvalidator,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *slog.Logger,
) *BookSessionHandler {
	return &BookSessionHandler{
		schedules:   schedules,
		sessions:    sessions,
		directory:   dir,
		invalidator: invalidator,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

// Handle runs the command.
func (h *BookSessionHandler) Handle(ctx context.Context, cmd BookSessionCommand) (*session.Session, error) {
	const op = "BookSession"

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	sch, err := h.schedules.GetByID(ctx, cmd.ScheduleID)
	if err != nil {
		return nil, err
	}
	course, err := h.directory.GetCourse(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if course.MentorID != sch.MentorID {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"schedule does not belong to the course's mentor")
	}

	now := h.clock.Now()
	if !sch.Start().After(now) {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation,
			"schedule start has already passed")
	}

	sess, err := session.New(cmd.LearnerID, cmd.CourseID, cmd.ScheduleID, cmd.Type, now)
	if err != nil {
		return nil, err
	}
	if err := h.sessions.Create(ctx, sess); err != nil {
		// ErrSlotClaimed surfaces as-is: the slot was taken between the
		// availability read and this write.
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := h.invalidator.InvalidateMentor(ctx, sch.MentorID); err != nil {
		h.logger.Warn("failed to invalidate availability cache",
			slog.String("mentor_id", sch.MentorID.String()),
			slog.Any("error", err))
	}
	if h.events != nil {
		if err := h.events.Publish(session.NewBookedEvent(sess, sch.MentorID)); err != nil {
			h.logger.Warn("failed to publish session event", slog.Any("error", err))
		}
	}

	h.logger.Info("session booked",
		slog.String("session_id", sess.ID.String()),
		slog.String("schedule_id", sch.ID.String()),
		slog.String("learner_id", cmd.LearnerID.String()))

	return sess, nil
}
