package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// MaxRescheduleNotes bounds the free-text note attached to a reschedule.
const MaxRescheduleNotes = 200

// Type classifies a mentoring session.
type Type string

const (
	TypeOneOnOne Type = "one_on_one"
	TypeGroup    Type = "group"
)

// IsValid reports whether t is a known session type.
func (t Type) IsValid() bool {
	return t == TypeOneOnOne || t == TypeGroup
}

// Session is a learner's mentoring session against one schedule slot of one
// course's mentor. While the status is active (pending, scheduled,
// rescheduling) the session claims its schedule and blocks further bookings.
type Session struct {
	ID         uuid.UUID
	CourseID   uuid.UUID
	ScheduleID uuid.UUID
	LearnerID  uuid.UUID
	Type       Type
	Status     Status

	// PendingScheduleID holds the proposed target slot while the session is
	// rescheduling. The original schedule stays claimed until the move is
	// confirmed; only then does ScheduleID swap over.
	PendingScheduleID *uuid.UUID

	// RescheduleNotes carries the mentor's note for the latest reschedule.
	RescheduleNotes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending session for a booked slot.
func New(learnerID, courseID, scheduleID uuid.UUID, sessionType Type, now time.Time) (*Session, error) {
	const op = "New"
	if learnerID == uuid.Nil {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "learner id is required")
	}
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "course id is required")
	}
	if scheduleID == uuid.Nil {
		return nil, shared.NewDomainError("session", op, shared.ErrInvalidID, "schedule id is required")
	}
	if !sessionType.IsValid() {
		return nil, shared.NewDomainError("session", op, shared.ErrValidation, "unknown session type "+string(sessionType))
	}
	return &Session{
		ID:         uuid.New(),
		CourseID:   courseID,
		ScheduleID: scheduleID,
		LearnerID:  learnerID,
		Type:       sessionType,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Approve moves a pending session to scheduled.
func (s *Session) Approve(now time.Time) error {
	if err := checkTransition("Approve", s.Status, StatusScheduled); err != nil {
		return err
	}
	s.Status = StatusScheduled
	s.UpdatedAt = now
	return nil
}

// Reject cancels a pending session.
func (s *Session) Reject(now time.Time) error {
	if err := checkTransition("Reject", s.Status, StatusCancelled); err != nil {
		return err
	}
	s.Status = StatusCancelled
	s.UpdatedAt = now
	return nil
}

// BeginReschedule moves a scheduled session into rescheduling, recording the
// proposed target slot and the mentor's note. The target must differ from the
// current slot; ownership and availability of the target are checked by the
// command layer against persisted state.
func (s *Session) BeginReschedule(newScheduleID uuid.UUID, notes string, now time.Time) error {
	const op = "BeginReschedule"
	if err := checkTransition(op, s.Status, StatusRescheduling); err != nil {
		return err
	}
	if newScheduleID == uuid.Nil {
		return shared.NewDomainError("session", op, shared.ErrInvalidID, "new schedule id is required")
	}
	if newScheduleID == s.ScheduleID {
		return shared.NewDomainError("session", op, shared.ErrValidation, "new schedule must differ from the current one")
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return shared.NewDomainError("session", op, shared.ErrEmptyValue, "reschedule notes are required")
	}
	if len(notes) > MaxRescheduleNotes {
		return shared.NewDomainError("session", op, shared.ErrOutOfRange, "reschedule notes exceed 200 characters")
	}
	s.Status = StatusRescheduling
	s.PendingScheduleID = &newScheduleID
	s.RescheduleNotes = notes
	s.UpdatedAt = now
	return nil
}

// ConfirmReschedule completes the move: the session returns to scheduled on
// the pending target slot and the original slot is released.
func (s *Session) ConfirmReschedule(now time.Time) error {
	const op = "ConfirmReschedule"
	if err := checkTransition(op, s.Status, StatusScheduled); err != nil {
		return err
	}
	if s.PendingScheduleID == nil {
		return shared.NewDomainError("session", op, shared.ErrValidation, "no pending schedule to confirm")
	}
	s.ScheduleID = *s.PendingScheduleID
	s.PendingScheduleID = nil
	s.Status = StatusScheduled
	s.UpdatedAt = now
	return nil
}

// Cancel cancels an active session, releasing its schedule claim.
func (s *Session) Cancel(now time.Time) error {
	if err := checkTransition("Cancel", s.Status, StatusCancelled); err != nil {
		return err
	}
	s.Status = StatusCancelled
	s.PendingScheduleID = nil
	s.UpdatedAt = now
	return nil
}

// Complete marks a scheduled session as held. It is only legal once the
// slot's end time has passed, and is an idempotent no-op when the session is
// already completed.
func (s *Session) Complete(scheduleEnd, now time.Time) error {
	const op = "Complete"
	if s.Status == StatusCompleted {
		return nil
	}
	if err := checkTransition(op, s.Status, StatusCompleted); err != nil {
		return err
	}
	if now.Before(scheduleEnd) {
		return shared.NewDomainError("session", op, shared.ErrValidation, "session can only be completed after its slot has ended")
	}
	s.Status = StatusCompleted
	s.UpdatedAt = now
	return nil
}
