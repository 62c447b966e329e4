package session

import (
	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// BookedEvent is emitted when a learner claims a slot.
type BookedEvent struct {
	shared.BaseEvent
	SessionID  uuid.UUID `json:"session_id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	CourseID   uuid.UUID `json:"course_id"`
	LearnerID  uuid.UUID `json:"learner_id"`
	MentorID   uuid.UUID `json:"mentor_id"`
}

// Payload implements shared.Event.
func (e BookedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionID.String(),
		"schedule_id": e.ScheduleID.String(),
		"course_id":   e.CourseID.String(),
		"learner_id":  e.LearnerID.String(),
		"mentor_id":   e.MentorID.String(),
	}
}

// NewBookedEvent creates a BookedEvent.
func NewBookedEvent(s *Session, mentorID uuid.UUID) BookedEvent {
	return BookedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventSessionBooked, s.ID.String()),
		SessionID:  s.ID,
		ScheduleID: s.ScheduleID,
		CourseID:   s.CourseID,
		LearnerID:  s.LearnerID,
		MentorID:   mentorID,
	}
}

// DecidedEvent is emitted when a mentor approves or rejects a pending
// session. Approved sessions become scheduled; rejected ones are cancelled.
type DecidedEvent struct {
	shared.BaseEvent
	SessionID  uuid.UUID `json:"session_id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	LearnerID  uuid.UUID `json:"learner_id"`
	MentorID   uuid.UUID `json:"mentor_id"`
	Approved   bool      `json:"approved"`
}

// Payload implements shared.Event.
func (e DecidedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionID.String(),
		"schedule_id": e.ScheduleID.String(),
		"learner_id":  e.LearnerID.String(),
		"mentor_id":   e.MentorID.String(),
		"approved":    e.Approved,
	}
}

// NewDecidedEvent creates a DecidedEvent.
func NewDecidedEvent(s *Session, mentorID uuid.UUID, approved bool) DecidedEvent {
	eventType := shared.EventSessionApproved
	if !approved {
		eventType = shared.EventSessionRejected
	}
	return DecidedEvent{
		BaseEvent:  shared.NewBaseEvent(eventType, s.ID.String()),
		SessionID:  s.ID,
		ScheduleID: s.ScheduleID,
		LearnerID:  s.LearnerID,
		MentorID:   mentorID,
		Approved:   approved,
	}
}

// ReschedulingEvent is emitted when a mentor proposes moving a session.
type ReschedulingEvent struct {
	shared.BaseEvent
	SessionID     uuid.UUID `json:"session_id"`
	OldScheduleID uuid.UUID `json:"old_schedule_id"`
	NewScheduleID uuid.UUID `json:"new_schedule_id"`
	LearnerID     uuid.UUID `json:"learner_id"`
	Notes         string    `json:"notes"`
}

// Payload implements shared.Event.
func (e ReschedulingEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":      e.SessionID.String(),
		"old_schedule_id": e.OldScheduleID.String(),
		"new_schedule_id": e.NewScheduleID.String(),
		"learner_id":      e.LearnerID.String(),
		"notes":           e.Notes,
	}
}

// NewReschedulingEvent creates a ReschedulingEvent.
func NewReschedulingEvent(s *Session, newScheduleID uuid.UUID) ReschedulingEvent {
	return ReschedulingEvent{
		BaseEvent:     shared.NewBaseEvent(shared.EventSessionRescheduling, s.ID.String()),
		SessionID:     s.ID,
		OldScheduleID: s.ScheduleID,
		NewScheduleID: newScheduleID,
		LearnerID:     s.LearnerID,
		Notes:         s.RescheduleNotes,
	}
}

// LifecycleEvent covers the remaining terminal transitions (cancelled,
// completed) and reschedule confirmation.
type LifecycleEvent struct {
	shared.BaseEvent
	SessionID  uuid.UUID `json:"session_id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	LearnerID  uuid.UUID `json:"learner_id"`
	Status     Status    `json:"status"`
}

// Payload implements shared.Event.
func (e LifecycleEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionID.String(),
		"schedule_id": e.ScheduleID.String(),
		"learner_id":  e.LearnerID.String(),
		"status":      e.Status.String(),
	}
}

// NewLifecycleEvent creates a LifecycleEvent of the given type.
func NewLifecycleEvent(eventType shared.EventType, s *Session) LifecycleEvent {
	return LifecycleEvent{
		BaseEvent:  shared.NewBaseEvent(eventType, s.ID.String()),
		SessionID:  s.ID,
		ScheduleID: s.ScheduleID,
		LearnerID:  s.LearnerID,
		Status:     s.Status,
	}
}
