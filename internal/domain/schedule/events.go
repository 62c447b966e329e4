package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// ChangedEvent is emitted when a schedule is published, edited, or deleted.
type ChangedEvent struct {
	shared.BaseEvent
	ScheduleID uuid.UUID `json:"schedule_id"`
	MentorID   uuid.UUID `json:"mentor_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// Payload implements shared.Event.
func (e ChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"schedule_id": e.ScheduleID.String(),
		"mentor_id":   e.MentorID.String(),
		"start":       e.Start.Format(time.RFC3339),
		"end":         e.End.Format(time.RFC3339),
	}
}

func newChangedEvent(eventType shared.EventType, s *Schedule) ChangedEvent {
	return ChangedEvent{
		BaseEvent:  shared.NewBaseEvent(eventType, s.ID.String()),
		ScheduleID: s.ID,
		MentorID:   s.MentorID,
		Start:      s.Start(),
		End:        s.End(),
	}
}

// NewPublishedEvent creates the event for a newly persisted schedule.
func NewPublishedEvent(s *Schedule) ChangedEvent {
	return newChangedEvent(shared.EventSchedulePublished, s)
}

// NewEditedEvent creates the event for a replaced block.
func NewEditedEvent(s *Schedule) ChangedEvent {
	return newChangedEvent(shared.EventScheduleEdited, s)
}

// NewDeletedEvent creates the event for a removed schedule.
func NewDeletedEvent(s *Schedule) ChangedEvent {
	return newChangedEvent(shared.EventScheduleDeleted, s)
}
