package shared

import "time"

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event marks something significant that happened to
// a mentoring session or a mentor's published schedule; notification handlers
// subscribe to them instead of being called inline from the booking path.
const (
	// Schedule events
	EventSchedulePublished EventType = "schedule.published"
	EventScheduleEdited    EventType = "schedule.edited"
	EventScheduleDeleted   EventType = "schedule.deleted"

	// Session lifecycle events
	EventSessionBooked       EventType = "session.booked"
	EventSessionApproved     EventType = "session.approved"
	EventSessionRejected     EventType = "session.rejected"
	EventSessionRescheduling EventType = "session.rescheduling"
	EventSessionCancelled    EventType = "session.cancelled"
	EventSessionCompleted    EventType = "session.completed"

	// Notification events
	EventReminderSent   EventType = "notification.reminder_sent"
	EventReminderFailed EventType = "notification.reminder_failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
