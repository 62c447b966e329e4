// Package session contains the mentoring session aggregate and its status
// state machine. A session is a learner's claim on one mentor schedule; it is
// never deleted, only transitioned, so history is retained.
package session

import "github.com/mentorhub/mentor-scheduling/internal/domain/shared"

// Status is the closed set of mentoring session states.
type Status string

const (
	// StatusPending - the learner booked a slot; awaiting the mentor's decision.
	StatusPending Status = "pending"

	// StatusScheduled - the mentor approved; the session will take place.
	StatusScheduled Status = "scheduled"

	// StatusCancelled - rejected or cancelled. Terminal.
	StatusCancelled Status = "cancelled"

	// StatusRescheduling - the mentor proposed a different slot; awaiting
	// confirmation of the move.
	StatusRescheduling Status = "rescheduling"

	// StatusCompleted - the session took place and its slot's end time has
	// passed. Terminal.
	StatusCompleted Status = "completed"
)

// transitions is the full legal transition table. Every status mutation in
// the system funnels through it; there is no "just set the field" path.
var transitions = map[Status][]Status{
	StatusPending:      {StatusScheduled, StatusCancelled},
	StatusScheduled:    {StatusRescheduling, StatusCompleted, StatusCancelled},
	StatusRescheduling: {StatusScheduled, StatusCancelled},
	StatusCancelled:    {},
	StatusCompleted:    {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether s admits no further transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// IsActive reports whether a session in this status claims its schedule.
// Exactly one active session may reference a schedule at a time.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusRescheduling:
		return true
	}
	return false
}

// CanTransitionTo reports whether the move s -> next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the status as a string.
func (s Status) String() string {
	return string(s)
}

// ActiveStatuses returns the statuses that claim a schedule, in a stable
// order usable in SQL IN clauses.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusScheduled, StatusRescheduling}
}

// checkTransition validates a transition and builds the conflict error the
// caller surfaces; invalid transitions are never silently ignored.
func checkTransition(op string, from, to Status) error {
	if !from.IsValid() {
		return shared.NewDomainError("session", op, shared.ErrValidation, "unknown status "+from.String())
	}
	if !from.CanTransitionTo(to) {
		return shared.NewDomainError("session", op, shared.ErrStateTransition,
			"cannot transition from "+from.String()+" to "+to.String())
	}
	return nil
}
