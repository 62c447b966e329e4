package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListOptions paginates list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps pagination to sane bounds.
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 || o.Limit > 100 {
		o.Limit = 20
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// ReminderTarget is the denormalized row the reminder scheduler works with:
// a qualifying session joined to its slot times and the mentor's contact.
type ReminderTarget struct {
	SessionID     uuid.UUID
	Status        Status
	Type          Type
	ScheduleStart time.Time
	ScheduleEnd   time.Time
	MentorID      uuid.UUID
	MentorEmail   string
	MentorName    string
	LearnerName   string
	CourseTitle   string
}

// Repository defines persistence operations for mentoring sessions.
//
// The one-active-claim invariant lives here: Create and Update must fail with
// shared.ErrSlotClaimed when another active session already references the
// target schedule. Implementations back this with a uniqueness constraint (a
// conditional write), not a read-then-check, so concurrent double booking
// cannot slip through.
type Repository interface {
	// Create inserts a new pending session, claiming its schedule.
	Create(ctx context.Context, s *Session) error

	// GetByID returns a session by ID, or shared.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// Update persists a transitioned session. A confirmed reschedule swaps
	// the claimed schedule, and the swap is subject to the same uniqueness
	// guarantee as Create.
	Update(ctx context.Context, s *Session) error

	// ListActiveBySchedules returns the active sessions referencing any of
	// the given schedules.
	ListActiveBySchedules(ctx context.Context, scheduleIDs []uuid.UUID) ([]*Session, error)

	// ListByLearner returns the learner's sessions, newest first.
	ListByLearner(ctx context.Context, learnerID uuid.UUID, opts ListOptions) ([]*Session, error)

	// ListPendingByMentor returns pending requests against the mentor's
	// schedules, oldest first.
	ListPendingByMentor(ctx context.Context, mentorID uuid.UUID, opts ListOptions) ([]*Session, error)

	// ListStartingBetween returns reminder targets for active sessions whose
	// claimed slot starts within [from, to).
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]ReminderTarget, error)
}
