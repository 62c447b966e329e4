package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for schedules.
type Repository interface {
	// CreateBatch persists a batch of schedules atomically: either every
	// schedule in the batch is stored or none is.
	CreateBatch(ctx context.Context, schedules []*Schedule) error

	// GetByID returns a schedule by ID, or shared.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)

	// ListByMentor returns the mentor's schedules whose blocks intersect the
	// [from, to] window, ordered by start time ascending.
	ListByMentor(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*Schedule, error)

	// Update replaces the stored block of an existing schedule.
	Update(ctx context.Context, s *Schedule) error

	// Delete removes a schedule. Implementations must refuse (with
	// shared.ErrScheduleInUse) while an active session references it.
	Delete(ctx context.Context, id uuid.UUID) error
}
