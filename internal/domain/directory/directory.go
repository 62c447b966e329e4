// Package directory exposes read-only lookups into the surrounding platform's
// user and course records. Account and course management happen elsewhere;
// the scheduling core only needs ownership and contact information.
package directory

import (
	"context"

	"github.com/google/uuid"
)

// Mentor is the contact view of a mentor account.
type Mentor struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// Learner is the contact view of a learner account.
type Learner struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// Course links a course to the mentor who teaches it.
type Course struct {
	ID       uuid.UUID
	MentorID uuid.UUID
	Title    string
}

// Directory resolves mentors, learners, and courses by ID. Implementations
// return shared.ErrNotFound for unknown IDs.
type Directory interface {
	GetMentor(ctx context.Context, id uuid.UUID) (*Mentor, error)
	GetLearner(ctx context.Context, id uuid.UUID) (*Learner, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*Course, error)
}
