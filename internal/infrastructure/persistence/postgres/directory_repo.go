package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/directory"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// DirectoryRepository implements directory.Directory with read-only lookups
// into the platform's mentor, learner, and course tables.
type DirectoryRepository struct {
	conn *Connection
}

// NewDirectoryRepository creates a new DirectoryRepository.
func NewDirectoryRepository(conn *Connection) *DirectoryRepository {
	return &DirectoryRepository{conn: conn}
}

// GetMentor returns a mentor's contact view.
func (r *DirectoryRepository) GetMentor(ctx context.Context, id uuid.UUID) (*directory.Mentor, error) {
	var m directory.Mentor
	err := r.conn.QueryRow(ctx,
		`SELECT id, email, display_name FROM mentors WHERE id = $1`, id,
	).Scan(&m.ID, &m.Email, &m.DisplayName)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("directory", "GetMentor", shared.ErrNotFound, "mentor not found")
		}
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	return &m, nil
}

// GetLearner returns a learner's contact view.
func (r *DirectoryRepository) GetLearner(ctx context.Context, id uuid.UUID) (*directory.Learner, error) {
	var l directory.Learner
	err := r.conn.QueryRow(ctx,
		`SELECT id, email, display_name FROM learners WHERE id = $1`, id,
	).Scan(&l.ID, &l.Email, &l.DisplayName)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("directory", "GetLearner", shared.ErrNotFound, "learner not found")
		}
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return &l, nil
}

// GetCourse returns a course and its owning mentor.
func (r *DirectoryRepository) GetCourse(ctx context.Context, id uuid.UUID) (*directory.Course, error) {
	var c directory.Course
	err := r.conn.QueryRow(ctx,
		`SELECT id, mentor_id, title FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.MentorID, &c.Title)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("directory", "GetCourse", shared.ErrNotFound, "course not found")
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &c, nil
}
