package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// ScheduleRepository implements schedule.Repository for PostgreSQL.
type ScheduleRepository struct {
	conn *Connection
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(conn *Connection) *ScheduleRepository {
	return &ScheduleRepository{conn: conn}
}

// CreateBatch persists all schedules in one transaction.
func (r *ScheduleRepository) CreateBatch(ctx context.Context, schedules []*schedule.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		for _, s := range schedules {
			_, err := tx.Exec(ctx, `
				INSERT INTO schedules (id, mentor_id, start_at, end_at, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, s.ID, s.MentorID, s.Block.Start, s.Block.End, s.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert schedule %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

// GetByID returns a schedule by ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT id, mentor_id, start_at, end_at, created_at
		FROM schedules
		WHERE id = $1
	`, id)

	s, err := scanSchedule(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("schedule", "GetByID", shared.ErrNotFound, "schedule not found")
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s, nil
}

// ListByMentor returns the mentor's schedules intersecting [from, to].
func (r *ScheduleRepository) ListByMentor(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*schedule.Schedule, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, mentor_id, start_at, end_at, created_at
		FROM schedules
		WHERE mentor_id = $1
		  AND start_at <= $3
		  AND end_at >= $2
		ORDER BY start_at ASC
	`, mentorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*schedule.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update replaces the stored block.
func (r *ScheduleRepository) Update(ctx context.Context, s *schedule.Schedule) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE schedules SET start_at = $1, end_at = $2 WHERE id = $3
	`, s.Block.Start, s.Block.End, s.ID)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("schedule", "Update", shared.ErrNotFound, "schedule not found")
	}
	return nil
}

// Delete removes a schedule. The delete is conditional on no active session
// claiming the slot, closing the gap between the caller's check and the
// write.
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Exec(ctx, `
		DELETE FROM schedules s
		WHERE s.id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM mentoring_sessions ms
			WHERE ms.schedule_id = s.id
			  AND ms.status IN ('pending', 'scheduled', 'rescheduling')
		  )
	`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("schedule", "Delete", shared.ErrScheduleInUse, "schedule is referenced by a session")
		}
		return fmt.Errorf("delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either it does not exist or an active claim blocked the delete.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return shared.NewDomainError("schedule", "Delete", shared.ErrScheduleInUse, "schedule is claimed by an active session")
	}
	return nil
}

func scanSchedule(row pgx.Row) (*schedule.Schedule, error) {
	var (
		s          schedule.Schedule
		start, end time.Time
	)
	if err := row.Scan(&s.ID, &s.MentorID, &start, &end, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Block = schedule.NewTimeBlock(start, end)
	return &s, nil
}
