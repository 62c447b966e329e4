package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

const sessionColumns = `
	id, course_id, schedule_id, learner_id, session_type, status,
	pending_schedule_id, reschedule_notes, created_at, updated_at
`

// SessionRepository implements session.Repository for PostgreSQL.
//
// The uq_sessions_active_claim partial unique index backs the one-active-
// claim invariant: Create and Update are plain conditional writes whose
// unique-violation rejections surface as shared.ErrSlotClaimed.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// Create inserts a pending session, claiming its schedule.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO mentoring_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		s.ID, s.CourseID, s.ScheduleID, s.LearnerID,
		string(s.Type), string(s.Status),
		s.PendingScheduleID, s.RescheduleNotes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("session", "Create", shared.ErrSlotClaimed,
				"schedule already has an active session")
		}
		if IsForeignKeyViolation(err) {
			return shared.NewDomainError("session", "Create", shared.ErrNotFound,
				"referenced schedule, course, or learner does not exist")
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID returns a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM mentoring_sessions
		WHERE id = $1
	`, id)

	s, err := scanSession(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("session", "GetByID", shared.ErrNotFound, "session not found")
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// Update persists a transitioned session. A claim swap that collides with
// another active session on the target schedule violates the partial unique
// index exactly like a double booking would.
func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE mentoring_sessions SET
			schedule_id = $1,
			status = $2,
			pending_schedule_id = $3,
			reschedule_notes = $4,
			updated_at = $5
		WHERE id = $6
	`,
		s.ScheduleID, string(s.Status),
		s.PendingScheduleID, s.RescheduleNotes, s.UpdatedAt, s.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("session", "Update", shared.ErrSlotClaimed,
				"target schedule already has an active session")
		}
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("session", "Update", shared.ErrNotFound, "session not found")
	}
	return nil
}

// ListActiveBySchedules returns the active sessions claiming any of the
// given schedules.
func (r *SessionRepository) ListActiveBySchedules(ctx context.Context, scheduleIDs []uuid.UUID) ([]*session.Session, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.conn.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM mentoring_sessions
		WHERE schedule_id = ANY($1)
		  AND status IN ('pending', 'scheduled', 'rescheduling')
	`, scheduleIDs)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListByLearner returns the learner's sessions, newest first.
func (r *SessionRepository) ListByLearner(ctx context.Context, learnerID uuid.UUID, opts session.ListOptions) ([]*session.Session, error) {
	opts.Normalize()
	rows, err := r.conn.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM mentoring_sessions
		WHERE learner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, learnerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list learner sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListPendingByMentor returns pending requests against the mentor's
// schedules, oldest first.
func (r *SessionRepository) ListPendingByMentor(ctx context.Context, mentorID uuid.UUID, opts session.ListOptions) ([]*session.Session, error) {
	opts.Normalize()
	rows, err := r.conn.Query(ctx, `
		SELECT `+qualifiedSessionColumns("ms")+`
		FROM mentoring_sessions ms
		JOIN schedules s ON s.id = ms.schedule_id
		WHERE s.mentor_id = $1
		  AND ms.status = 'pending'
		ORDER BY ms.created_at ASC
		LIMIT $2 OFFSET $3
	`, mentorID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list pending sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListStartingBetween returns reminder targets for active sessions whose
// claimed slot starts within [from, to).
func (r *SessionRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]session.ReminderTarget, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT ms.id, ms.status, ms.session_type,
		       s.start_at, s.end_at,
		       m.id, m.email, m.display_name,
		       l.display_name,
		       c.title
		FROM mentoring_sessions ms
		JOIN schedules s ON s.id = ms.schedule_id
		JOIN mentors m ON m.id = s.mentor_id
		JOIN learners l ON l.id = ms.learner_id
		JOIN courses c ON c.id = ms.course_id
		WHERE ms.status IN ('pending', 'scheduled', 'rescheduling')
		  AND s.start_at >= $1
		  AND s.start_at < $2
		ORDER BY s.start_at ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reminder targets: %w", err)
	}
	defer rows.Close()

	var targets []session.ReminderTarget
	for rows.Next() {
		var (
			t              session.ReminderTarget
			status, sstype string
		)
		if err := rows.Scan(
			&t.SessionID, &status, &sstype,
			&t.ScheduleStart, &t.ScheduleEnd,
			&t.MentorID, &t.MentorEmail, &t.MentorName,
			&t.LearnerName,
			&t.CourseTitle,
		); err != nil {
			return nil, fmt.Errorf("scan reminder target: %w", err)
		}
		t.Status = session.Status(status)
		t.Type = session.Type(sstype)
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func qualifiedSessionColumns(alias string) string {
	return alias + `.id, ` + alias + `.course_id, ` + alias + `.schedule_id, ` +
		alias + `.learner_id, ` + alias + `.session_type, ` + alias + `.status, ` +
		alias + `.pending_schedule_id, ` + alias + `.reschedule_notes, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		s              session.Session
		status, sstype string
		pending        *uuid.UUID
	)
	if err := row.Scan(
		&s.ID, &s.CourseID, &s.ScheduleID, &s.LearnerID,
		&sstype, &status, &pending, &s.RescheduleNotes,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Type = session.Type(sstype)
	s.Status = session.Status(status)
	s.PendingScheduleID = pending
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]*session.Session, error) {
	var out []*session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
