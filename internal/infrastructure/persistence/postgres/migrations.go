package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: DIRECTORY TABLES
// Mentors, learners, and courses are owned by the surrounding platform; the
// scheduling service only reads them, but carries the DDL so a standalone
// deployment can bootstrap itself.
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS mentors (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    display_name VARCHAR(100) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS learners (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    display_name VARCHAR(100) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    mentor_id UUID NOT NULL REFERENCES mentors(id),
    title VARCHAR(200) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_courses_mentor_id ON courses(mentor_id);
`

const migration001Down = `
DROP TABLE IF EXISTS courses;
DROP TABLE IF EXISTS learners;
DROP TABLE IF EXISTS mentors;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS schedules (
    id UUID PRIMARY KEY,
    mentor_id UUID NOT NULL REFERENCES mentors(id),
    start_at TIMESTAMP WITH TIME ZONE NOT NULL,
    end_at TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT schedule_end_after_start CHECK (end_at > start_at)
);

CREATE INDEX IF NOT EXISTS idx_schedules_mentor_window
    ON schedules(mentor_id, start_at, end_at);
`

const migration002Down = `
DROP TABLE IF EXISTS schedules;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: MENTORING SESSIONS
// The partial unique index is the one-active-claim invariant: at most one
// session in an active status may reference a schedule. Concurrent bookings
// race on this index, not on application-level reads.
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS mentoring_sessions (
    id UUID PRIMARY KEY,
    course_id UUID NOT NULL REFERENCES courses(id),
    schedule_id UUID NOT NULL REFERENCES schedules(id),
    learner_id UUID NOT NULL REFERENCES learners(id),
    session_type VARCHAR(20) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    pending_schedule_id UUID REFERENCES schedules(id),
    reschedule_notes VARCHAR(200) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_session_status
        CHECK (status IN ('pending', 'scheduled', 'cancelled', 'rescheduling', 'completed')),
    CONSTRAINT valid_session_type
        CHECK (session_type IN ('one_on_one', 'group'))
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_sessions_active_claim
    ON mentoring_sessions(schedule_id)
    WHERE status IN ('pending', 'scheduled', 'rescheduling');

CREATE INDEX IF NOT EXISTS idx_sessions_learner_created
    ON mentoring_sessions(learner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_status
    ON mentoring_sessions(status)
    WHERE status IN ('pending', 'scheduled', 'rescheduling');
`

const migration003Down = `
DROP TABLE IF EXISTS mentoring_sessions;
`

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// GetMigrations returns all migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_directory_tables", Up: migration001Up, Down: migration001Down},
		{Version: 2, Name: "create_schedules", Up: migration002Up, Down: migration002Down},
		{Version: 3, Name: "create_mentoring_sessions", Up: migration003Up, Down: migration003Down},
	}
}

// Migrator applies embedded SQL migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a Migrator with the built-in migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: GetMigrations()}
}

// EnsureMigrationTable creates the bookkeeping table.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

// Applied returns the applied migration versions.
func (m *Migrator) Applied(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies every pending migration in order, each in its own
// transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}

	pending := make([]Migration, 0, len(m.migrations))
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; !ok {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, mig := range pending {
		mig := mig
		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Up); err != nil {
				return fmt.Errorf("apply migration %03d (%s): %w", mig.Version, mig.Name, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				mig.Version, mig.Name); err != nil {
				return fmt.Errorf("record migration %03d: %w", mig.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
