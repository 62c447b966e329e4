// Package jobs contains the scheduled jobs run by the background worker.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/external/mail"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REMINDERS JOB
// ══════════════════════════════════════════════════════════════════════════════

// Reminder timing. Each cycle looks one hour ahead with a two-minute window.
// Delivery is best effort: cycle intervals are measured from completion, so
// drift can let a session slip between windows or, rarely, land in two.
const (
	ReminderLead   = time.Hour
	ReminderWindow = 2 * time.Minute
)

// Mailer sends a rendered reminder. Satisfied by mail.Client.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// SessionRemindersJob emails mentors about sessions starting in roughly one
// hour. Sends within a cycle fan out concurrently; a failed send is logged
// and skipped so the other reminders in the cycle still go out.
type SessionRemindersJob struct {
	sessions session.Repository
	mailer   Mailer
	clock    shared.Clock
	logger   *slog.Logger

	// SendTimeout bounds each individual reminder send.
	SendTimeout time.Duration
}

// NewSessionRemindersJob creates the job.
func NewSessionRemindersJob(
	sessions session.Repository,
	mailer Mailer,
	clock shared.Clock,
	logger *slog.Logger,
) *SessionRemindersJob {
	return &SessionRemindersJob{
		sessions:    sessions,
		mailer:      mailer,
		clock:       clock,
		logger:      logger,
		SendTimeout: 15 * time.Second,
	}
}

// Name implements scheduler.Job.
func (j *SessionRemindersJob) Name() string {
	return "session_reminders"
}

// Description implements scheduler.Job.
func (j *SessionRemindersJob) Description() string {
	return "emails mentors about sessions starting in about an hour"
}

// Run executes one reminder cycle. It fails only when the upcoming sessions
// cannot be listed; individual delivery failures never fail the cycle.
func (j *SessionRemindersJob) Run(ctx context.Context) error {
	now := j.clock.Now()
	from := now.Add(ReminderLead - ReminderWindow/2)
	to := from.Add(ReminderWindow)

	targets, err := j.sessions.ListStartingBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list upcoming sessions: %w", err)
	}
	if len(targets) == 0 {
		return nil
	}

	j.logger.Info("sending session reminders",
		slog.Int("count", len(targets)),
		slog.Time("window_from", from),
		slog.Time("window_to", to))

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, target := range targets {
		wg.Add(1)
		go func(t session.ReminderTarget) {
			defer wg.Done()
			if err := j.remind(ctx, t); err != nil {
				failed.Add(1)
				j.logger.Error("reminder failed",
					slog.String("session_id", t.SessionID.String()),
					slog.String("mentor_id", t.MentorID.String()),
					slog.Any("error", err))
			}
		}(target)
	}
	wg.Wait()

	if n := failed.Load(); n > 0 {
		j.logger.Warn("reminder cycle finished with failures",
			slog.Int64("failed", n),
			slog.Int("total", len(targets)))
	}
	return nil
}

func (j *SessionRemindersJob) remind(ctx context.Context, target session.ReminderTarget) error {
	ctx, cancel := context.WithTimeout(ctx, j.SendTimeout)
	defer cancel()

	subject, body := mail.RenderSessionReminder(mail.SessionReminderData{
		MentorName:  target.MentorName,
		LearnerName: target.LearnerName,
		CourseTitle: target.CourseTitle,
		Start:       target.ScheduleStart,
		End:         target.ScheduleEnd,
	})
	return j.mailer.SendMail(ctx, target.MentorEmail, subject, body)
}
