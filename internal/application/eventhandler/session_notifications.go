// Package eventhandler contains domain event handlers: the reactive side of
// the system that turns session lifecycle events into side effects such as
// notification emails, keeping the booking path free of mail-delivery
// latency and failure modes.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/directory"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/external/mail"
)

// Mailer sends a rendered notification. Satisfied by mail.Client.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// SessionNotificationsHandler sends booking-related emails in response to
// session events: a new-request note to the mentor on booking, a
// confirmation or rejection note to the learner on the mentor's decision,
// and a move proposal when a reschedule starts.
type SessionNotificationsHandler struct {
	schedules schedule.Repository
	directory directory.Directory
	mailer    Mailer
	logger    *slog.Logger

	// SendTimeout bounds each mail send triggered by an event.
	SendTimeout time.Duration
}

// NewSessionNotificationsHandler creates the handler.
func NewSessionNotificationsHandler(
	schedules schedule.Repository,
	dir directory.Directory,
	mailer Mailer,
	logger *slog.Logger,
) *SessionNotificationsHandler {
	return &SessionNotificationsHandler{
		schedules:   schedules,
		directory:   dir,
		mailer:      mailer,
		logger:      logger,
		SendTimeout: 15 * time.Second,
	}
}

// Register subscribes the handler to the session events it reacts to.
func (h *SessionNotificationsHandler) Register(bus shared.EventSubscriber) error {
	for _, eventType := range []shared.EventType{
		shared.EventSessionBooked,
		shared.EventSessionApproved,
		shared.EventSessionRejected,
		shared.EventSessionRescheduling,
	} {
		if err := bus.Subscribe(eventType, h.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	return nil
}

// Handle dispatches one event. A failed send is logged and reported to the
// bus's retry machinery; it never reaches the booking caller.
func (h *SessionNotificationsHandler) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.SendTimeout)
	defer cancel()

	switch e := event.(type) {
	case session.BookedEvent:
		return h.onBooked(ctx, e)
	case session.DecidedEvent:
		return h.onDecided(ctx, e)
	case session.ReschedulingEvent:
		return h.onRescheduling(ctx, e)
	default:
		h.logger.Debug("ignoring event", slog.String("type", string(event.EventType())))
		return nil
	}
}

func (h *SessionNotificationsHandler) onBooked(ctx context.Context, e session.BookedEvent) error {
	mentor, err := h.directory.GetMentor(ctx, e.MentorID)
	if err != nil {
		return fmt.Errorf("resolve mentor %s: %w", e.MentorID, err)
	}
	learner, err := h.directory.GetLearner(ctx, e.LearnerID)
	if err != nil {
		return fmt.Errorf("resolve learner %s: %w", e.LearnerID, err)
	}
	start, end, err := h.slotTimes(ctx, e.ScheduleID)
	if err != nil {
		return err
	}

	subject, body := mail.RenderBookingRequest(mail.BookingRequestData{
		MentorName:  mentor.DisplayName,
		LearnerName: learner.DisplayName,
		Start:       start,
		End:         end,
	})
	return h.send(ctx, mentor.Email, subject, body, e.SessionID.String())
}

func (h *SessionNotificationsHandler) onDecided(ctx context.Context, e session.DecidedEvent) error {
	learner, err := h.directory.GetLearner(ctx, e.LearnerID)
	if err != nil {
		return fmt.Errorf("resolve learner %s: %w", e.LearnerID, err)
	}
	start, end, err := h.slotTimes(ctx, e.ScheduleID)
	if err != nil {
		return err
	}

	subject, body := mail.RenderBookingDecision(mail.BookingDecisionData{
		LearnerName: learner.DisplayName,
		Approved:    e.Approved,
		Start:       start,
		End:         end,
	})
	return h.send(ctx, learner.Email, subject, body, e.SessionID.String())
}

func (h *SessionNotificationsHandler) onRescheduling(ctx context.Context, e session.ReschedulingEvent) error {
	learner, err := h.directory.GetLearner(ctx, e.LearnerID)
	if err != nil {
		return fmt.Errorf("resolve learner %s: %w", e.LearnerID, err)
	}
	start, end, err := h.slotTimes(ctx, e.NewScheduleID)
	if err != nil {
		return err
	}

	subject, body := mail.RenderRescheduleProposal(mail.RescheduleProposalData{
		LearnerName: learner.DisplayName,
		Notes:       e.Notes,
		NewStart:    start,
		NewEnd:      end,
	})
	return h.send(ctx, learner.Email, subject, body, e.SessionID.String())
}

func (h *SessionNotificationsHandler) slotTimes(ctx context.Context, scheduleID uuid.UUID) (time.Time, time.Time, error) {
	sch, err := h.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("resolve schedule %s: %w", scheduleID, err)
	}
	return sch.Start(), sch.End(), nil
}

func (h *SessionNotificationsHandler) send(ctx context.Context, to, subject, body, sessionID string) error {
	if err := h.mailer.SendMail(ctx, to, subject, body); err != nil {
		h.logger.Error("notification mail failed",
			slog.String("session_id", sessionID),
			slog.Any("error", err))
		return err
	}
	h.logger.Info("notification mail sent",
		slog.String("session_id", sessionID),
		slog.String("subject", subject))
	return nil
}
