package mail

import (
	"fmt"
	"strings"
	"time"

	"github.com/mentorhub/mentor-scheduling/pkg/timeutil"
)

// All mail is plain text. Times are rendered in UTC; clients localize far
// better than a template can guess.

// BookingRequestData feeds the mail sent to a mentor when a learner books a
// slot.
type BookingRequestData struct {
	MentorName  string
	LearnerName string
	Start       time.Time
	End         time.Time
}

// RenderBookingRequest returns the subject and body for a new booking
// request notification.
func RenderBookingRequest(data BookingRequestData) (string, string) {
	subject := fmt.Sprintf("New session request from %s", data.LearnerName)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", data.MentorName)
	fmt.Fprintf(&b, "%s has requested a mentoring session with you.\n\n", data.LearnerName)
	fmt.Fprintf(&b, "When: %s\n", formatSlot(data.Start, data.End))
	b.WriteString("\nPlease approve or reject the request from your dashboard.\n")
	return subject, b.String()
}

// BookingDecisionData feeds the mail sent to a learner once the mentor has
// approved or rejected their request.
type BookingDecisionData struct {
	LearnerName string
	Approved    bool
	Start       time.Time
	End         time.Time
}

// RenderBookingDecision returns the subject and body for a booking decision
// notification.
func RenderBookingDecision(data BookingDecisionData) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", data.LearnerName)

	if data.Approved {
		subject := "Your session is confirmed"
		b.WriteString("Your mentoring session has been confirmed.\n\n")
		fmt.Fprintf(&b, "When: %s\n", formatSlot(data.Start, data.End))
		b.WriteString("\nSee you there!\n")
		return subject, b.String()
	}

	subject := "Your session request was declined"
	fmt.Fprintf(&b, "Unfortunately your session request for %s was declined.\n", formatSlot(data.Start, data.End))
	b.WriteString("\nThe slot is available again, so feel free to pick another time.\n")
	return subject, b.String()
}

// RescheduleProposalData feeds the mail sent to a learner when the mentor
// proposes moving a confirmed session to a different slot.
type RescheduleProposalData struct {
	LearnerName string
	Notes       string
	NewStart    time.Time
	NewEnd      time.Time
}

// RenderRescheduleProposal returns the subject and body for a reschedule
// proposal notification.
func RenderRescheduleProposal(data RescheduleProposalData) (string, string) {
	subject := "Session reschedule proposed"

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", data.LearnerName)
	b.WriteString("Your mentor has proposed moving your session to a new time.\n\n")
	fmt.Fprintf(&b, "Proposed time: %s\n", formatSlot(data.NewStart, data.NewEnd))
	if data.Notes != "" {
		fmt.Fprintf(&b, "Note from your mentor: %s\n", data.Notes)
	}
	b.WriteString("\nPlease confirm the new time, or cancel if it does not work for you.\n")
	return subject, b.String()
}

// SessionReminderData feeds the reminder mail sent to a mentor shortly before
// an upcoming session.
type SessionReminderData struct {
	MentorName  string
	LearnerName string
	CourseTitle string
	Start       time.Time
	End         time.Time
}

// RenderSessionReminder returns the subject and body for an upcoming-session
// reminder.
func RenderSessionReminder(data SessionReminderData) (string, string) {
	subject := fmt.Sprintf("Reminder: session with %s at %s",
		data.LearnerName, data.Start.UTC().Format("15:04"))

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", data.MentorName)
	fmt.Fprintf(&b, "Your mentoring session with %s starts in about an hour.\n\n", data.LearnerName)
	if data.CourseTitle != "" {
		fmt.Fprintf(&b, "Course: %s\n", data.CourseTitle)
	}
	fmt.Fprintf(&b, "When: %s\n", formatSlot(data.Start, data.End))
	return subject, b.String()
}

func formatSlot(start, end time.Time) string {
	return fmt.Sprintf("%s - %s UTC",
		timeutil.FormatDateTime(start, time.UTC),
		end.UTC().Format("15:04"))
}
