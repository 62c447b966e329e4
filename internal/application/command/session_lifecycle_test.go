package command

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentor-scheduling/internal/domain/availability"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// lifecycleFixture books a pending session and wires the decide, cancel, and
// complete handlers around the same fakes.
type lifecycleFixture struct {
	*bookFixture
	decide   *DecideSessionHandler
	cancel   *CancelSessionHandler
	complete *CompleteSessionHandler
	sess     *session.Session
	now      *time.Time
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	f := &lifecycleFixture{bookFixture: newBookFixture(t)}

	now := bookNow
	f.now = &now
	clock := shared.ClockFunc(func() time.Time { return *f.now })

	sess, err := f.handler.Handle(context.Background(), f.command())
	require.NoError(t, err)
	f.sess = sess

	f.decide = NewDecideSessionHandler(f.schedules, f.sessions, f.cache, f.events, clock, testLogger())
	f.cancel = NewCancelSessionHandler(f.schedules, f.sessions, f.cache, f.events, clock, testLogger())
	f.complete = NewCompleteSessionHandler(f.schedules, f.sessions, f.events, clock, testLogger())
	return f
}

func (f *lifecycleFixture) advanceTo(t time.Time) {
	*f.now = t
}

func (f *lifecycleFixture) approve(t *testing.T) {
	t.Helper()
	_, err := f.decide.Handle(context.Background(), DecideSessionCommand{
		SessionID: f.sess.ID,
		MentorID:  f.mentorID,
		Approve:   true,
	})
	require.NoError(t, err)
}

func TestDecideSession_Approve(t *testing.T) {
	f := newLifecycleFixture(t)

	decided, err := f.decide.Handle(context.Background(), DecideSessionCommand{
		SessionID: f.sess.ID,
		MentorID:  f.mentorID,
		Approve:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, session.StatusScheduled, decided.Status)
	assert.Contains(t, f.events.types(), shared.EventSessionApproved)

	// The approved session still holds the slot.
	claims, err := f.sessions.ListActiveBySchedules(context.Background(), []uuid.UUID{f.slot.ID})
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestDecideSession_RejectReleasesSlot(t *testing.T) {
	f := newLifecycleFixture(t)

	decided, err := f.decide.Handle(context.Background(), DecideSessionCommand{
		SessionID: f.sess.ID,
		MentorID:  f.mentorID,
		Approve:   false,
	})
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, decided.Status)
	assert.Contains(t, f.events.types(), shared.EventSessionRejected)

	claims, err := f.sessions.ListActiveBySchedules(context.Background(), []uuid.UUID{f.slot.ID})
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestDecideSession_ForeignMentorRejected(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.decide.Handle(context.Background(), DecideSessionCommand{
		SessionID: f.sess.ID,
		MentorID:  uuid.New(),
		Approve:   true,
	})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	stored, err := f.sessions.GetByID(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, stored.Status)
}

func TestDecideSession_AlreadyDecided(t *testing.T) {
	f := newLifecycleFixture(t)
	f.approve(t)

	_, err := f.decide.Handle(context.Background(), DecideSessionCommand{
		SessionID: f.sess.ID,
		MentorID:  f.mentorID,
		Approve:   true,
	})
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}

func TestCancelSession_FreesSlotForRebooking(t *testing.T) {
	f := newLifecycleFixture(t)
	f.approve(t)

	cancelled, err := f.cancel.Handle(context.Background(), CancelSessionCommand{SessionID: f.sess.ID})
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, cancelled.Status)

	// The freed slot is visible as available again.
	claims, err := f.sessions.ListActiveBySchedules(context.Background(), []uuid.UUID{f.slot.ID})
	require.NoError(t, err)
	require.Empty(t, claims)
	days := availability.Build([]*schedule.Schedule{f.slot}, claims, bookNow, time.UTC)
	require.Len(t, days, 1)
	assert.Equal(t, availability.StatusAvailable, days[0].Slots[0].Status)

	// And a new learner can claim it.
	_, err = f.handler.Handle(context.Background(), f.command())
	assert.NoError(t, err)
}

func TestCancelSession_CompletedCannotBeCancelled(t *testing.T) {
	f := newLifecycleFixture(t)
	f.approve(t)
	f.advanceTo(f.slot.End().Add(time.Minute))

	_, err := f.complete.Handle(context.Background(), CompleteSessionCommand{SessionID: f.sess.ID})
	require.NoError(t, err)

	_, err = f.cancel.Handle(context.Background(), CancelSessionCommand{SessionID: f.sess.ID})
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}

func TestCompleteSession(t *testing.T) {
	f := newLifecycleFixture(t)
	f.approve(t)
	f.advanceTo(f.slot.End().Add(time.Minute))

	completed, err := f.complete.Handle(context.Background(), CompleteSessionCommand{SessionID: f.sess.ID})
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, completed.Status)
	assert.Contains(t, f.events.types(), shared.EventSessionCompleted)
}

func TestCompleteSession_BeforeSlotEnds(t *testing.T) {
	f := newLifecycleFixture(t)
	f.approve(t)
	f.advanceTo(f.slot.End().Add(-time.Minute))

	_, err := f.complete.Handle(context.Background(), CompleteSessionCommand{SessionID: f.sess.ID})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	stored, err := f.sessions.GetByID(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusScheduled, stored.Status)
}

func TestCompleteSession_Idempotent(t *testing.T) {
	f := newLifecycleFixture(t)
	f.approve(t)
	f.advanceTo(f.slot.End().Add(time.Minute))

	first, err := f.complete.Handle(context.Background(), CompleteSessionCommand{SessionID: f.sess.ID})
	require.NoError(t, err)

	eventsAfterFirst := len(f.events.types())
	second, err := f.complete.Handle(context.Background(), CompleteSessionCommand{SessionID: f.sess.ID})
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Len(t, f.events.types(), eventsAfterFirst)
}

func TestCompleteSession_PendingRejected(t *testing.T) {
	f := newLifecycleFixture(t)
	f.advanceTo(f.slot.End().Add(time.Minute))

	_, err := f.complete.Handle(context.Background(), CompleteSessionCommand{SessionID: f.sess.ID})
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}
