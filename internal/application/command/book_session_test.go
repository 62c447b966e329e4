package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

var bookNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type bookFixture struct {
	handler   *BookSessionHandler
	schedules *fakeScheduleRepo
	sessions  *fakeSessionRepo
	directory *fakeDirectory
	events    *recordingPublisher
	cache     *recordingInvalidator
	mentorID  uuid.UUID
	slot      *schedule.Schedule
	course    uuid.UUID
}

func newBookFixture(t *testing.T) *bookFixture {
	t.Helper()

	f := &bookFixture{
		schedules: newFakeScheduleRepo(),
		sessions:  newFakeSessionRepo(),
		directory: newFakeDirectory(),
		events:    &recordingPublisher{},
		cache:     &recordingInvalidator{},
		mentorID:  uuid.New(),
	}
	f.slot = schedule.New(f.mentorID,
		schedule.NewTimeBlock(bookNow.Add(24*time.Hour), bookNow.Add(25*time.Hour)), bookNow)
	f.schedules.seed(f.slot)
	f.course = f.directory.addCourse(f.mentorID).ID

	f.handler = NewBookSessionHandler(
		f.schedules, f.sessions, f.directory, f.cache, f.events,
		shared.FixedClock{Time: bookNow}, testLogger())
	return f
}

func (f *bookFixture) command() BookSessionCommand {
	return BookSessionCommand{
		LearnerID:  uuid.New(),
		CourseID:   f.course,
		ScheduleID: f.slot.ID,
		Type:       session.TypeOneOnOne,
	}
}

func TestBookSession(t *testing.T) {
	f := newBookFixture(t)

	sess, err := f.handler.Handle(context.Background(), f.command())
	require.NoError(t, err)

	assert.Equal(t, session.StatusPending, sess.Status)
	assert.Equal(t, f.slot.ID, sess.ScheduleID)
	assert.Equal(t, []shared.EventType{shared.EventSessionBooked}, f.events.types())
	assert.Equal(t, 1, f.cache.count())

	stored, err := f.sessions.GetByID(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPending, stored.Status)
}

func TestBookSession_SlotAlreadyClaimed(t *testing.T) {
	f := newBookFixture(t)

	_, err := f.handler.Handle(context.Background(), f.command())
	require.NoError(t, err)

	_, err = f.handler.Handle(context.Background(), f.command())
	assert.ErrorIs(t, err, shared.ErrSlotClaimed)
}

func TestBookSession_ConcurrentRaceHasOneWinner(t *testing.T) {
	f := newBookFixture(t)
	const racers = 16

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		claimed int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.handler.Handle(context.Background(), f.command())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case shared.IsConflict(err):
				claimed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, claimed)
}

func TestBookSession_ScheduleNotFound(t *testing.T) {
	f := newBookFixture(t)
	cmd := f.command()
	cmd.ScheduleID = uuid.New()

	_, err := f.handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBookSession_CourseMentorMismatch(t *testing.T) {
	f := newBookFixture(t)
	cmd := f.command()
	cmd.CourseID = f.directory.addCourse(uuid.New()).ID

	_, err := f.handler.Handle(context.Background(), cmd)
	assert.True(t, shared.IsValidation(err))
}

func TestBookSession_PastSlotRejected(t *testing.T) {
	f := newBookFixture(t)
	past := schedule.New(f.mentorID,
		schedule.NewTimeBlock(bookNow.Add(-2*time.Hour), bookNow.Add(-time.Hour)), bookNow)
	f.schedules.seed(past)

	cmd := f.command()
	cmd.ScheduleID = past.ID

	_, err := f.handler.Handle(context.Background(), cmd)
	assert.True(t, shared.IsValidation(err))
}

func TestBookSession_InvalidCommand(t *testing.T) {
	f := newBookFixture(t)

	cmd := f.command()
	cmd.LearnerID = uuid.Nil
	_, err := f.handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	cmd = f.command()
	cmd.Type = session.Type("webinar")
	_, err = f.handler.Handle(context.Background(), cmd)
	assert.True(t, shared.IsValidation(err))
}
