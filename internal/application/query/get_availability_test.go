package query

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentor-scheduling/internal/domain/availability"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
	"github.com/mentorhub/mentor-scheduling/pkg/timeutil"
)

var queryNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubScheduleRepo serves a fixed set of schedules and records the window it
// was asked for.
type stubScheduleRepo struct {
	schedules []*schedule.Schedule
	calls     int
	lastFrom  time.Time
	lastTo    time.Time
}

func (r *stubScheduleRepo) CreateBatch(context.Context, []*schedule.Schedule) error { return nil }
func (r *stubScheduleRepo) GetByID(context.Context, uuid.UUID) (*schedule.Schedule, error) {
	return nil, shared.ErrNotFound
}
func (r *stubScheduleRepo) Update(context.Context, *schedule.Schedule) error { return nil }
func (r *stubScheduleRepo) Delete(context.Context, uuid.UUID) error          { return nil }

func (r *stubScheduleRepo) ListByMentor(_ context.Context, _ uuid.UUID, from, to time.Time) ([]*schedule.Schedule, error) {
	r.calls++
	r.lastFrom, r.lastTo = from, to
	return r.schedules, nil
}

type stubSessionRepo struct {
	active []*session.Session
}

func (r *stubSessionRepo) Create(context.Context, *session.Session) error { return nil }
func (r *stubSessionRepo) GetByID(context.Context, uuid.UUID) (*session.Session, error) {
	return nil, shared.ErrNotFound
}
func (r *stubSessionRepo) Update(context.Context, *session.Session) error { return nil }
func (r *stubSessionRepo) ListByLearner(context.Context, uuid.UUID, session.ListOptions) ([]*session.Session, error) {
	return nil, nil
}
func (r *stubSessionRepo) ListPendingByMentor(context.Context, uuid.UUID, session.ListOptions) ([]*session.Session, error) {
	return nil, nil
}
func (r *stubSessionRepo) ListStartingBetween(context.Context, time.Time, time.Time) ([]session.ReminderTarget, error) {
	return nil, nil
}

func (r *stubSessionRepo) ListActiveBySchedules(context.Context, []uuid.UUID) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range r.active {
		if s.Status.IsActive() {
			out = append(out, s)
		}
	}
	return out, nil
}

type recordingCache struct {
	store map[string][]availability.DayTimeSlots
	gets  int
	sets  int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{store: make(map[string][]availability.DayTimeSlots)}
}

func (c *recordingCache) Get(_ context.Context, key string) ([]availability.DayTimeSlots, bool, error) {
	c.gets++
	days, ok := c.store[key]
	return days, ok, nil
}

func (c *recordingCache) Set(_ context.Context, key string, days []availability.DayTimeSlots) error {
	c.sets++
	c.store[key] = days
	return nil
}

func newSlot(mentorID uuid.UUID, start time.Time, d time.Duration) *schedule.Schedule {
	return schedule.New(mentorID, schedule.NewTimeBlock(start, start.Add(d)), queryNow)
}

func claim(t *testing.T, scheduleID uuid.UUID) *session.Session {
	t.Helper()
	s, err := session.New(uuid.New(), uuid.New(), scheduleID, session.TypeOneOnOne, queryNow)
	require.NoError(t, err)
	return s
}

func TestGetAvailability_DefaultsWindowToWeek(t *testing.T) {
	mentorID := uuid.New()
	schedules := &stubScheduleRepo{}
	h := NewGetAvailabilityHandler(schedules, &stubSessionRepo{}, nil,
		shared.FixedClock{Time: queryNow}, testLogger())

	_, err := h.Handle(context.Background(), GetAvailabilityQuery{MentorID: mentorID})
	require.NoError(t, err)

	wantFrom := timeutil.StartOfDay(queryNow, time.UTC)
	wantTo := timeutil.EndOfDay(timeutil.AddDays(wantFrom, DefaultWindowDays), time.UTC)
	assert.Equal(t, wantFrom, schedules.lastFrom)
	assert.Equal(t, wantTo, schedules.lastTo)
}

func TestGetAvailability_FlagsClaimedSlots(t *testing.T) {
	mentorID := uuid.New()
	free := newSlot(mentorID, queryNow.Add(24*time.Hour), time.Hour)
	taken := newSlot(mentorID, queryNow.Add(26*time.Hour), time.Hour)

	h := NewGetAvailabilityHandler(
		&stubScheduleRepo{schedules: []*schedule.Schedule{free, taken}},
		&stubSessionRepo{active: []*session.Session{claim(t, taken.ID)}},
		nil, shared.FixedClock{Time: queryNow}, testLogger())

	days, err := h.Handle(context.Background(), GetAvailabilityQuery{MentorID: mentorID})
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Slots, 2)
	assert.Equal(t, availability.StatusAvailable, days[0].Slots[0].Status)
	assert.Equal(t, availability.StatusUnavailable, days[0].Slots[1].Status)
}

func TestGetAvailability_CancelledClaimLeavesSlotAvailable(t *testing.T) {
	mentorID := uuid.New()
	slot := newSlot(mentorID, queryNow.Add(24*time.Hour), time.Hour)
	cancelled := claim(t, slot.ID)
	require.NoError(t, cancelled.Cancel(queryNow))

	h := NewGetAvailabilityHandler(
		&stubScheduleRepo{schedules: []*schedule.Schedule{slot}},
		&stubSessionRepo{active: []*session.Session{cancelled}},
		nil, shared.FixedClock{Time: queryNow}, testLogger())

	days, err := h.Handle(context.Background(), GetAvailabilityQuery{MentorID: mentorID})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, availability.StatusAvailable, days[0].Slots[0].Status)
}

func TestGetAvailability_NeverReturnsPastSlots(t *testing.T) {
	mentorID := uuid.New()
	earlier := newSlot(mentorID, queryNow.Add(-3*time.Hour), time.Hour)
	upcoming := newSlot(mentorID, queryNow.Add(3*time.Hour), time.Hour)

	h := NewGetAvailabilityHandler(
		&stubScheduleRepo{schedules: []*schedule.Schedule{earlier, upcoming}},
		&stubSessionRepo{}, nil, shared.FixedClock{Time: queryNow}, testLogger())

	// The default window opens at the start of today, so the repository still
	// serves this morning's slot; the view must drop it anyway.
	days, err := h.Handle(context.Background(), GetAvailabilityQuery{MentorID: mentorID})
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Slots, 1)
	assert.Equal(t, upcoming.ID, days[0].Slots[0].ScheduleID)
}

func TestGetAvailability_CacheHitSkipsRepositories(t *testing.T) {
	mentorID := uuid.New()
	schedules := &stubScheduleRepo{schedules: []*schedule.Schedule{
		newSlot(mentorID, queryNow.Add(24*time.Hour), time.Hour),
	}}
	cache := newRecordingCache()
	h := NewGetAvailabilityHandler(schedules, &stubSessionRepo{}, cache,
		shared.FixedClock{Time: queryNow}, testLogger())

	q := GetAvailabilityQuery{MentorID: mentorID}
	first, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, schedules.calls)
	assert.Equal(t, 1, cache.sets)

	second, err := h.Handle(context.Background(), GetAvailabilityQuery{MentorID: mentorID})
	require.NoError(t, err)
	assert.Equal(t, 1, schedules.calls)
	assert.Equal(t, first, second)
}

func TestGetAvailability_InvalidQueries(t *testing.T) {
	h := NewGetAvailabilityHandler(&stubScheduleRepo{}, &stubSessionRepo{}, nil,
		shared.FixedClock{Time: queryNow}, testLogger())

	_, err := h.Handle(context.Background(), GetAvailabilityQuery{})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = h.Handle(context.Background(), GetAvailabilityQuery{
		MentorID: uuid.New(),
		From:     queryNow.Add(48 * time.Hour),
		To:       queryNow.Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, shared.ErrOutOfRange)
}

func TestListBookableSlots_FiltersClaimedAndPast(t *testing.T) {
	mentorID := uuid.New()
	past := newSlot(mentorID, queryNow.Add(-2*time.Hour), time.Hour)
	taken := newSlot(mentorID, queryNow.Add(24*time.Hour), time.Hour)
	open := newSlot(mentorID, queryNow.Add(26*time.Hour), time.Hour)

	clock := shared.FixedClock{Time: queryNow}
	inner := NewGetAvailabilityHandler(
		&stubScheduleRepo{schedules: []*schedule.Schedule{past, taken, open}},
		&stubSessionRepo{active: []*session.Session{claim(t, taken.ID)}},
		nil, clock, testLogger())
	h := NewListBookableSlotsHandler(inner, clock)

	slots, err := h.Handle(context.Background(), GetAvailabilityQuery{
		MentorID: mentorID,
		From:     queryNow.Add(-24 * time.Hour),
		To:       queryNow.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, open.ID, slots[0].ScheduleID)
}
