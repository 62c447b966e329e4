package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
)

var (
	mentorID = uuid.New()
	buildNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newSchedule(t *testing.T, start string, d time.Duration) *schedule.Schedule {
	t.Helper()
	startAt, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	return schedule.New(mentorID, schedule.NewTimeBlock(startAt, startAt.Add(d)), buildNow)
}

func newClaim(t *testing.T, scheduleID uuid.UUID, status session.Status) *session.Session {
	t.Helper()
	s, err := session.New(uuid.New(), uuid.New(), scheduleID, session.TypeOneOnOne, buildNow)
	require.NoError(t, err)
	switch status {
	case session.StatusPending:
	case session.StatusScheduled:
		require.NoError(t, s.Approve(buildNow))
	case session.StatusRescheduling:
		require.NoError(t, s.Approve(buildNow))
		require.NoError(t, s.BeginReschedule(uuid.New(), "note", buildNow))
	case session.StatusCancelled:
		require.NoError(t, s.Cancel(buildNow))
	default:
		t.Fatalf("unsupported status %s", status)
	}
	return s
}

func TestBuild_BucketsByDayInOrder(t *testing.T) {
	schedules := []*schedule.Schedule{
		newSchedule(t, "2025-06-03T14:00:00Z", time.Hour),
		newSchedule(t, "2025-06-02T10:00:00Z", time.Hour),
		newSchedule(t, "2025-06-02T16:00:00Z", time.Hour),
		newSchedule(t, "2025-06-03T09:00:00Z", time.Hour),
	}

	days := Build(schedules, nil, buildNow, nil)

	require.Len(t, days, 2)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), days[1].Date)

	require.Len(t, days[0].Slots, 2)
	assert.True(t, days[0].Slots[0].Start.Before(days[0].Slots[1].Start))
	require.Len(t, days[1].Slots, 2)
	assert.True(t, days[1].Slots[0].Start.Before(days[1].Slots[1].Start))

	for _, day := range days {
		for _, slot := range day.Slots {
			assert.Equal(t, StatusAvailable, slot.Status)
		}
	}
}

func TestBuild_ActiveClaimsMarkUnavailable(t *testing.T) {
	open := newSchedule(t, "2025-06-02T10:00:00Z", time.Hour)
	pending := newSchedule(t, "2025-06-02T12:00:00Z", time.Hour)
	scheduled := newSchedule(t, "2025-06-02T14:00:00Z", time.Hour)
	rescheduling := newSchedule(t, "2025-06-02T16:00:00Z", time.Hour)

	active := []*session.Session{
		newClaim(t, pending.ID, session.StatusPending),
		newClaim(t, scheduled.ID, session.StatusScheduled),
		newClaim(t, rescheduling.ID, session.StatusRescheduling),
	}

	days := Build([]*schedule.Schedule{open, pending, scheduled, rescheduling}, active, buildNow, nil)

	require.Len(t, days, 1)
	statuses := map[uuid.UUID]SlotStatus{}
	for _, slot := range days[0].Slots {
		statuses[slot.ScheduleID] = slot.Status
	}
	assert.Equal(t, StatusAvailable, statuses[open.ID])
	assert.Equal(t, StatusUnavailable, statuses[pending.ID])
	assert.Equal(t, StatusUnavailable, statuses[scheduled.ID])
	assert.Equal(t, StatusUnavailable, statuses[rescheduling.ID])
}

func TestBuild_CancelledLeavesNoResidue(t *testing.T) {
	slot := newSchedule(t, "2025-06-02T10:00:00Z", time.Hour)
	cancelled := newClaim(t, slot.ID, session.StatusCancelled)

	days := Build([]*schedule.Schedule{slot}, []*session.Session{cancelled}, buildNow, nil)

	require.Len(t, days, 1)
	require.Len(t, days[0].Slots, 1)
	assert.Equal(t, StatusAvailable, days[0].Slots[0].Status)
}

func TestBuild_ExcludesPastSlots(t *testing.T) {
	gone := newSchedule(t, "2025-06-01T09:00:00Z", time.Hour)
	startingNow := newSchedule(t, "2025-06-01T12:00:00Z", time.Hour)
	upcoming := newSchedule(t, "2025-06-01T15:00:00Z", time.Hour)

	days := Build([]*schedule.Schedule{gone, startingNow, upcoming}, nil, buildNow, nil)

	require.Len(t, days, 1)
	require.Len(t, days[0].Slots, 1)
	assert.Equal(t, upcoming.ID, days[0].Slots[0].ScheduleID)
}

func TestBuild_BucketsInRequestedTimezone(t *testing.T) {
	// 23:00 UTC on June 2nd is already June 3rd in UTC+5.
	slot := newSchedule(t, "2025-06-02T23:00:00Z", time.Hour)
	loc := time.FixedZone("UTC+5", 5*3600)

	days := Build([]*schedule.Schedule{slot}, nil, buildNow, loc)

	require.Len(t, days, 1)
	assert.Equal(t, 3, days[0].Date.Day())
}

func TestBookable(t *testing.T) {
	past := newSchedule(t, "2025-06-02T10:00:00Z", time.Hour)
	open := newSchedule(t, "2025-06-03T10:00:00Z", time.Hour)
	claimed := newSchedule(t, "2025-06-03T12:00:00Z", time.Hour)

	days := Build(
		[]*schedule.Schedule{past, open, claimed},
		[]*session.Session{newClaim(t, claimed.ID, session.StatusPending)},
		buildNow,
		nil,
	)

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	slots := Bookable(days, now)

	require.Len(t, slots, 1)
	assert.Equal(t, open.ID, slots[0].ScheduleID)
	assert.Equal(t, StatusAvailable, slots[0].Status)
}

func TestBookable_SlotStartingNowExcluded(t *testing.T) {
	slot := newSchedule(t, "2025-06-03T10:00:00Z", time.Hour)
	days := Build([]*schedule.Schedule{slot}, nil, buildNow, nil)

	assert.Empty(t, Bookable(days, slot.Start()))
	assert.Len(t, Bookable(days, slot.Start().Add(-time.Second)), 1)
}
