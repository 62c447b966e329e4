// Package availability builds the day-bucketed slot view learners book from:
// each published schedule in a window becomes a slot marked available or
// unavailable depending on whether an active session claims it.
package availability

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/pkg/timeutil"
)

// SlotStatus marks whether a slot can still be booked.
type SlotStatus string

const (
	StatusAvailable   SlotStatus = "available"
	StatusUnavailable SlotStatus = "unavailable"
)

// TimeSlot is a schedule seen from the booking perspective.
type TimeSlot struct {
	ScheduleID uuid.UUID  `json:"schedule_id"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Status     SlotStatus `json:"status"`
}

// DayTimeSlots groups a calendar day's slots, ordered by start time.
type DayTimeSlots struct {
	Date  time.Time  `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

// Build buckets the mentor's schedules by calendar date in loc (UTC when
// nil) and flags each slot. A slot whose start is not after now is dropped
// entirely; the view is forward-looking only. A remaining slot is unavailable
// while an active session (pending, scheduled, rescheduling) claims it;
// cancelled sessions leave no reservation residue. Days are ordered
// ascending, slots within a day by start time ascending.
func Build(schedules []*schedule.Schedule, active []*session.Session, now time.Time, loc *time.Location) []DayTimeSlots {
	if loc == nil {
		loc = time.UTC
	}

	claimed := make(map[uuid.UUID]bool, len(active))
	for _, s := range active {
		if s.Status.IsActive() {
			claimed[s.ScheduleID] = true
		}
	}

	byDay := make(map[time.Time][]TimeSlot)
	for _, sch := range schedules {
		if !sch.Start().After(now) {
			continue
		}
		status := StatusAvailable
		if claimed[sch.ID] {
			status = StatusUnavailable
		}
		day := timeutil.StartOfDay(sch.Start(), loc)
		byDay[day] = append(byDay[day], TimeSlot{
			ScheduleID: sch.ID,
			Start:      sch.Start(),
			End:        sch.End(),
			Status:     status,
		})
	}

	days := make([]DayTimeSlots, 0, len(byDay))
	for day, slots := range byDay {
		sort.Slice(slots, func(i, j int) bool {
			return slots[i].Start.Before(slots[j].Start)
		})
		days = append(days, DayTimeSlots{Date: day, Slots: slots})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// Bookable flattens the day view to the slots a learner may actually claim:
// available ones whose start has not yet passed. Unavailable slots are
// filtered out, not just flagged. The start check repeats Build's filter with
// the caller's own now, since the day view may have been cached earlier.
func Bookable(days []DayTimeSlots, now time.Time) []TimeSlot {
	var out []TimeSlot
	for _, day := range days {
		for _, slot := range day.Slots {
			if slot.Status != StatusAvailable {
				continue
			}
			if !slot.Start.After(now) {
				continue
			}
			out = append(out, slot)
		}
	}
	return out
}
