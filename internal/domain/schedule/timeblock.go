// Package schedule contains the mentor availability domain: the TimeBlock
// value object, the Schedule aggregate, and the batch validator/expander that
// turns proposed blocks into persisted schedules.
package schedule

import (
	"time"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// Bounds for a single bookable block. A block has to be long enough to hold a
// mentoring session and short enough to fit inside a day-scale window, and it
// cannot be published more than a year ahead.
const (
	MinBlockDuration = 30 * time.Minute
	MaxBlockDuration = 18 * time.Hour
	MaxLeadTime      = 52 * 7 * 24 * time.Hour
)

// TimeBlock is an immutable start/end interval. It is the raw value used both
// for schedule definitions and for conflict checks.
type TimeBlock struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeBlock creates a TimeBlock; times are normalized to UTC.
func NewTimeBlock(start, end time.Time) TimeBlock {
	return TimeBlock{Start: start.UTC(), End: end.UTC()}
}

// Duration returns the length of the block.
func (b TimeBlock) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Shift returns a copy of the block moved by d.
func (b TimeBlock) Shift(d time.Duration) TimeBlock {
	return TimeBlock{Start: b.Start.Add(d), End: b.End.Add(d)}
}

// ConflictsWith reports whether two blocks share any point in time.
//
// The predicate keeps the exact boundary semantics the booking rules depend
// on: the start comparison is non-strict against the other block's start and
// the end comparison is non-strict against the other block's end, so blocks
// that share a start or an end instant conflict, while strictly back-to-back
// blocks do not. Full containment in either direction conflicts. The clauses
// look asymmetric but the result is symmetric over the pair.
func (b TimeBlock) ConflictsWith(other TimeBlock) bool {
	if b.Start.Before(other.End) && !b.Start.Before(other.Start) {
		return true
	}
	if !b.End.After(other.End) && b.End.After(other.Start) {
		return true
	}
	if !b.Start.After(other.Start) && !b.End.Before(other.End) {
		return true
	}
	return false
}

// Validate checks the single-block rules against the given current time:
// the start must not be in the past, must lie within the 52-week lead window,
// and the duration must be within [MinBlockDuration, MaxBlockDuration].
func (b TimeBlock) Validate(now time.Time) error {
	if b.Start.Before(now) {
		return shared.ErrStartInPast
	}
	if b.Start.After(now.Add(MaxLeadTime)) {
		return shared.ErrStartTooFar
	}
	if b.Duration() < MinBlockDuration {
		return shared.ErrBlockTooShort
	}
	if b.Duration() > MaxBlockDuration {
		return shared.ErrBlockTooLong
	}
	return nil
}
