package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// Repeating submission bounds. A repeating batch is replicated once per week,
// so the week count shares the 52-week lead-time horizon.
const (
	MinRepeatWeeks = 1
	MaxRepeatWeeks = 52

	// MaxBatchSpan limits one submission to a single week of availability,
	// measured from the earliest start to the latest end in the batch.
	MaxBatchSpan = 7 * 24 * time.Hour
)

// BatchInput is a mentor's proposed set of blocks, optionally repeated weekly.
type BatchInput struct {
	Blocks      []TimeBlock
	Repeating   bool
	RepeatWeeks int
}

// Violation records one rule broken by one (possibly expanded) block, so the
// caller can surface every failing block for UI feedback, not just the first.
type Violation struct {
	// BlockIndex is the index of the offending block in the submitted batch.
	BlockIndex int

	// Week is the expansion week of the replica (0 = the submitted block).
	Week int

	Block TimeBlock
	Err   error
}

func (v Violation) String() string {
	return fmt.Sprintf("block %d week %d [%s - %s]: %v",
		v.BlockIndex, v.Week,
		v.Block.Start.Format(time.RFC3339), v.Block.End.Format(time.RFC3339),
		v.Err)
}

// BatchError aggregates every violation in a rejected batch. The batch is
// rejected atomically: no partial application.
type BatchError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return "schedule batch rejected: " + strings.Join(msgs, "; ")
}

// Is matches the generic validation kind plus every violation's own error.
func (e *BatchError) Is(target error) bool {
	if target == shared.ErrValidation {
		return true
	}
	for _, v := range e.Violations {
		if errors.Is(v.Err, target) {
			return true
		}
	}
	return false
}

// Validator validates proposed batches and expands repeating submissions into
// concrete weekly occurrences.
type Validator struct {
	clock shared.Clock
}

// NewValidator creates a Validator with the given clock.
func NewValidator(clock shared.Clock) *Validator {
	return &Validator{clock: clock}
}

// ValidateAndExpand checks a proposed batch against the single-block rules,
// the one-week batch span, pairwise conflicts, and conflicts with the
// mentor's already-persisted blocks, then expands repeating batches into one
// replica per week shifted by +7 days each. On any violation the whole batch
// is rejected and every failing block is reported.
//
// The returned blocks are ordered by submitted index first, expansion week
// second, so block i's week-n replica lands at index i*weeks+n.
func (v *Validator) ValidateAndExpand(in BatchInput, existing []TimeBlock) ([]TimeBlock, error) {
	const op = "ValidateAndExpand"

	if len(in.Blocks) == 0 {
		return nil, shared.NewDomainError("schedule", op, shared.ErrEmptyValue, "at least one time block is required")
	}

	weeks := 1
	if in.Repeating {
		if in.RepeatWeeks < MinRepeatWeeks || in.RepeatWeeks > MaxRepeatWeeks {
			return nil, shared.NewDomainError("schedule", op, shared.ErrOutOfRange,
				fmt.Sprintf("repeat weeks must be between %d and %d", MinRepeatWeeks, MaxRepeatWeeks))
		}
		weeks = in.RepeatWeeks
	}

	now := v.clock.Now()
	var violations []Violation

	// Single-block rules on the submitted blocks.
	for i, b := range in.Blocks {
		if err := b.Validate(now); err != nil {
			violations = append(violations, Violation{BlockIndex: i, Block: b, Err: err})
		}
	}

	// One submission describes one week of availability.
	earliest, latest := in.Blocks[0].Start, in.Blocks[0].End
	for _, b := range in.Blocks[1:] {
		if b.Start.Before(earliest) {
			earliest = b.Start
		}
		if b.End.After(latest) {
			latest = b.End
		}
	}
	if latest.Sub(earliest) > MaxBatchSpan {
		for i, b := range in.Blocks {
			violations = append(violations, Violation{BlockIndex: i, Block: b, Err: shared.ErrSpanTooWide})
		}
	}

	// Pairwise conflicts inside the batch.
	for i := 0; i < len(in.Blocks); i++ {
		for j := i + 1; j < len(in.Blocks); j++ {
			if in.Blocks[i].ConflictsWith(in.Blocks[j]) {
				violations = append(violations,
					Violation{BlockIndex: i, Block: in.Blocks[i], Err: shared.ErrScheduleOverlap},
					Violation{BlockIndex: j, Block: in.Blocks[j], Err: shared.ErrScheduleOverlap})
			}
		}
	}

	// Expand and re-check each replica. Only the date shifts, so the only
	// rule a replica can newly break is the 52-week lead-time bound.
	expanded := make([]TimeBlock, 0, len(in.Blocks)*weeks)
	for i, b := range in.Blocks {
		for n := 0; n < weeks; n++ {
			replica := b.Shift(time.Duration(n) * 7 * 24 * time.Hour)
			if n > 0 {
				if err := replica.Validate(now); err != nil {
					violations = append(violations, Violation{BlockIndex: i, Week: n, Block: replica, Err: err})
				}
			}
			expanded = append(expanded, replica)
		}
	}

	// Conflicts against the mentor's persisted schedules, including the
	// replica weeks.
	for idx, b := range expanded {
		for _, ex := range existing {
			if b.ConflictsWith(ex) {
				violations = append(violations, Violation{
					BlockIndex: idx / weeks,
					Week:       idx % weeks,
					Block:      b,
					Err:        shared.ErrScheduleOverlap,
				})
				break
			}
		}
	}

	if len(violations) > 0 {
		return nil, &BatchError{Violations: violations}
	}
	return expanded, nil
}

// ValidateReplacement checks a single replacement block for an edited
// schedule against the single-block rules and against the mentor's other
// persisted blocks (the edited schedule itself excluded by the caller).
func (v *Validator) ValidateReplacement(block TimeBlock, others []TimeBlock) error {
	const op = "ValidateReplacement"

	if err := block.Validate(v.clock.Now()); err != nil {
		return shared.WrapError("schedule", op, err, "replacement block is invalid", nil)
	}
	for _, other := range others {
		if block.ConflictsWith(other) {
			return shared.NewDomainError("schedule", op, shared.ErrScheduleOverlap,
				"replacement block overlaps another schedule")
		}
	}
	return nil
}
