package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

func newTestValidator(t *testing.T, now string) *Validator {
	t.Helper()
	return NewValidator(shared.FixedClock{Time: mustTime(t, now)})
}

func TestValidateAndExpand_SingleBlock(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	got, err := v.ValidateAndExpand(BatchInput{
		Blocks: []TimeBlock{block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z")},
	}, nil)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mustTime(t, "2025-01-06T10:00:00Z"), got[0].Start)
}

func TestValidateAndExpand_RepeatingProducesWeeklyReplicas(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	got, err := v.ValidateAndExpand(BatchInput{
		Blocks:      []TimeBlock{block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z")},
		Repeating:   true,
		RepeatWeeks: 3,
	}, nil)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, mustTime(t, "2025-01-06T10:00:00Z"), got[0].Start)
	assert.Equal(t, mustTime(t, "2025-01-13T10:00:00Z"), got[1].Start)
	assert.Equal(t, mustTime(t, "2025-01-20T10:00:00Z"), got[2].Start)
	for _, b := range got {
		assert.Equal(t, time.Hour, b.Duration())
	}
}

func TestValidateAndExpand_MultipleBlocksRepeating(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	got, err := v.ValidateAndExpand(BatchInput{
		Blocks: []TimeBlock{
			block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z"),
			block(t, "2025-01-08T14:00:00Z", "2025-01-08T15:00:00Z"),
		},
		Repeating:   true,
		RepeatWeeks: 2,
	}, nil)

	require.NoError(t, err)
	require.Len(t, got, 4)
	// Block i's week-n replica lands at index i*weeks+n.
	assert.Equal(t, mustTime(t, "2025-01-06T10:00:00Z"), got[0].Start)
	assert.Equal(t, mustTime(t, "2025-01-13T10:00:00Z"), got[1].Start)
	assert.Equal(t, mustTime(t, "2025-01-08T14:00:00Z"), got[2].Start)
	assert.Equal(t, mustTime(t, "2025-01-15T14:00:00Z"), got[3].Start)
}

func TestValidateAndExpand_EmptyBatch(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	_, err := v.ValidateAndExpand(BatchInput{}, nil)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestValidateAndExpand_RepeatWeeksOutOfRange(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")
	blocks := []TimeBlock{block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z")}

	for _, weeks := range []int{0, -1, 53} {
		_, err := v.ValidateAndExpand(BatchInput{Blocks: blocks, Repeating: true, RepeatWeeks: weeks}, nil)
		assert.ErrorIs(t, err, shared.ErrOutOfRange, "weeks=%d", weeks)
	}
}

func TestValidateAndExpand_BatchSpanTooWide(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	_, err := v.ValidateAndExpand(BatchInput{
		Blocks: []TimeBlock{
			block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z"),
			block(t, "2025-01-14T10:00:00Z", "2025-01-14T11:00:00Z"),
		},
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrSpanTooWide)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	// Every block in an over-wide batch is reported.
	assert.Len(t, batchErr.Violations, 2)
}

func TestValidateAndExpand_PairwiseConflict(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	_, err := v.ValidateAndExpand(BatchInput{
		Blocks: []TimeBlock{
			block(t, "2025-01-06T10:00:00Z", "2025-01-06T12:00:00Z"),
			block(t, "2025-01-06T11:00:00Z", "2025-01-06T13:00:00Z"),
		},
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrScheduleOverlap)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	indexes := map[int]bool{}
	for _, violation := range batchErr.Violations {
		indexes[violation.BlockIndex] = true
	}
	assert.True(t, indexes[0])
	assert.True(t, indexes[1])
}

func TestValidateAndExpand_BackToBackBlocksAccepted(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	got, err := v.ValidateAndExpand(BatchInput{
		Blocks: []TimeBlock{
			block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z"),
			block(t, "2025-01-06T11:00:00Z", "2025-01-06T12:00:00Z"),
		},
	}, nil)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestValidateAndExpand_ConflictWithExisting(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")
	existing := []TimeBlock{block(t, "2025-01-13T10:30:00Z", "2025-01-13T11:30:00Z")}

	// The submitted week is clear; the second replica collides.
	_, err := v.ValidateAndExpand(BatchInput{
		Blocks:      []TimeBlock{block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z")},
		Repeating:   true,
		RepeatWeeks: 3,
	}, existing)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrScheduleOverlap)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Violations, 1)
	assert.Equal(t, 0, batchErr.Violations[0].BlockIndex)
	assert.Equal(t, 1, batchErr.Violations[0].Week)
}

func TestValidateAndExpand_ReplicaBeyondLeadTime(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	// The block itself is fine, but week 51's replica passes the 52-week
	// horizon.
	_, err := v.ValidateAndExpand(BatchInput{
		Blocks:      []TimeBlock{block(t, "2025-01-10T10:00:00Z", "2025-01-10T11:00:00Z")},
		Repeating:   true,
		RepeatWeeks: 52,
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrStartTooFar)
}

func TestValidateAndExpand_ReportsEveryViolation(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")

	_, err := v.ValidateAndExpand(BatchInput{
		Blocks: []TimeBlock{
			block(t, "2024-12-30T10:00:00Z", "2024-12-30T11:00:00Z"), // past
			block(t, "2025-01-05T10:00:00Z", "2025-01-05T10:10:00Z"), // too short
		},
	}, nil)

	require.Error(t, err)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Violations, 2)
	assert.True(t, errors.Is(batchErr.Violations[0].Err, shared.ErrStartInPast))
	assert.True(t, errors.Is(batchErr.Violations[1].Err, shared.ErrBlockTooShort))
}

func TestValidateReplacement(t *testing.T) {
	v := newTestValidator(t, "2025-01-01T00:00:00Z")
	others := []TimeBlock{block(t, "2025-01-06T10:00:00Z", "2025-01-06T11:00:00Z")}

	t.Run("valid replacement", func(t *testing.T) {
		err := v.ValidateReplacement(block(t, "2025-01-06T12:00:00Z", "2025-01-06T13:00:00Z"), others)
		assert.NoError(t, err)
	})

	t.Run("overlaps another schedule", func(t *testing.T) {
		err := v.ValidateReplacement(block(t, "2025-01-06T10:30:00Z", "2025-01-06T11:30:00Z"), others)
		assert.ErrorIs(t, err, shared.ErrScheduleOverlap)
	})

	t.Run("invalid block", func(t *testing.T) {
		err := v.ValidateReplacement(block(t, "2024-12-01T10:00:00Z", "2024-12-01T11:00:00Z"), others)
		assert.ErrorIs(t, err, shared.ErrStartInPast)
	})
}
