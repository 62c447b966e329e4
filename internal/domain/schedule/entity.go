package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// Schedule is a single mentor-published bookable time interval. One schedule
// row is one bookable unit; repeating submissions are expanded into separate
// rows before they reach persistence.
type Schedule struct {
	ID        uuid.UUID
	MentorID  uuid.UUID
	Block     TimeBlock
	CreatedAt time.Time
}

// New creates a Schedule for a validated block.
func New(mentorID uuid.UUID, block TimeBlock, now time.Time) *Schedule {
	return &Schedule{
		ID:        uuid.New(),
		MentorID:  mentorID,
		Block:     block,
		CreatedAt: now,
	}
}

// Start returns the block start.
func (s *Schedule) Start() time.Time {
	return s.Block.Start
}

// End returns the block end.
func (s *Schedule) End() time.Time {
	return s.Block.End
}

// Replace swaps the schedule's block for an already-validated one.
func (s *Schedule) Replace(block TimeBlock) {
	s.Block = block
}

// Validate checks entity-level integrity.
func (s *Schedule) Validate() error {
	if s.ID == uuid.Nil {
		return shared.NewDomainError("schedule", "Validate", shared.ErrInvalidID, "schedule id is required")
	}
	if s.MentorID == uuid.Nil {
		return shared.NewDomainError("schedule", "Validate", shared.ErrInvalidID, "mentor id is required")
	}
	if !s.Block.End.After(s.Block.Start) {
		return shared.NewDomainError("schedule", "Validate", shared.ErrValidation, "block end must be after start")
	}
	return nil
}
