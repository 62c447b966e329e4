package query

import (
	"context"

	"github.com/mentorhub/mentor-scheduling/internal/domain/availability"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// ListBookableSlotsHandler is the learner-facing availability view: only
// slots that are available and start in the future, flattened across days.
type ListBookableSlotsHandler struct {
	availability *GetAvailabilityHandler
	clock        shared.Clock
}

// NewListBookableSlotsHandler creates the handler.
func NewListBookableSlotsHandler(availabilityHandler *GetAvailabilityHandler, clock shared.Clock) *ListBookableSlotsHandler {
	return &ListBookableSlotsHandler{availability: availabilityHandler, clock: clock}
}

// Handle computes the bookable slots for the query window. Unavailable slots
// are filtered out entirely, and a slot whose start has passed is never
// returned regardless of status.
func (h *ListBookableSlotsHandler) Handle(ctx context.Context, q GetAvailabilityQuery) ([]availability.TimeSlot, error) {
	days, err := h.availability.Handle(ctx, q)
	if err != nil {
		return nil, err
	}
	return availability.Bookable(days, h.clock.Now()), nil
}
