// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/availability"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/session"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
	"github.com/mentorhub/mentor-scheduling/pkg/timeutil"
)

// DefaultWindowDays is the availability window when the caller gives no
// explicit range: today through today+7 days.
const DefaultWindowDays = 7

// AvailabilityCache caches computed day views per mentor and window. The
// cached view may lag a write by the cache TTL; booking preconditions are
// always checked against persisted state, never against this cache.
type AvailabilityCache interface {
	// Get returns the cached view and whether it was present.
	Get(ctx context.Context, key string) ([]availability.DayTimeSlots, bool, error)

	// Set stores the computed view under the cache's TTL policy.
	Set(ctx context.Context, key string, days []availability.DayTimeSlots) error
}

// NoopAvailabilityCache disables caching.
type NoopAvailabilityCache struct{}

// Get always misses.
func (NoopAvailabilityCache) Get(context.Context, string) ([]availability.DayTimeSlots, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NoopAvailabilityCache) Set(context.Context, string, []availability.DayTimeSlots) error {
	return nil
}

// GetAvailabilityQuery asks for a mentor's day-bucketed slots in a window.
type GetAvailabilityQuery struct {
	MentorID uuid.UUID

	// From/To bound the window; both zero means today..today+7d.
	From time.Time
	To   time.Time

	// Location controls day bucketing; nil means UTC.
	Location *time.Location
}

// Validate validates and defaults the query.
func (q *GetAvailabilityQuery) Validate(now time.Time) error {
	if q.MentorID == uuid.Nil {
		return shared.NewDomainError("availability", "GetAvailability", shared.ErrInvalidID, "mentor id is required")
	}
	if q.Location == nil {
		q.Location = time.UTC
	}
	if q.From.IsZero() {
		q.From = timeutil.StartOfDay(now, q.Location)
	}
	if q.To.IsZero() {
		q.To = timeutil.EndOfDay(timeutil.AddDays(q.From, DefaultWindowDays), q.Location)
	}
	if q.To.Before(q.From) {
		return shared.NewDomainError("availability", "GetAvailability", shared.ErrOutOfRange, "window end precedes start")
	}
	return nil
}

// GetAvailabilityHandler answers "what can a learner book" for a mentor.
type GetAvailabilityHandler struct {
	schedules schedule.Repository
	sessions  session.Repository
	cache     AvailabilityCache
	clock     shared.Clock
	logger    *slog.Logger
}

// NewGetAvailabilityHandler creates the handler.
func NewGetAvailabilityHandler(
	schedules schedule.Repository,
	sessions session.Repository,
	cache AvailabilityCache,
	clock shared.Clock,
	logger *slog.Logger,
) *GetAvailabilityHandler {
	if cache == nil {
		cache = NoopAvailabilityCache{}
	}
	return &GetAvailabilityHandler{
		schedules: schedules,
		sessions:  sessions,
		cache:     cache,
		clock:     clock,
		logger:    logger,
	}
}

// Handle computes the day view, cache-aside.
func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) ([]availability.DayTimeSlots, error) {
	now := h.clock.Now()
	if err := q.Validate(now); err != nil {
		return nil, err
	}

	key := cacheKey(q)
	if days, ok, err := h.cache.Get(ctx, key); err != nil {
		h.logger.Warn("availability cache read failed", slog.Any("error", err))
	} else if ok {
		return days, nil
	}

	schedules, err := h.schedules.ListByMentor(ctx, q.MentorID, q.From, q.To)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(schedules))
	for _, s := range schedules {
		ids = append(ids, s.ID)
	}
	active, err := h.sessions.ListActiveBySchedules(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	days := availability.Build(schedules, active, now, q.Location)

	if err := h.cache.Set(ctx, key, days); err != nil {
		h.logger.Warn("availability cache write failed", slog.Any("error", err))
	}
	return days, nil
}

func cacheKey(q GetAvailabilityQuery) string {
	return fmt.Sprintf("availability:%s:%d:%d:%s",
		q.MentorID, q.From.Unix(), q.To.Unix(), q.Location.String())
}
