package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/availability"
)

// DefaultAvailabilityTTL keeps the cached view short-lived: availability is
// a hint, not a reservation, and the booking write path never trusts it.
const DefaultAvailabilityTTL = 60 * time.Second

// AvailabilityCache caches computed day views per mentor and window. It
// implements query.AvailabilityCache and command.AvailabilityInvalidator.
type AvailabilityCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewAvailabilityCache creates the cache with the given TTL (default when
// zero).
func NewAvailabilityCache(cache *Cache, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = DefaultAvailabilityTTL
	}
	return &AvailabilityCache{cache: cache, ttl: ttl}
}

// Get returns the cached day view and whether it was present.
func (c *AvailabilityCache) Get(ctx context.Context, key string) ([]availability.DayTimeSlots, bool, error) {
	var days []availability.DayTimeSlots
	if err := c.cache.Get(ctx, key, &days); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return days, true, nil
}

// Set stores a computed day view.
func (c *AvailabilityCache) Set(ctx context.Context, key string, days []availability.DayTimeSlots) error {
	return c.cache.Set(ctx, key, days, c.ttl)
}

// InvalidateMentor drops every cached window for the mentor.
func (c *AvailabilityCache) InvalidateMentor(ctx context.Context, mentorID uuid.UUID) error {
	return c.cache.DeleteByPattern(ctx, fmt.Sprintf("availability:%s:*", mentorID))
}
