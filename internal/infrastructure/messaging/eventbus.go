// Package messaging implements the in-process event bus that decouples the
// booking write path from its side effects. Commands publish domain events;
// notification handlers consume them on a bounded worker pool with retry, so
// a slow SMTP server never stretches an HTTP request.
package messaging

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// ErrEventBusClosed is returned when publishing or subscribing after Close.
var ErrEventBusClosed = errors.New("event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains event bus configuration.
type Config struct {
	// AsyncMode runs handlers on the worker pool. Synchronous mode runs
	// them inline on Publish, which tests rely on for determinism.
	AsyncMode bool

	// WorkerPoolSize bounds the number of concurrently running handlers.
	WorkerPoolSize int

	// MaxAttempts is the number of times a failing handler is invoked per
	// event, first try included.
	MaxAttempts int

	// RetryDelay is the delay before the first retry; subsequent retries
	// back off exponentially up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		MaxAttempts:    3,
		RetryDelay:     500 * time.Millisecond,
		MaxRetryDelay:  10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// EventBus is an in-memory implementation of shared.EventBus for
// single-instance deployments. Handlers registered for an event type run
// whenever a matching event is published; each handler failure is isolated,
// logged, and retried without affecting the publisher or other handlers.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	closed      bool

	config  Config
	workers chan struct{}
	closeCh chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewEventBus creates an event bus from config.
func NewEventBus(config Config) *EventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	return &EventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		config:   config,
		workers:  make(chan struct{}, config.WorkerPoolSize),
		closeCh:  make(chan struct{}),
		logger:   config.Logger,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed handler", slog.String("event_type", string(eventType)))
	return nil
}

// SubscribeAll registers a handler invoked for every event.
func (b *EventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish delivers an event to all subscribed handlers. In async mode it
// returns as soon as delivery is scheduled; handler errors never propagate
// back to the caller.
func (b *EventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", slog.String("event_type", string(event.EventType())))
		return nil
	}

	for _, handler := range handlers {
		if b.config.AsyncMode {
			b.scheduleAsync(event, handler)
		} else {
			b.runWithRetry(event, handler)
		}
	}
	return nil
}

// Close stops accepting events and waits for in-flight handlers.
func (b *EventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus closed")
	return nil
}

func (b *EventBus) scheduleAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		select {
		case b.workers <- struct{}{}:
			defer func() { <-b.workers }()
		case <-b.closeCh:
			return
		}

		b.runWithRetry(event, handler)
	}()
}

// runWithRetry invokes one handler with panic recovery and exponential
// backoff. An event whose handler exhausts all attempts is dropped with an
// error log; there is no durable queue behind this bus.
func (b *EventBus) runWithRetry(event shared.Event, handler shared.EventHandler) {
	var lastErr error
	for attempt := 1; attempt <= b.config.MaxAttempts; attempt++ {
		lastErr = b.invoke(event, handler)
		if lastErr == nil {
			return
		}

		if attempt == b.config.MaxAttempts {
			break
		}

		delay := b.backoff(attempt)
		b.logger.Warn("event handler failed, retrying",
			slog.String("event_type", string(event.EventType())),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		select {
		case <-time.After(delay):
		case <-b.closeCh:
			return
		}
	}

	b.logger.Error("event handler gave up",
		slog.String("event_type", string(event.EventType())),
		slog.String("aggregate_id", event.AggregateID()),
		slog.Int("attempts", b.config.MaxAttempts),
		slog.Any("error", lastErr))
}

func (b *EventBus) invoke(event shared.Event, handler shared.EventHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(event)
}

func (b *EventBus) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(b.config.RetryDelay) * math.Pow(2, float64(attempt-1)))
	if b.config.MaxRetryDelay > 0 && delay > b.config.MaxRetryDelay {
		delay = b.config.MaxRetryDelay
	}
	return delay
}
