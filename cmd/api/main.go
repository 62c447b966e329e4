// Package main is the entry point of the booking API server.
//
// The architecture follows Clean Architecture and DDD:
//   - Domain: scheduling and booking rules with no external dependencies
//   - Application: use case orchestration (commands and queries)
//   - Infrastructure: postgres, redis, SMTP, the event bus
//   - Interface: HTTP handlers
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mentorhub/mentor-scheduling/config"
	"github.com/mentorhub/mentor-scheduling/internal/application/command"
	"github.com/mentorhub/mentor-scheduling/internal/application/eventhandler"
	"github.com/mentorhub/mentor-scheduling/internal/application/query"
	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/external/mail"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/messaging"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/persistence/postgres"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/persistence/redis"
	httpserver "github.com/mentorhub/mentor-scheduling/internal/interface/http"
	"github.com/mentorhub/mentor-scheduling/internal/interface/http/handlers"
	"github.com/mentorhub/mentor-scheduling/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.ParseLevel(cfg.App.LogLevel), logger.Format(cfg.App.LogFormat))
	slog.SetDefault(log)
	log.Info("starting api server",
		slog.String("app", cfg.App.Name),
		slog.String("env", string(cfg.App.Environment)))

	// Postgres
	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Redis (optional)
	var (
		availabilityCache query.AvailabilityCache = query.NoopAvailabilityCache{}
		invalidator       command.AvailabilityInvalidator = command.NoopInvalidator{}
		redisPinger       handlers.Pinger
	)
	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.Close()

		ac := redis.NewAvailabilityCache(cache, redis.DefaultAvailabilityTTL)
		availabilityCache = ac
		invalidator = ac
		redisPinger = cache
	} else {
		log.Warn("redis disabled, availability caching off")
	}

	// Mail
	mailer, err := mail.NewClient(cfg.Mail)
	if err != nil {
		return fmt.Errorf("configure mail: %w", err)
	}

	// Event bus
	bus := messaging.NewEventBus(messaging.DefaultConfig())
	defer bus.Close()

	clock := shared.SystemClock{}
	scheduleRepo := postgres.NewScheduleRepository(conn)
	sessionRepo := postgres.NewSessionRepository(conn)
	directoryRepo := postgres.NewDirectoryRepository(conn)
	validator := schedule.NewValidator(clock)

	notifications := eventhandler.NewSessionNotificationsHandler(
		scheduleRepo, directoryRepo, mailer, logger.Component(log, "notifications"))
	if err := notifications.Register(bus); err != nil {
		return fmt.Errorf("register notification handler: %w", err)
	}

	// Application layer
	createSchedule := command.NewCreateScheduleHandler(scheduleRepo, validator, invalidator, bus, clock, log)
	editSchedule := command.NewEditScheduleHandler(scheduleRepo, sessionRepo, validator, invalidator, bus, clock, log)
	deleteSchedule := command.NewDeleteScheduleHandler(scheduleRepo, sessionRepo, invalidator, bus, log)
	bookSession := command.NewBookSessionHandler(scheduleRepo, sessionRepo, directoryRepo, invalidator, bus, clock, log)
	decideSession := command.NewDecideSessionHandler(scheduleRepo, sessionRepo, invalidator, bus, clock, log)
	rescheduleSession := command.NewRescheduleSessionHandler(scheduleRepo, sessionRepo, invalidator, bus, clock, log)
	cancelSession := command.NewCancelSessionHandler(scheduleRepo, sessionRepo, invalidator, bus, clock, log)
	completeSession := command.NewCompleteSessionHandler(scheduleRepo, sessionRepo, bus, clock, log)

	getAvailability := query.NewGetAvailabilityHandler(scheduleRepo, sessionRepo, availabilityCache, clock, log)
	listBookable := query.NewListBookableSlotsHandler(getAvailability, clock)
	listSessions := query.NewListSessionsHandler(sessionRepo)

	// HTTP layer
	server := httpserver.NewServer(cfg.HTTP, httpserver.Dependencies{
		Schedules:    handlers.NewScheduleHandler(createSchedule, editSchedule, deleteSchedule),
		Sessions:     handlers.NewSessionHandler(bookSession, decideSession, rescheduleSession, cancelSession, completeSession, listSessions),
		Availability: handlers.NewAvailabilityHandler(getAvailability, listBookable),
		Health:       handlers.NewHealthHandler(map[string]handlers.Pinger{"postgres": conn, "redis": redisPinger}),
		Logger:       logger.Component(log, "http"),
	})

	if err := server.Start(ctx); err != nil {
		return err
	}

	log.Info("api server stopped")
	return nil
}
