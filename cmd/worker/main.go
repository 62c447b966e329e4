// Package main is the entry point of the background worker. It runs the
// scheduled jobs, currently the hourly-lead session reminder emails.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mentorhub/mentor-scheduling/config"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/external/mail"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/persistence/postgres"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/scheduler"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/scheduler/jobs"
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
	log.Info("starting worker",
		slog.String("app", cfg.App.Name),
		slog.String("env", string(cfg.App.Environment)))

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled, nothing to do")
		return nil
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	mailer, err := mail.NewClient(cfg.Mail)
	if err != nil {
		return fmt.Errorf("configure mail: %w", err)
	}

	clock := shared.SystemClock{}
	sessionRepo := postgres.NewSessionRepository(conn)

	sched := scheduler.NewScheduler(scheduler.Config{
		Logger: logger.Component(log, "scheduler"),
		Clock:  clock,
	})

	reminders := jobs.NewSessionRemindersJob(
		sessionRepo, mailer, clock, logger.Component(log, "reminders"))
	if err := sched.Register(reminders, scheduler.NewIntervalSchedule(cfg.Scheduler.ReminderInterval)); err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	log.Info("worker stopped")
	return nil
}
