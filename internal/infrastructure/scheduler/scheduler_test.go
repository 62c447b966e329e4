package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubJob struct {
	name string
	runs chan struct{}
	err  error
}

func (j *stubJob) Name() string        { return j.name }
func (j *stubJob) Description() string { return "test job" }

func (j *stubJob) Run(context.Context) error {
	if j.runs != nil {
		select {
		case j.runs <- struct{}{}:
		default:
		}
	}
	return j.err
}

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(5 * time.Minute)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(5*time.Minute), s.Next(at))
	assert.Equal(t, "@every 5m0s", s.String())
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(Config{Logger: testLogger()})
	sched := NewIntervalSchedule(time.Minute)

	require.NoError(t, s.Register(&stubJob{name: "a"}, sched))

	assert.ErrorIs(t, s.Register(&stubJob{name: "a"}, sched), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, sched), ErrNilJob)
	assert.ErrorIs(t, s.Register(&stubJob{name: "b"}, nil), ErrNilSchedule)
}

func TestScheduler_EnableDisable(t *testing.T) {
	s := NewScheduler(Config{Logger: testLogger()})
	require.NoError(t, s.Register(&stubJob{name: "a"}, NewIntervalSchedule(time.Minute)))

	assert.NoError(t, s.DisableJob("a"))
	assert.NoError(t, s.EnableJob("a"))
	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)
	assert.ErrorIs(t, s.EnableJob("missing"), ErrJobNotFound)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := NewScheduler(Config{Logger: testLogger()})

	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunsDueJob(t *testing.T) {
	// The clock advances ahead of real time, so the nanosecond interval is
	// always due by the first tick.
	clock := shared.ClockFunc(func() time.Time { return time.Now().Add(time.Hour) })
	s := NewScheduler(Config{Logger: testLogger(), Clock: clock})

	job := &stubJob{name: "due", runs: make(chan struct{}, 1)}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Nanosecond)))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-job.runs:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not dispatched")
	}
}

func TestScheduler_RecordsFailedRun(t *testing.T) {
	clock := shared.ClockFunc(func() time.Time { return time.Now().Add(time.Hour) })
	s := NewScheduler(Config{Logger: testLogger(), Clock: clock})

	job := &stubJob{name: "failing", runs: make(chan struct{}, 1), err: errors.New("boom")}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Nanosecond)))
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-job.runs:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not dispatched")
	}
	require.NoError(t, s.Stop())

	result, ok := s.LastRun("failing")
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.EqualError(t, result.Error, "boom")
}
