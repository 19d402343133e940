package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunJob(t *testing.T) {
	s := NewScheduler()

	var calls atomic.Int32
	s.AddJob("count", time.Hour, 0, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, s.RunJob(context.Background(), "count"))
	assert.Equal(t, int32(1), calls.Load())

	err := s.RunJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RunJobPropagatesErrorAndPanics(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")

	s.AddJob("fails", time.Hour, 0, func(ctx context.Context) error { return boom })
	s.AddJob("panics", time.Hour, 0, func(ctx context.Context) error { panic("kaboom") })

	assert.ErrorIs(t, s.RunJob(context.Background(), "fails"), boom)

	err := s.RunJob(context.Background(), "panics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestScheduler_TimeoutIsApplied(t *testing.T) {
	s := NewScheduler()

	s.AddJob("slow", time.Hour, 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := s.RunJob(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := NewScheduler()

	release := make(chan struct{})
	started := make(chan struct{})
	s.AddJob("blocking", time.Hour, 0, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- s.RunJob(context.Background(), "blocking") }()
	<-started

	assert.ErrorIs(t, s.RunJob(context.Background(), "blocking"), ErrJobRunning)

	close(release)
	assert.NoError(t, <-done)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()

	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, 0, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}

type stubDeadlineService struct {
	deadline.DeadlineService
	result deadline.SweepResult
	err    error
	calls  int
}

func (s *stubDeadlineService) Sweep(ctx context.Context) (deadline.SweepResult, error) {
	s.calls++
	return s.result, s.err
}

func TestDeadlineJobs(t *testing.T) {
	svc := &stubDeadlineService{result: deadline.SweepResult{Checked: 3, Sent: 1}}
	jobs := NewDeadlineJobs(svc, 0)
	assert.Equal(t, 24*time.Hour, jobs.interval)

	s := NewScheduler()
	jobs.RegisterJobs(s)
	assert.Equal(t, []string{DeadlineNotificationsJob}, s.Jobs())

	require.NoError(t, s.RunJob(context.Background(), DeadlineNotificationsJob))
	assert.Equal(t, 1, svc.calls)

	svc.err = errors.New("db down")
	assert.Error(t, s.RunJob(context.Background(), DeadlineNotificationsJob))
}
