package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs    []Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running map[string]bool
	started bool
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:    make([]Job, 0),
		ctx:     ctx,
		cancel:  cancel,
		running: make(map[string]bool),
	}
}

// AddJob adds a job to the scheduler. A zero timeout lets a run last until Stop.
func (s *Scheduler) AddJob(name string, interval, timeout time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Timeout:  timeout,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval, "timeout", timeout)
}

// Jobs returns the names of the registered jobs
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name
	}
	return names
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(s.ctx, job)
		}
	}
}

// executeJob executes a job and logs results. A run is skipped while the
// previous run of the same job is still in flight.
func (s *Scheduler) executeJob(ctx context.Context, job Job) (err error) {
	s.mu.Lock()
	if s.running[job.Name] {
		s.mu.Unlock()
		slog.Warn("Cron job still running, skipping", "name", job.Name)
		return ErrJobRunning
	}
	s.running[job.Name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, job.Name)
		s.mu.Unlock()
	}()

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("cron job %s panicked: %v", job.Name, p)
			slog.Error("Cron job panicked", "name", job.Name, "panic", p)
		}
	}()

	if err = job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
	return err
}

// RunJob runs the named job once, outside its schedule
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	s.mu.Lock()
	var (
		job   Job
		found bool
	)
	for _, j := range s.jobs {
		if j.Name == name {
			job, found = j, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.executeJob(ctx, job)
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, name := range s.Jobs() {
		_ = s.RunJob(ctx, name)
	}
}
