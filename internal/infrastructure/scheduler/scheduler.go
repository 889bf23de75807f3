// Package scheduler runs periodic background jobs such as the overdue sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns the job name
func (f JobFunc) Name() string { return f.JobName }

// Run calls the wrapped function
func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// JobStats is a snapshot of a job's run history
type JobStats struct {
	Runs        int64
	Failures    int64
	Skipped     int64
	LastRun     time.Time
	LastError   string
	LastElapsed time.Duration
}

type entry struct {
	job        Job
	interval   time.Duration
	runOnStart bool
	running    atomic.Bool

	mu    sync.Mutex
	stats JobStats
}

// Scheduler runs registered jobs on fixed intervals. A job never overlaps
// with itself: a tick that arrives while the previous run is still going is
// skipped.
type Scheduler struct {
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries []*entry
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRunTimeout bounds each job run
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a Scheduler
func New(logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{logger: logger.Named("scheduler")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every registers job to run each interval. With runOnStart the first run
// happens as soon as the scheduler starts.
func (s *Scheduler) Every(interval time.Duration, job Job, runOnStart bool) error {
	if interval <= 0 || job == nil {
		return fmt.Errorf("%w: job needs a positive interval", ErrInvalidConfig)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.entries = append(s.entries, &entry{job: job, interval: interval, runOnStart: runOnStart})
	return nil
}

// Start launches one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
		s.logger.Info("job scheduled",
			zap.String("job", e.job.Name()),
			zap.Duration("interval", e.interval),
		)
	}
	return nil
}

// Stop cancels the loops and waits for in-flight runs, or for ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the named job's history
func (s *Scheduler) Stats(name string) (JobStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.job.Name() == name {
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.stats, true
		}
	}
	return JobStats{}, false
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	if e.runOnStart {
		s.dispatch(ctx, e)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatch(ctx, e)
		}
	}
}

// dispatch starts a run in its own goroutine unless the previous one is
// still going. The loop holds a wg slot, so Add never races Stop's Wait.
func (s *Scheduler) dispatch(ctx context.Context, e *entry) {
	if !e.running.CompareAndSwap(false, true) {
		e.mu.Lock()
		e.stats.Skipped++
		e.mu.Unlock()
		s.logger.Warn("job still running, tick skipped", zap.String("job", e.job.Name()))
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer e.running.Store(false)
		s.run(ctx, e)
	}()
}

func (s *Scheduler) run(ctx context.Context, e *entry) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.safeRun(ctx, e.job)
	elapsed := time.Since(start)

	e.mu.Lock()
	e.stats.Runs++
	e.stats.LastRun = start
	e.stats.LastElapsed = elapsed
	e.stats.LastError = ""
	if err != nil {
		e.stats.Failures++
		e.stats.LastError = err.Error()
	}
	e.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed",
			zap.String("job", e.job.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("job completed", zap.String("job", e.job.Name()), zap.Duration("elapsed", elapsed))
}

func (s *Scheduler) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}
