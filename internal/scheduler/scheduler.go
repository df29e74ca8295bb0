// Package scheduler runs periodic maintenance jobs in the background of the
// API server.
package scheduler

import (
	"context"
	"sync"
	"time"

	applog "github.com/monocle-dev/expense-tracker/internal/log"
)

// Job is one unit of periodic work. Run reports how many rows it touched.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (int64, error)
}

type jobState struct {
	job     Job
	ticker  *time.Ticker
	cancel  context.CancelFunc
	lastRun time.Time
	lastErr error
}

type Scheduler struct {
	jobs   map[string]*jobState // job name -> state
	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    *applog.Logger
}

// Status is a snapshot of one job.
type Status struct {
	Name      string
	Interval  time.Duration
	LastRun   time.Time
	LastError error
}

func NewScheduler(log *applog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*jobState),
		ctx:    ctx,
		cancel: cancel,
		log:    log.WithComponent(applog.ComponentScheduler),
	}
}

// Add starts a job, replacing a running job with the same name. The job runs
// once immediately and then every Interval. Jobs with a non-positive interval
// are ignored.
func (s *Scheduler) Add(job Job) {
	if job.Interval <= 0 {
		s.log.Info("Job disabled", applog.FieldJob, job.Name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	if existing, ok := s.jobs[job.Name]; ok {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)
	state := &jobState{
		job:    job,
		ticker: time.NewTicker(job.Interval),
		cancel: jobCancel,
	}
	s.jobs[job.Name] = state

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(jobCtx, state)
		s.runJob(jobCtx, state)
	}()

	s.log.Info("Job scheduled", applog.FieldJob, job.Name, "interval", job.Interval.String())
}

// Remove stops a job.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.jobs[name]; ok {
		state.ticker.Stop()
		state.cancel()
		delete(s.jobs, name)
	}
}

// Stop cancels every job and waits for runs in progress to return.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	for name, state := range s.jobs {
		state.ticker.Stop()
		state.cancel()
		delete(s.jobs, name)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("Scheduler stopped", applog.FieldOperation, applog.OpShutdown)
}

// Status returns a snapshot of every scheduled job.
func (s *Scheduler) Status() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]Status, 0, len(s.jobs))
	for _, state := range s.jobs {
		statuses = append(statuses, Status{
			Name:      state.job.Name,
			Interval:  state.job.Interval,
			LastRun:   state.lastRun,
			LastError: state.lastErr,
		})
	}
	return statuses
}

func (s *Scheduler) runJob(ctx context.Context, state *jobState) {
	defer state.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-state.ticker.C:
			s.execute(ctx, state)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, state *jobState) {
	start := time.Now()
	affected, err := state.job.Run(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	state.lastRun = start
	state.lastErr = err
	s.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.ErrorContext(ctx, "Job failed",
			applog.FieldJob, state.job.Name,
			applog.FieldDuration, elapsed.Milliseconds(),
			applog.FieldError, err)
		return
	}

	s.log.DebugContext(ctx, "Job finished",
		applog.FieldJob, state.job.Name,
		applog.FieldDuration, elapsed.Milliseconds(),
		"affected", affected)
}
