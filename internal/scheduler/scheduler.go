package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/repository"
	"github.com/gtl92/gmail-svelkit/internal/service"
)

// jobTTL is how long terminal generation jobs stay pollable before a tick
// evicts them.
const jobTTL = 24 * time.Hour

// Scheduler drives the recurring automation sweep. One pass runs at a time:
// a tick that fires while the previous sweep is still going is skipped, not
// queued.
type Scheduler struct {
	automation service.AutomationService
	jobs       repository.JobRepository
	logger     *logger.Logger
	interval   time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	running sync.Mutex
}

func New(automation service.AutomationService, jobs repository.JobRepository, intervalSeconds int, logger *logger.Logger) *Scheduler {
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		automation: automation,
		jobs:       jobs,
		logger:     logger,
		interval:   time.Duration(intervalSeconds) * time.Second,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start blocks until Stop is called, running one tick per interval. Callers
// run it in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("Starting automation scheduler with interval:", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick(time.Now())
		case <-s.ctx.Done():
			s.logger.Info("Automation scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) Stop() {
	s.cancel()
}

// Tick runs one sweep plus housekeeping. Exported so the manual trigger
// endpoint and tests share the exact loop body.
func (s *Scheduler) Tick(now time.Time) []*service.SweepResult {
	if !s.running.TryLock() {
		s.logger.Warn("Skipping automation tick: previous sweep still running")
		return nil
	}
	defer s.running.Unlock()

	if evicted := s.jobs.EvictFinishedBefore(s.ctx, now.Add(-jobTTL)); evicted > 0 {
		s.logger.Info("Evicted", evicted, "expired generation jobs")
	}

	results, err := s.automation.RunSweep(s.ctx, now)
	if err != nil {
		s.logger.Error("Automation sweep failed:", err)
		return nil
	}

	ran := 0
	for _, r := range results {
		if r.Due && !r.Skipped {
			ran++
		}
	}
	if len(results) > 0 {
		s.logger.Infof("Automation sweep done: %d entries, %d ran", len(results), ran)
	}
	return results
}

func (s *Scheduler) GetInterval() time.Duration {
	return s.interval
}
