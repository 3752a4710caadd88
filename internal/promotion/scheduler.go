package promotion

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"stackit/internal/cache"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the job once a day at midnight.
const DefaultSchedule = "@daily"

// lockTTL bounds how long one replica owns a tick.
const lockTTL = 10 * time.Minute

// Scheduler runs a Job on a cron schedule until stopped.
type Scheduler struct {
	job  *Job
	spec string

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	owner   string
}

func NewScheduler(job *Job, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	owner, _ := os.Hostname()
	return &Scheduler{job: job, spec: spec, owner: owner}
}

// Start registers the job and starts the cron loop. Calling Start twice is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	c := cron.New()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := c.AddFunc(s.spec, s.tick); err != nil {
		s.cancel()
		return err
	}
	c.Start()
	s.cron = c
	s.started = true
	slog.Info("promotion scheduler started",
		slog.String("schedule", s.spec),
		slog.Int("threshold", s.job.Threshold()),
	)
	return nil
}

// Stop cancels any in-flight run and waits for it to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.cancel()
	done := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-done.Done():
		slog.Info("promotion scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tick() {
	ctx := s.ctx
	if !s.acquireLock(ctx) {
		slog.InfoContext(ctx, "promotion tick owned by another instance")
		return
	}
	if _, err := s.job.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "promotion run failed", slog.String("error", err.Error()))
	}
}

// acquireLock claims the current tick across replicas. Without Redis every
// instance runs; the job itself is idempotent.
func (s *Scheduler) acquireLock(ctx context.Context) bool {
	rdb := cache.GetClient()
	if rdb == nil {
		return true
	}
	ok, err := rdb.SetNX(ctx, cache.PromotionLockKey, s.owner, lockTTL).Result()
	if err != nil {
		slog.WarnContext(ctx, "promotion lock unavailable, running anyway", slog.String("error", err.Error()))
		return true
	}
	return ok
}
