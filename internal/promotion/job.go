// Package promotion promotes prolific answerers to admin on a schedule.
package promotion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"stackit/internal/observability"
	"stackit/internal/service"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultThreshold is the number of accepted answers that earns admin.
const DefaultThreshold = 10

// ErrAlreadyRunning is returned when a run is requested while another one
// in this process has not finished.
var ErrAlreadyRunning = errors.New("promotion job already running")

// Store is the persistence the job needs.
type Store interface {
	FindPromotionCandidates(ctx context.Context, threshold int) ([]uint, error)
	PromoteToAdmin(ctx context.Context, id uint) (bool, error)
}

type Job struct {
	store     Store
	threshold int
	events    service.EventPublisher
	running   sync.Mutex
}

func NewJob(store Store, threshold int, events service.EventPublisher) *Job {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Job{store: store, threshold: threshold, events: events}
}

func (j *Job) Threshold() int {
	return j.threshold
}

// RunOnce promotes every eligible user and returns the ids that changed role.
// Users promoted by a concurrent run are skipped, so repeated runs converge.
func (j *Job) RunOnce(ctx context.Context) (promoted []uint, err error) {
	if !j.running.TryLock() {
		observability.PromotionRuns.WithLabelValues("skipped").Inc()
		return nil, ErrAlreadyRunning
	}
	defer j.running.Unlock()

	ctx, end := observability.StartSpan(ctx, "promotion.run",
		attribute.Int("promotion.threshold", j.threshold))
	start := time.Now()
	defer func() {
		observability.PromotionDuration.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		observability.PromotionRuns.WithLabelValues(result).Inc()
		end(err)
	}()

	candidates, err := j.store.FindPromotionCandidates(ctx, j.threshold)
	if err != nil {
		return nil, err
	}

	promoted = make([]uint, 0, len(candidates))
	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			return promoted, err
		}
		ok, err := j.store.PromoteToAdmin(ctx, id)
		if err != nil {
			return promoted, err
		}
		if !ok {
			continue
		}
		promoted = append(promoted, id)
		observability.Promotions.Inc()
		slog.InfoContext(ctx, "user promoted to admin", slog.Uint64("user_id", uint64(id)))
		j.notify(ctx, id)
	}

	slog.InfoContext(ctx, "promotion run finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("promoted", len(promoted)),
	)
	return promoted, nil
}

func (j *Job) notify(ctx context.Context, userID uint) {
	if j.events == nil {
		return
	}
	payload := map[string]any{"role": "admin", "threshold": j.threshold}
	if err := j.events.PublishEvent(ctx, userID, service.EventUserPromoted, payload); err != nil {
		slog.WarnContext(ctx, "failed to publish promotion event",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}
