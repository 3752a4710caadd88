package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PromotionRuns counts promotion job runs by result (ok, error, skipped).
	PromotionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_promotion_runs_total",
		Help: "Total number of promotion job runs by result",
	}, []string{"result"})

	// Promotions counts users promoted to admin by the job.
	Promotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackit_promotions_total",
		Help: "Total number of users promoted to admin by the promotion job",
	})

	// PromotionDuration records how long a promotion run takes.
	PromotionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stackit_promotion_duration_seconds",
		Help:    "Promotion job run duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// TagBatchFailures counts tags skipped while attaching tags to a question.
	TagBatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackit_tag_batch_failures_total",
		Help: "Total number of tags skipped during question tag attachment",
	})

	// WebSocketBackpressureDrops counts notifications dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_websocket_backpressure_drops_total",
		Help: "Total number of notifications dropped due to websocket backpressure",
	}, []string{"reason"})
)
