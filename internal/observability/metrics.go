package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the validation workflow. Registered on the default registry and
// exposed on /metrics.
var (
	SessionsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_work_logs_claimed_total",
		Help: "Work logs claimed by reviewers.",
	})

	ValidationsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_work_logs_completed_total",
		Help: "Work logs completed.",
	})

	ValidationsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_work_logs_abandoned_total",
		Help: "Work logs abandoned back to the queue.",
	})

	Heartbeats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_heartbeats_total",
		Help: "Lease heartbeats received.",
	})

	SessionResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_session_resets_total",
		Help: "Work logs reset to their initial baseline.",
	})

	RecognitionsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recognitions_ingested_total",
		Help: "Recognition batches ingested.",
	})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recognition_ingest_duration_seconds",
		Help:    "Wall time of one recognition ingest, images included.",
		Buckets: prometheus.DefBuckets,
	})
)
