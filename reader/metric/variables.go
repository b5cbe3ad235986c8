package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "behavior_requests_total",
		Help: "The total number of behaviour requests by operation and status",
	}, []string{"operation", "status"})
	SpansProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "behavior_spans_processed_total",
		Help: "The total number of spans run through the behaviour engine",
	})
	TimelineEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "behavior_timeline_events_total",
		Help: "The total number of timeline events emitted",
	})
	SourceFetchTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "behavior_source_fetch_seconds",
		Help:    "Span source fetch time in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"source"})
)
