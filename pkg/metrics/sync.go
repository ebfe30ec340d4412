package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records outcomes of the outbound cart mirror queue.
type SyncMetrics struct {
	queueDepth   prometheus.Gauge
	pushDuration *prometheus.HistogramVec
	pushFailures *prometheus.CounterVec
	dropped      prometheus.Counter
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_sync_queue_depth",
		Help: "Pending events in the cart sync queue.",
	})
	pushDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_push_duration_seconds",
		Help:    "Duration of remote mirror pushes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	pushFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_push_failures_total",
		Help: "Mirror pushes that exhausted their retries.",
	}, []string{"kind"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_events_dropped_total",
		Help: "Events dropped because the sync queue was full.",
	})
	reg.MustRegister(queueDepth, pushDuration, pushFailures, dropped)
	return &SyncMetrics{
		queueDepth:   queueDepth,
		pushDuration: pushDuration,
		pushFailures: pushFailures,
		dropped:      dropped,
	}
}

// SetQueueDepth records the current queue backlog.
func (s *SyncMetrics) SetQueueDepth(depth int) {
	if s == nil || s.queueDepth == nil {
		return
	}
	s.queueDepth.Set(float64(depth))
}

// ObservePush records the duration of a push for the given event kind.
func (s *SyncMetrics) ObservePush(kind string, duration time.Duration) {
	if s == nil || s.pushDuration == nil {
		return
	}
	s.pushDuration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncFailure counts a push that exhausted its retries.
func (s *SyncMetrics) IncFailure(kind string) {
	if s == nil || s.pushFailures == nil {
		return
	}
	s.pushFailures.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDropped counts an event dropped on enqueue.
func (s *SyncMetrics) IncDropped() {
	if s == nil || s.dropped == nil {
		return
	}
	s.dropped.Inc()
}

func normalizeLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
