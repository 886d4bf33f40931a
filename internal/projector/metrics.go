package projector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes, used as the "result" label.
const (
	resultPublished = "published"
	resultStale     = "stale"
	resultNotFound  = "not_found"
	resultError     = "error"
	resultCancelled = "cancelled"
)

// Event outcomes.
const (
	eventAdded     = "added"
	eventDuplicate = "duplicate"
	eventIgnored   = "ignored"
	eventInvalid   = "invalid"
)

type metrics struct {
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	decodeErrors    *prometheus.CounterVec
	events          *prometheus.CounterVec
	resubscribes    prometheus.Counter
	historySize     *prometheus.GaugeVec
}

// newMetrics registers the projector's collectors on reg. A nil reg yields
// working but unregistered collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiddenhand",
			Subsystem: "projector",
			Name:      "refreshes_total",
			Help:      "Table refreshes by outcome",
		}, []string{"result"}),
		refreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hiddenhand",
			Subsystem: "projector",
			Name:      "refresh_duration_seconds",
			Help:      "Time to fetch and decode one table view",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		decodeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiddenhand",
			Subsystem: "projector",
			Name:      "decode_errors_total",
			Help:      "Records that failed to decode, by kind",
		}, []string{"kind"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiddenhand",
			Subsystem: "projector",
			Name:      "events_total",
			Help:      "Program events received, by outcome",
		}, []string{"result"}),
		resubscribes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hiddenhand",
			Subsystem: "projector",
			Name:      "resubscribes_total",
			Help:      "Times the event stream was re-established",
		}),
		historySize: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hiddenhand",
			Subsystem: "projector",
			Name:      "history_size",
			Help:      "Completed hands retained per table",
		}, []string{"table"}),
	}
}
