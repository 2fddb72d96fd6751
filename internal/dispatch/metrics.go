package dispatch

import "github.com/prometheus/client_golang/prometheus"

var (
	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classd",
			Subsystem: "dispatch",
			Name:      "classifications_total",
			Help:      "Classifier invocations by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "classd",
			Subsystem: "dispatch",
			Name:      "backend_duration_seconds",
			Help:      "Duration of per-model classification calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(classificationsTotal, backendDuration)
}

const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
)
