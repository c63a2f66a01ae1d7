package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ClearancesIssued   *prometheus.CounterVec
	ClearancesDeleted  prometheus.Counter
	ValidationFailures prometheus.Counter
	AssemblyDuration   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		ClearancesIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscalia_clearances_issued_total",
			Help: "Total number of clearance certificates issued, by format",
		}, []string{"format"}),
		ClearancesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fiscalia_clearances_deleted_total",
			Help: "Total number of clearance records deleted",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fiscalia_clearance_validation_failures_total",
			Help: "Total number of submissions rejected by validation",
		}),
		AssemblyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fiscalia_clearance_assembly_duration_seconds",
			Help:    "Duration of certificate document assembly",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

func (m *Metrics) IncrementIssued(formatCode string) {
	m.ClearancesIssued.WithLabelValues(formatCode).Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.ClearancesDeleted.Inc()
}

func (m *Metrics) IncrementValidationFailure() {
	m.ValidationFailures.Inc()
}

func (m *Metrics) ObserveAssembly(start time.Time) {
	m.AssemblyDuration.Observe(time.Since(start).Seconds())
}
