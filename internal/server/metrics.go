package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Generation results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the generation metrics exported on /metrics.
type Metrics struct {
	generations *prometheus.CounterVec
	rows        prometheus.Gauge
	failures    prometheus.Gauge
	duration    prometheus.Histogram
}

// NewMetrics creates the generation metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "versionboard_generations_total",
			Help: "Report generations by result.",
		}, []string{"result"}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "versionboard_report_rows",
			Help: "Rows in the latest successful report.",
		}),
		failures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "versionboard_report_skipped_services",
			Help: "Services left out of the latest successful report.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "versionboard_generation_duration_seconds",
			Help:    "Time taken by report generations.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
	}
	// pre-create both series so they are exported from the start
	m.generations.WithLabelValues(ResultSuccess)
	m.generations.WithLabelValues(ResultFailure)

	reg.MustRegister(m.generations, m.rows, m.failures, m.duration)
	return m
}

// ObserveSuccess records a successful generation.
func (m *Metrics) ObserveSuccess(elapsed time.Duration, rows, skipped int) {
	m.generations.WithLabelValues(ResultSuccess).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.rows.Set(float64(rows))
	m.failures.Set(float64(skipped))
}

// ObserveFailure records a failed generation.
func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	m.generations.WithLabelValues(ResultFailure).Inc()
	m.duration.Observe(elapsed.Seconds())
}
