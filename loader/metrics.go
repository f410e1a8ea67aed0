package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of sample generation.
type Metrics struct {
	samples        *prometheus.CounterVec
	sampleDuration prometheus.Histogram
	batches        prometheus.Counter
}

// NewMetrics registers loader metrics to reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		samples: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "loader",
				Name:      "samples_total",
				Help:      "Total number of generated samples",
			},
			[]string{"result"},
		),
		sampleDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "loader",
				Name:      "sample_duration_seconds",
				Help:      "Time to generate a sample in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		batches: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "loader",
				Name:      "batches_total",
				Help:      "Total number of delivered batches",
			},
		),
	}
}

func (m *Metrics) observeSample(seconds float64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.samples.WithLabelValues(result).Inc()
	m.sampleDuration.Observe(seconds)
}

func (m *Metrics) observeBatch() {
	if m == nil {
		return
	}
	m.batches.Inc()
}
