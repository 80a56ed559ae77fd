package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// New creates the bot metrics as prometheus collectors in a namespace.
func New(namespace string) Metrics {
	return Metrics{
		CommandCount: NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_count",
			Help:      "Number of command invocations.",
		}, []string{"command"})),
		CommandErrors: NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors",
			Help:      "Number of command invocations which failed unexpectedly.",
		}, []string{"command"})),
		CommandLatency: NewPromObserverVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_latency_seconds",
			Help:      "Time taken by command invocations.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"command"})),
		DeletedCount: NewPromCounter(prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deleted_count",
			Help:      "Number of things deleted.",
		})),
		ExecLatency: NewPromHistogram(prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exec_latency_seconds",
			Help:      "Time taken by code execution requests.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		})),
	}
}

func NewPromCounter(m prometheus.Counter) Observer {
	return &PrometheusMetric{
		observe: func(val float64, labels ...string) {
			m.Add(val)
		},
		Collector: m,
	}
}

func NewPromCounterVec(m *prometheus.CounterVec) Observer {
	return &PrometheusMetric{
		observe: func(val float64, labels ...string) {
			m.WithLabelValues(labels...).Add(val)
		},
		Collector: m,
	}
}

// for histogram or summary vecs
func NewPromObserverVec(m prometheus.ObserverVec) Observer {
	return &PrometheusMetric{
		observe: func(val float64, labels ...string) {
			m.WithLabelValues(labels...).Observe(val)
		},
		Collector: m,
	}
}

func NewPromHistogram(m prometheus.Histogram) Observer {
	return &PrometheusMetric{
		observe: func(val float64, labels ...string) {
			m.Observe(val)
		},
		Collector: m,
	}
}

type PrometheusMetric struct {
	observe func(val float64, labels ...string)
	prometheus.Collector
}

func (m *PrometheusMetric) Observe(val float64, labels ...string) {
	m.observe(val, labels...)
}
