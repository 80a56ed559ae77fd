package metrics

import "github.com/prometheus/client_golang/prometheus"

// Observer records a value with labels.
type Observer interface {
	Observe(val float64, labels ...string)

	// Tightly coupled to the prometheus collector type.
	prometheus.Collector
}

// Metrics is the set of bot metrics.
type Metrics struct {
	// CommandCount counts invocations by command name.
	CommandCount Observer
	// CommandErrors counts invocations which failed unexpectedly, by command
	// name.
	CommandErrors Observer
	// CommandLatency is the time taken by invocations by command name.
	CommandLatency Observer
	// DeletedCount counts items appended to the deletion log.
	DeletedCount Observer
	// ExecLatency is the time taken by code execution requests.
	ExecLatency Observer
}

// Collectors returns the collectors for registration.
func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommandCount,
		m.CommandErrors,
		m.CommandLatency,
		m.DeletedCount,
		m.ExecLatency,
	}
}

// Observe records a value on o if it is not nil.
func Observe(o Observer, val float64, labels ...string) {
	if o != nil {
		o.Observe(val, labels...)
	}
}
