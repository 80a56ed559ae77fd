package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/osmarks/autobotrobot/metrics"
)

func TestNew(t *testing.T) {
	m := metrics.New("test")
	reg := prometheus.NewRegistry()
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			t.Fatalf("couldn't register: %v", err)
		}
	}
	m.CommandCount.Observe(1, "ping")
	m.CommandCount.Observe(1, "ping")
	m.DeletedCount.Observe(1)
	if n := testutil.ToFloat64(m.DeletedCount); n != 1 {
		t.Errorf("wrong deleted count: want 1, got %v", n)
	}
	if n := testutil.CollectAndCount(m.CommandCount); n != 1 {
		t.Errorf("wrong number of command series: want 1, got %d", n)
	}
	metrics.Observe(nil, 1, "ping")
}
