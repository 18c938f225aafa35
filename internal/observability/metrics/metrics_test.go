package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSchedulingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulingMetrics(reg)
	m.ObserveAdmission("confirmed", 0.02)
	m.ObserveAdmission("conflict", 0.01)
	m.ObserveSlotQuery()
	m.ObserveLifecycle("cancelled")
}

func TestSchedulingMetricsNilSafe(t *testing.T) {
	var m *SchedulingMetrics
	m.ObserveAdmission("confirmed", 0.1)
	m.ObserveSlotQuery()
	m.ObserveLifecycle("completed")
}
