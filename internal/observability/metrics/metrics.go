package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the booking flow.
type SchedulingMetrics struct {
	admissionsTotal  *prometheus.CounterVec
	admissionLatency prometheus.Histogram
	slotQueriesTotal prometheus.Counter
	lifecycleTotal   *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		admissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spa",
			Subsystem: "bookings",
			Name:      "admissions_total",
			Help:      "Total admission attempts by outcome",
		}, []string{"outcome"}),
		admissionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spa",
			Subsystem: "bookings",
			Name:      "admission_latency_seconds",
			Help:      "Latency of the admit transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		slotQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spa",
			Subsystem: "bookings",
			Name:      "slot_queries_total",
			Help:      "Total availability listings served",
		}),
		lifecycleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spa",
			Subsystem: "bookings",
			Name:      "lifecycle_transitions_total",
			Help:      "Total lifecycle transitions by target status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.admissionsTotal, m.admissionLatency, m.slotQueriesTotal, m.lifecycleTotal)
	return m
}

func (m *SchedulingMetrics) ObserveAdmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.admissionsTotal.WithLabelValues(outcome).Inc()
	m.admissionLatency.Observe(seconds)
}

func (m *SchedulingMetrics) ObserveSlotQuery() {
	if m == nil {
		return
	}
	m.slotQueriesTotal.Inc()
}

func (m *SchedulingMetrics) ObserveLifecycle(status string) {
	if m == nil {
		return
	}
	m.lifecycleTotal.WithLabelValues(status).Inc()
}
