package workflow

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the workflow engine.
// All metrics use the resourcebot_workflow_ namespace.
type Metrics struct {
	SubmissionsTotal     prometheus.Counter
	DecisionsTotal       *prometheus.CounterVec
	DeleteRequestsTotal  prometheus.Counter
	DeleteDecisionsTotal *prometheus.CounterVec
	LookupsTotal         *prometheus.CounterVec
	PendingQueue         prometheus.Gauge
}

// NewMetrics creates and registers engine metrics on the given registry.
// Returns nil if reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resourcebot",
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Total resource submissions entered into the pending queue.",
		}),

		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcebot",
			Subsystem: "workflow",
			Name:      "decisions_total",
			Help:      "Total admin decisions on pending submissions by outcome.",
		}, []string{"outcome"}),

		DeleteRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resourcebot",
			Subsystem: "workflow",
			Name:      "delete_requests_total",
			Help:      "Total delete requests forwarded to the admin.",
		}),

		DeleteDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcebot",
			Subsystem: "workflow",
			Name:      "delete_decisions_total",
			Help:      "Total admin decisions on delete requests by outcome.",
		}, []string{"outcome"}),

		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcebot",
			Subsystem: "workflow",
			Name:      "lookups_total",
			Help:      "Total course-code lookups by result (hit, miss).",
		}, []string{"result"}),

		PendingQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resourcebot",
			Subsystem: "workflow",
			Name:      "pending_queue",
			Help:      "Number of submissions currently awaiting an admin decision.",
		}),
	}

	reg.MustRegister(
		m.SubmissionsTotal,
		m.DecisionsTotal,
		m.DeleteRequestsTotal,
		m.DeleteDecisionsTotal,
		m.LookupsTotal,
		m.PendingQueue,
	)
	return m
}
