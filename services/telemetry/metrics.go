package telemetry

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhazelina/qr-absence-sub000/core/checkin"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

const namespace = "absence"

type Metrics struct {
	registry *prometheus.Registry

	checkinOutcomes *prometheus.CounterVec
	checkinDropped  *prometheus.CounterVec
	leaveRequests   *prometheus.CounterVec
	sessionsPurged  prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checkinOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkin_outcomes_total",
			Help:      "Check-in submissions by outcome.",
		}, []string{"outcome"}),
		checkinDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkin_dropped_total",
			Help:      "Scans dropped by the gate while a check-in was pending, or by the paused source.",
		}, []string{"stage"}),
		leaveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leave_requests_total",
			Help:      "Leave submissions by kind and whether they were applied.",
		}, []string{"kind", "applied"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_purged_total",
			Help:      "Stale teaching sessions dropped from the registry.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checkinOutcomes,
		m.checkinDropped,
		m.leaveRequests,
		m.sessionsPurged,
	)
	return m
}

func (m *Metrics) ObserveOutcome(out checkin.Outcome) {
	m.checkinOutcomes.WithLabelValues(out.String()).Inc()
}

// Drop stages.
const (
	StageGate   = "gate"
	StageSource = "source"
)

func (m *Metrics) ObserveDropped(stage string, n int) {
	m.checkinDropped.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) ObserveLeave(res leave.Result) {
	kind := res.Request.Kind
	if !res.Applied {
		kind = res.Summary.Kind
	}
	m.leaveRequests.WithLabelValues(string(kind), strconv.FormatBool(res.Applied)).Inc()
}

func (m *Metrics) ObservePurge(n int) {
	m.sessionsPurged.Add(float64(n))
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
