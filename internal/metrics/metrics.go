package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one service instance.
type Metrics struct {
	registry *prometheus.Registry

	loanCreate          *prometheus.CounterVec
	remoteCalls         *prometheus.CounterVec
	unsettledDecrements prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loanCreate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_create_total",
			Help: "Loan creation attempts by outcome.",
		}, []string{"outcome"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_remote_calls_total",
			Help: "Outbound calls to the user and book services.",
		}, []string{"service", "operation", "result"}),
		unsettledDecrements: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loan_unsettled_decrements",
			Help: "Stock decrements without a committed loan at the last reconciliation.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loanCreate,
		m.remoteCalls,
		m.unsettledDecrements,
	)
	return m
}

// Nil receivers are no-ops so callers may run without metrics.

func (m *Metrics) ObserveCreate(outcome string) {
	if m == nil {
		return
	}
	m.loanCreate.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRemoteCall(service, operation, result string) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(service, operation, result).Inc()
}

func (m *Metrics) SetUnsettledDecrements(n int) {
	if m == nil {
		return
	}
	m.unsettledDecrements.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
