// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agencydesk/internal/core"
)

const namespace = "agencydesk"

type Metrics struct {
	registry *prometheus.Registry

	mutations    *prometheus.CounterVec
	assistCalls  *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	paidRevenue  prometheus.Gauge
}

// New registers the collectors, plus Go runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Committed workspace mutations.",
		}, []string{"entity", "action"}),
		assistCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assist_calls_total",
			Help:      "Generative assist calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		paidRevenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paid_revenue",
			Help:      "Sum of totals of invoices in Paid status at the last dashboard computation.",
		}),
	}
	m.registry.MustRegister(
		m.mutations,
		m.assistCalls,
		m.httpDuration,
		m.paidRevenue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Mutation(entity, action string) {
	m.mutations.WithLabelValues(entity, action).Inc()
}

func (m *Metrics) AssistCall(op, outcome string) {
	m.assistCalls.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Summary(s core.DashboardSummary) {
	m.paidRevenue.Set(s.PaidRevenue.InexactFloat64())
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}
