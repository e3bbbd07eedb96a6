// Package metrics exposes the Prometheus collectors shared by the cashflow binaries.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once

	// registry holds only the cashflow collectors; the Go and process collectors
	// of the default registry are not exported.
	registry = prometheus.NewRegistry()
)

// Metrics holds the process-wide collectors.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    prometheus.Counter

	// Domain
	TransactionsCreatedTotal  *prometheus.CounterVec
	OccurrencesMaterialized   *prometheus.CounterVec
	InstallmentsCreatedTotal  prometheus.Counter
	ProjectionsComputedTotal  *prometheus.CounterVec
	RecurringRunsTotal        *prometheus.CounterVec
	SyncMessagesTotal         *prometheus.CounterVec
	DashboardCacheHitsTotal   prometheus.Counter
	DashboardCacheMissesTotal prometheus.Counter
}

// Default returns the registered collectors, creating them on first use.
//
// Metrics are prefixed with "cashflow_":
//   - cashflow_http_requests_total{method,route,status}
//   - cashflow_http_request_duration_seconds{method,route}
//   - cashflow_transactions_created_total{kind,source}
//   - cashflow_occurrences_materialized_total{pattern}
//   - cashflow_installments_created_total
//   - cashflow_projections_computed_total{horizon}
//   - cashflow_recurring_runs_total{result}
//   - cashflow_sync_messages_total{result}
func Default() *Metrics {
	metricsOnce.Do(func() {
		f := promauto.With(registry)
		globalMetrics = &Metrics{
			HTTPRequestsTotal: f.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashflow_http_requests_total",
					Help: "Total number of HTTP requests served",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: f.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cashflow_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
			RateLimitedTotal: f.NewCounter(
				prometheus.CounterOpts{
					Name: "cashflow_rate_limited_total",
					Help: "Requests rejected by the rate limiter",
				},
			),
			TransactionsCreatedTotal: f.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashflow_transactions_created_total",
					Help: "Transactions persisted, by kind and origin",
				},
				[]string{"kind", "source"}, // source: manual, recurring, installment
			),
			OccurrencesMaterialized: f.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashflow_occurrences_materialized_total",
					Help: "Recurring occurrences written to storage",
				},
				[]string{"pattern"},
			),
			InstallmentsCreatedTotal: f.NewCounter(
				prometheus.CounterOpts{
					Name: "cashflow_installments_created_total",
					Help: "Card installments written to storage",
				},
			),
			ProjectionsComputedTotal: f.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashflow_projections_computed_total",
					Help: "Projections computed",
				},
				[]string{"horizon"}, // month, year
			),
			RecurringRunsTotal: f.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashflow_recurring_runs_total",
					Help: "Scheduled recurring materialization runs",
				},
				[]string{"result"},
			),
			SyncMessagesTotal: f.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashflow_sync_messages_total",
					Help: "Sync messages handled by the worker",
				},
				[]string{"result"},
			),
			DashboardCacheHitsTotal: f.NewCounter(
				prometheus.CounterOpts{
					Name: "cashflow_dashboard_cache_hits_total",
					Help: "Dashboard cache hits",
				},
			),
			DashboardCacheMissesTotal: f.NewCounter(
				prometheus.CounterOpts{
					Name: "cashflow_dashboard_cache_misses_total",
					Help: "Dashboard cache misses",
				},
			),
		}
	})
	return globalMetrics
}

// Handler serves the cashflow registry.
func Handler() http.Handler {
	Default()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
