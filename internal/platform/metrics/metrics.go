// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txn_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "txn_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "route"})

	// TransactionsTotal counts write operations by outcome ("success" or an error kind).
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txn_transactions_total",
		Help: "Transaction write operations by outcome",
	}, []string{"operation", "type", "outcome"})

	TokenConsumptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txn_token_consumptions_total",
		Help: "Idempotency token consumption attempts",
	}, []string{"result"})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txn_cache_lookups_total",
		Help: "Query cache lookups",
	}, []string{"cache", "result"})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txn_cache_invalidations_total",
		Help: "Full query cache invalidations",
	})
)
