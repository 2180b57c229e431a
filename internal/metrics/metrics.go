package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_total",
		Help: "Settlement operations by entry point and outcome code",
	}, []string{"operation", "code"})

	SettlementRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_tx_retries_total",
		Help: "Settlement transactions retried after lock/serialization conflicts",
	})

	SettlementAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_amount_total",
		Help: "Money collected, split by allocation bucket",
	}, []string{"bucket"}) // order | debt

	CreditAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "credit_alerts_total",
		Help: "Advisory credit-limit alerts raised after settlements",
	})
)
