package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Repayment metrics
	RepaymentsInitiated prometheus.Counter
	RepaymentErrors     *prometheus.CounterVec
	RepaymentAmount     prometheus.Histogram

	// Callback metrics
	CallbacksReceived  *prometheus.CounterVec
	CallbacksUnmatched prometheus.Counter
	CallbackDuration   prometheus.Histogram
	LoansPaid          prometheus.Counter

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	GatewayDuration prometheus.Histogram
	GatewayBreaker  prometheus.Gauge

	// Savings metrics
	DepositsCreated prometheus.Counter
	DepositAmount   prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh registry
// so that several Metrics can coexist in one process.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Repayment metrics
		RepaymentsInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "saccopay_repayments_initiated_total",
			Help: "Total number of STK push repayments initiated",
		}),
		RepaymentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_repayment_errors_total",
				Help: "Total number of repayment initiation errors by type",
			},
			[]string{"error_type"},
		),
		RepaymentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "saccopay_repayment_amount",
			Help:    "Requested repayment amounts",
			Buckets: []float64{10, 100, 500, 1000, 5000, 10000, 50000, 100000},
		}),

		// Callback metrics
		CallbacksReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_callbacks_total",
				Help: "Provider callbacks by outcome",
			},
			[]string{"outcome"},
		),
		CallbacksUnmatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "saccopay_callbacks_unmatched_total",
			Help: "Callbacks whose checkout request id matched no payment",
		}),
		CallbackDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "saccopay_callback_duration_seconds",
			Help:    "Duration of callback reconciliation",
			Buckets: prometheus.DefBuckets,
		}),
		LoansPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "saccopay_loans_paid_total",
			Help: "Total number of loans fully repaid",
		}),

		// Gateway metrics
		GatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_gateway_requests_total",
				Help: "Payment gateway requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		GatewayDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "saccopay_gateway_duration_seconds",
			Help:    "Payment gateway request duration",
			Buckets: prometheus.DefBuckets,
		}),
		GatewayBreaker: factory.NewGauge(prometheus.GaugeOpts{
			Name: "saccopay_gateway_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}),

		// Savings metrics
		DepositsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "saccopay_deposits_total",
			Help: "Total number of savings deposits",
		}),
		DepositAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "saccopay_deposit_amount",
			Help:    "Deposit amounts",
			Buckets: []float64{10, 100, 500, 1000, 5000, 10000, 50000, 100000},
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "saccopay_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saccopay_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
	}
}
