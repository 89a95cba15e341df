package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/handler"
	"github.com/iho/saccopay/internal/adapter/http/middleware"
	"github.com/iho/saccopay/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler      *handler.AuthHandler
	LoanHandler      *handler.LoanHandler
	RepaymentHandler *handler.RepaymentHandler
	CallbackHandler  *handler.CallbackHandler
	PaymentHandler   *handler.PaymentHandler
	SavingsHandler   *handler.SavingsHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler

	JWTManager  *auth.JWTManager
	Idempotency *middleware.IdempotencyMiddleware
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.MetricsMiddleware
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Provider callbacks carry no member token.
		r.Post("/mpesa/callback", cfg.CallbackHandler.Handle)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			if cfg.Idempotency != nil {
				r.Use(cfg.Idempotency.Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", cfg.LoanHandler.List)
				r.Post("/", cfg.LoanHandler.Apply)
				r.Post("/apply", cfg.LoanHandler.Apply)
				r.Get("/{id}", cfg.LoanHandler.Get)
				r.Post("/{id}/repay/initiate", cfg.RepaymentHandler.Initiate)
			})

			r.Get("/payments/{checkoutRequestID}/status", cfg.PaymentHandler.Status)

			r.Post("/deposit", cfg.SavingsHandler.Deposit)
			r.Get("/savings", cfg.SavingsHandler.Balance)
			r.Get("/transactions", cfg.SavingsHandler.Transactions)

			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}
