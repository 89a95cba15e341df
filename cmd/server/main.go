package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/gateway/mpesa"
	httpAdapter "github.com/iho/saccopay/internal/adapter/http"
	"github.com/iho/saccopay/internal/adapter/http/handler"
	"github.com/iho/saccopay/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/saccopay/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/saccopay/internal/adapter/repository/redis"
	"github.com/iho/saccopay/internal/infrastructure/auth"
	"github.com/iho/saccopay/internal/infrastructure/config"
	"github.com/iho/saccopay/internal/infrastructure/eventpublisher"
	"github.com/iho/saccopay/internal/infrastructure/logger"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
	"github.com/iho/saccopay/internal/infrastructure/postgres"
	"github.com/iho/saccopay/internal/infrastructure/redis"
	"github.com/iho/saccopay/internal/usecase"
)

const (
	rateLimiterIdle = 10 * time.Minute
	streamMaxLen    = 100000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	} else {
		log.Info().Msg("migrations disabled")
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	savingsRepo := postgresRepo.NewSavingsRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	cache := redisRepo.NewCache(redisClient, m)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient, m)

	gateway := newGateway(cfg, m, log)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Use cases
	userUC := usecase.NewUserUseCase(txManager, userRepo, savingsRepo, auth.NewBcryptHasher(cfg.BcryptCost), idGen)
	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, outboxRepo, idGen)
	savingsUC := usecase.NewSavingsUseCase(txManager, savingsRepo, txnRepo, outboxRepo, idGen, m).WithRetrier(retrier)
	transactionUC := usecase.NewTransactionUseCase(txnRepo)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, cache, cfg.StatusCacheTTL, log)
	repaymentUC := usecase.NewRepaymentUseCase(txManager, loanRepo, paymentRepo, outboxRepo, gateway, idGen, log, m)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, paymentRepo, loanRepo, txnRepo, outboxRepo, idGen, log, m)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      handler.NewAuthHandler(userUC, jwtManager, m, log),
		LoanHandler:      handler.NewLoanHandler(loanUC, log),
		RepaymentHandler: handler.NewRepaymentHandler(repaymentUC, log),
		CallbackHandler:  handler.NewCallbackHandler(reconciliationUC, mpesa.ParseCallback, log),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC, log),
		SavingsHandler:   handler.NewSavingsHandler(savingsUC, transactionUC, log),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, log),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		JWTManager:       jwtManager,
		Idempotency:      middleware.NewIdempotencyMiddleware(idempotencyStore, cfg.IdempotencyTTL, log),
		RateLimiter:      rateLimiter,
		Metrics:          middleware.NewMetricsMiddleware(m),
		MetricsHandler:   promhttp.Handler(),
		Logger:           log,
	})

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  newEventSink(cfg, redisClient, log),
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go sweepLimiters(ctx, rateLimiter)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// newGateway returns the provider client behind a circuit breaker, or a
// gateway that refuses pushes when credentials are missing.
func newGateway(cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) usecase.PaymentGateway {
	if !cfg.MpesaConfigured() {
		log.Warn().Msg("mpesa credentials not configured, repayments are disabled")
		return mpesa.DisabledGateway{}
	}

	client, err := mpesa.NewClient(mpesa.Config{
		Env:             cfg.MpesaEnv,
		ConsumerKey:     cfg.MpesaConsumerKey,
		ConsumerSecret:  cfg.MpesaConsumerSecret,
		ShortCode:       cfg.MpesaShortCode,
		Passkey:         cfg.MpesaPasskey,
		CallbackBaseURL: cfg.MpesaCallbackBaseURL,
		HTTPTimeout:     cfg.MpesaHTTPTimeout,
	}, m, log)
	if err != nil {
		log.Warn().Err(err).Msg("mpesa client unavailable, repayments are disabled")
		return mpesa.DisabledGateway{}
	}

	return mpesa.NewCircuitBreakerGateway(client, mpesa.CircuitBreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	}, m, log)
}

func newEventSink(cfg *config.Config, client *goredis.Client, log zerolog.Logger) eventpublisher.Publisher {
	if cfg.OutboxStream == "" {
		return eventpublisher.NewLogPublisher(log)
	}
	return eventpublisher.NewStreamPublisher(client, cfg.OutboxStream, streamMaxLen)
}

func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(rateLimiterIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(rateLimiterIdle)
		}
	}
}
