package mpesa

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
	"github.com/iho/saccopay/internal/usecase"
)

// ErrCircuitOpen is returned without calling the provider while the breaker is open.
var ErrCircuitOpen = fmt.Errorf("%w: circuit open", domain.ErrGateway)

// BreakerState is exported as the gateway breaker gauge value.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerHalfOpen:
		return "half-open"
	case BreakerOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes when the breaker trips and recovers.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	IsFailure        func(error) bool
}

// CircuitBreakerGateway stops calling an unavailable provider for OpenTimeout
// after FailureThreshold consecutive failures, then lets a single probe through.
type CircuitBreakerGateway struct {
	next    usecase.PaymentGateway
	cfg     CircuitBreakerConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time

	mu           sync.Mutex
	state        BreakerState
	failures     int
	successes    int
	openedAt     time.Time
	halfInFlight bool
}

// NewCircuitBreakerGateway wraps next. m may be nil.
func NewCircuitBreakerGateway(next usecase.PaymentGateway, cfg CircuitBreakerConfig, m *metrics.Metrics, logger zerolog.Logger) *CircuitBreakerGateway {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool {
			return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, context.DeadlineExceeded)
		}
	}

	g := &CircuitBreakerGateway{
		next:    next,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		state:   BreakerClosed,
	}
	g.report()

	return g
}

// STKPush forwards to the wrapped gateway unless the breaker is open.
func (g *CircuitBreakerGateway) STKPush(ctx context.Context, req domain.STKPushRequest) (*domain.STKPushResult, error) {
	if err := g.beforeCall(); err != nil {
		return nil, err
	}

	result, err := g.next.STKPush(ctx, req)
	g.afterCall(err)

	return result, err
}

// State returns the current breaker state.
func (g *CircuitBreakerGateway) State() BreakerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *CircuitBreakerGateway) beforeCall() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if g.now().Sub(g.openedAt) < g.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		g.transition(BreakerHalfOpen)
		g.successes = 0
		g.halfInFlight = false
		fallthrough
	case BreakerHalfOpen:
		if g.halfInFlight {
			return ErrCircuitOpen
		}
		g.halfInFlight = true
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (g *CircuitBreakerGateway) afterCall(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == BreakerHalfOpen {
		g.halfInFlight = false
	}

	if err == nil {
		switch g.state {
		case BreakerClosed:
			g.failures = 0
		case BreakerHalfOpen:
			g.successes++
			if g.successes >= g.cfg.SuccessThreshold {
				g.transition(BreakerClosed)
				g.failures = 0
				g.successes = 0
			}
		}
		return
	}

	if !g.cfg.IsFailure(err) {
		return
	}

	switch g.state {
	case BreakerClosed:
		g.failures++
		if g.failures >= g.cfg.FailureThreshold {
			g.open()
		}
	case BreakerHalfOpen:
		g.open()
	}
}

func (g *CircuitBreakerGateway) open() {
	g.transition(BreakerOpen)
	g.openedAt = g.now()
	g.failures = g.cfg.FailureThreshold
	g.successes = 0
	g.halfInFlight = false
}

// transition must be called with mu held.
func (g *CircuitBreakerGateway) transition(to BreakerState) {
	if g.state == to {
		return
	}
	g.logger.Warn().Str("from", g.state.String()).Str("to", to.String()).Msg("gateway breaker state changed")
	g.state = to
	g.report()
}

func (g *CircuitBreakerGateway) report() {
	if g.metrics != nil {
		g.metrics.GatewayBreaker.Set(float64(g.state))
	}
}
