package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/domain"
)

const statusCachePrefix = "payment-status:"

// PaymentUseCase answers payment status queries.
type PaymentUseCase struct {
	paymentRepo PaymentRepository
	cache       Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewPaymentUseCase creates a new PaymentUseCase. cache may be nil.
func NewPaymentUseCase(paymentRepo PaymentRepository, cache Cache, cacheTTL time.Duration, logger zerolog.Logger) *PaymentUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultStatusCacheTTL
	}

	return &PaymentUseCase{
		paymentRepo: paymentRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

type cachedStatus struct {
	UserID string               `json:"user_id"`
	Status domain.PaymentStatus `json:"status"`
}

// GetStatus returns the status of the caller's payment. Payments that do not
// exist or belong to another member are both reported as not_found.
func (uc *PaymentUseCase) GetStatus(ctx context.Context, userID, checkoutRequestID string) (domain.PaymentStatus, error) {
	if checkoutRequestID == "" {
		return "", domain.ErrMissingCorrelationID
	}

	if cached, ok := uc.lookup(ctx, checkoutRequestID); ok {
		if cached.UserID != userID {
			return domain.PaymentStatusNotFound, nil
		}
		return cached.Status, nil
	}

	payment, err := uc.paymentRepo.GetByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return domain.PaymentStatusNotFound, nil
		}
		return "", err
	}

	if payment.UserID != userID {
		return domain.PaymentStatusNotFound, nil
	}

	// Terminal statuses never change again.
	if payment.Status.IsTerminal() {
		uc.store(ctx, checkoutRequestID, cachedStatus{UserID: payment.UserID, Status: payment.Status})
	}

	return payment.Status, nil
}

func (uc *PaymentUseCase) lookup(ctx context.Context, checkoutRequestID string) (cachedStatus, bool) {
	var cached cachedStatus
	if uc.cache == nil {
		return cached, false
	}

	raw, err := uc.cache.Get(ctx, statusCachePrefix+checkoutRequestID)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("checkout_request_id", checkoutRequestID).Msg("status cache read failed")
		}
		return cached, false
	}

	if err := json.Unmarshal(raw, &cached); err != nil || !cached.Status.IsTerminal() {
		return cached, false
	}

	return cached, true
}

func (uc *PaymentUseCase) store(ctx context.Context, checkoutRequestID string, status cachedStatus) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(status)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, statusCachePrefix+checkoutRequestID, raw, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("checkout_request_id", checkoutRequestID).Msg("status cache write failed")
	}
}
