package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
	"github.com/iho/saccopay/internal/usecase/mocks"
)

func TestPaymentUseCase_GetStatus(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedLoan("loan-1", 5000, 5000)

	pending := h.initiate(t, "loan-1", 1000)
	settled := h.initiate(t, "loan-1", 1000)
	if _, err := h.reconciler.HandleCallback(context.Background(), successCallback(settled, 1000)); err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	tests := []struct {
		name   string
		userID string
		id     string
		want   domain.PaymentStatus
	}{
		{"pending", memberID, pending, domain.PaymentStatusPending},
		{"success", memberID, settled, domain.PaymentStatusSuccess},
		{"unknown", memberID, "ws_CO_missing", domain.PaymentStatusNotFound},
		{"other member", otherMember, settled, domain.PaymentStatusNotFound},
	}

	for _, tt := range tests {
		got, err := h.payments.GetStatus(context.Background(), tt.userID, tt.id)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: status = %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, err := h.payments.GetStatus(context.Background(), memberID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
}

func TestPaymentUseCase_CachesTerminalStatus(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	cache := mocks.NewMockCache(ctrl)

	checkoutID := "ws_CO_9"
	payment := &domain.Payment{ID: "p1", UserID: memberID, CheckoutRequestID: &checkoutID, Status: domain.PaymentStatusFailed}

	var stored []byte
	cache.EXPECT().Get(gomock.Any(), "payment-status:"+checkoutID).Return(nil, usecase.ErrCacheMiss)
	paymentRepo.EXPECT().GetByCheckoutRequestID(gomock.Any(), checkoutID).Return(payment, nil)
	cache.EXPECT().Set(gomock.Any(), "payment-status:"+checkoutID, gomock.Any(), usecase.DefaultStatusCacheTTL).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		})

	uc := usecase.NewPaymentUseCase(paymentRepo, cache, 0, zerolog.Nop())

	status, err := uc.GetStatus(context.Background(), memberID, checkoutID)
	if err != nil || status != domain.PaymentStatusFailed {
		t.Fatalf("expected failed status, got %s err=%v", status, err)
	}

	var cached map[string]string
	if err := json.Unmarshal(stored, &cached); err != nil {
		t.Fatalf("cached value is not json: %v", err)
	}
	if cached["status"] != "failed" || cached["user_id"] != memberID {
		t.Fatalf("unexpected cached value %v", cached)
	}

	// Second read is served from the cache without touching the repository.
	cache.EXPECT().Get(gomock.Any(), "payment-status:"+checkoutID).Return(stored, nil).Times(2)

	status, err = uc.GetStatus(context.Background(), memberID, checkoutID)
	if err != nil || status != domain.PaymentStatusFailed {
		t.Fatalf("expected cached failed status, got %s err=%v", status, err)
	}

	status, err = uc.GetStatus(context.Background(), otherMember, checkoutID)
	if err != nil || status != domain.PaymentStatusNotFound {
		t.Fatalf("expected not_found for other member, got %s err=%v", status, err)
	}
}

func TestPaymentUseCase_PendingNotCached(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	cache := mocks.NewMockCache(ctrl)

	checkoutID := "ws_CO_10"
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	paymentRepo.EXPECT().GetByCheckoutRequestID(gomock.Any(), checkoutID).
		Return(&domain.Payment{UserID: memberID, Status: domain.PaymentStatusPending}, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	uc := usecase.NewPaymentUseCase(paymentRepo, cache, 0, zerolog.Nop())

	status, err := uc.GetStatus(context.Background(), memberID, checkoutID)
	if err != nil || status != domain.PaymentStatusPending {
		t.Fatalf("expected pending, got %s err=%v", status, err)
	}
}

func TestPaymentUseCase_RepositoryErrorPropagates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)

	paymentRepo.EXPECT().GetByCheckoutRequestID(gomock.Any(), "ws_CO_1").
		Return(nil, domain.Persistence("get payment", errors.New("timeout")))

	uc := usecase.NewPaymentUseCase(paymentRepo, nil, 0, zerolog.Nop())

	if _, err := uc.GetStatus(context.Background(), memberID, "ws_CO_1"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
