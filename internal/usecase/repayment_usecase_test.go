package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
	"github.com/iho/saccopay/internal/usecase/mocks"
)

func TestRepaymentUseCase_InitiateRepayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       usecase.InitiateRepaymentInput
		loanStatus  domain.LoanStatus
		gatewayErr  error
		errorType   error
		wantPayment bool
	}{
		{
			name:        "pending payment recorded",
			input:       usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(500)},
			wantPayment: true,
		},
		{
			name:      "malformed phone",
			input:     usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: "0712345678", Amount: decimal.NewFromInt(500)},
			errorType: domain.ErrValidation,
		},
		{
			name:      "zero amount",
			input:     usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.Zero},
			errorType: domain.ErrValidation,
		},
		{
			name:      "negative amount",
			input:     usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(-10)},
			errorType: domain.ErrValidation,
		},
		{
			name:      "sub-unit amount",
			input:     usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.RequireFromString("0.004")},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name:      "fractional amount",
			input:     usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.RequireFromString("100.6")},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name:      "unknown loan",
			input:     usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-404", Phone: memberPhone, Amount: decimal.NewFromInt(500)},
			errorType: domain.ErrNotFound,
		},
		{
			name:      "loan owned by another member",
			input:     usecase.InitiateRepaymentInput{UserID: otherMember, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(500)},
			errorType: domain.ErrForbidden,
		},
		{
			name:       "loan already paid",
			input:      usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(500)},
			loanStatus: domain.LoanStatusPaid,
			errorType:  domain.ErrValidation,
		},
		{
			name:       "gateway failure",
			input:      usecase.InitiateRepaymentInput{UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(500)},
			gatewayErr: errors.New("connection refused"),
			errorType:  domain.ErrGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.seedLoan("loan-1", 5000, 5000)
			if tt.loanStatus != "" {
				loan, _ := h.store.Loan("loan-1")
				loan.Status = tt.loanStatus
				h.store.SeedLoan(loan)
			}
			h.gateway.Err = tt.gatewayErr

			out, err := h.repayments.InitiateRepayment(context.Background(), tt.input)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				if h.store.PaymentCount() != 0 {
					t.Fatalf("expected no payment row, got %d", h.store.PaymentCount())
				}
				if errors.Is(err, domain.ErrValidation) && len(h.gateway.Calls()) != 0 {
					t.Fatalf("expected no push for invalid request, got %d", len(h.gateway.Calls()))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Message != usecase.RepaymentInitiatedMessage {
				t.Fatalf("unexpected message %q", out.Message)
			}

			payment, ok := h.store.PaymentByCheckout(*out.CheckoutRequestID)
			if !ok {
				t.Fatal("expected payment to be stored")
			}
			if payment.Status != domain.PaymentStatusPending {
				t.Fatalf("payment status = %s, want pending", payment.Status)
			}
			if payment.LoanID != "loan-1" || payment.UserID != memberID || payment.Phone != memberPhone {
				t.Fatalf("unexpected payment: %+v", payment)
			}
			if h.store.PaymentCount() != 1 {
				t.Fatalf("expected exactly one payment, got %d", h.store.PaymentCount())
			}

			calls := h.gateway.Calls()
			if len(calls) != 1 || calls[0].AccountReference != "loan-1" || !calls[0].Amount.Equal(tt.input.Amount) {
				t.Fatalf("unexpected gateway calls: %+v", calls)
			}
		})
	}
}

func TestRepaymentUseCase_EachCallCreatesOnePayment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedLoan("loan-1", 5000, 5000)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		ids[h.initiate(t, "loan-1", 100)] = true
	}

	if len(ids) != 3 || h.store.PaymentCount() != 3 {
		t.Fatalf("expected 3 distinct payments, got ids=%d rows=%d", len(ids), h.store.PaymentCount())
	}
}

func TestRepaymentUseCase_DegradedProviderWithoutID(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedLoan("loan-1", 5000, 5000)
	h.gateway.NoID = true

	out, err := h.repayments.InitiateRepayment(context.Background(), usecase.InitiateRepaymentInput{
		UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CheckoutRequestID != nil {
		t.Fatalf("expected nil checkout request id, got %v", *out.CheckoutRequestID)
	}
	if h.store.PaymentCount() != 1 {
		t.Fatalf("expected payment row recorded, got %d", h.store.PaymentCount())
	}
}

func TestRepaymentUseCase_PersistenceFailureAfterPush(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedLoan("loan-1", 5000, 5000)
	h.store.FailNext("payment.create", 1)

	_, err := h.repayments.InitiateRepayment(context.Background(), usecase.InitiateRepaymentInput{
		UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if h.store.PaymentCount() != 0 {
		t.Fatalf("expected no payment row, got %d", h.store.PaymentCount())
	}
	if len(h.store.Events()) != 0 {
		t.Fatalf("expected no outbox events, got %d", len(h.store.Events()))
	}
}

func TestRepaymentUseCase_GatewayCalledBeforeTransaction(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	loanRepo := mocks.NewMockLoanRepository(ctrl)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	outboxRepo := mocks.NewMockOutboxRepository(ctrl)
	gateway := mocks.NewMockPaymentGateway(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	checkoutID := "ws_CO_123"
	loan := &domain.Loan{ID: "loan-1", UserID: memberID, Status: domain.LoanStatusApproved, Principal: decimal.NewFromInt(5000), Outstanding: decimal.NewFromInt(5000)}

	idGen.EXPECT().Generate().Return("gen-id").AnyTimes()

	gomock.InOrder(
		loanRepo.EXPECT().GetByID(gomock.Any(), "loan-1").Return(loan, nil),
		gateway.EXPECT().STKPush(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req domain.STKPushRequest) (*domain.STKPushResult, error) {
				if req.Phone != memberPhone || req.AccountReference != "loan-1" {
					t.Errorf("unexpected push request %+v", req)
				}
				return &domain.STKPushResult{CheckoutRequestID: &checkoutID}, nil
			}),
		txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil),
		paymentRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ usecase.Transaction, p *domain.Payment) error {
				if p.CheckoutRequestID == nil || *p.CheckoutRequestID != checkoutID || p.Status != domain.PaymentStatusPending {
					t.Errorf("unexpected payment %+v", p)
				}
				return nil
			}),
		outboxRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil),
		tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	uc := usecase.NewRepaymentUseCase(txManager, loanRepo, paymentRepo, outboxRepo, gateway, idGen, zerolog.Nop(), nil)

	out, err := uc.InitiateRepayment(context.Background(), usecase.InitiateRepaymentInput{
		UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CheckoutRequestID == nil || *out.CheckoutRequestID != checkoutID {
		t.Fatalf("unexpected checkout request id %v", out.CheckoutRequestID)
	}
}

func TestRepaymentUseCase_GatewayFailureOpensNoTransaction(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	txManager := mocks.NewMockTransactionManager(ctrl)
	loanRepo := mocks.NewMockLoanRepository(ctrl)
	gateway := mocks.NewMockPaymentGateway(ctrl)

	loanRepo.EXPECT().GetByID(gomock.Any(), "loan-1").
		Return(&domain.Loan{ID: "loan-1", UserID: memberID, Status: domain.LoanStatusApproved}, nil)
	gateway.EXPECT().STKPush(gomock.Any(), gomock.Any()).Return(nil, errors.New("503 from provider"))
	txManager.EXPECT().Begin(gomock.Any()).Times(0)

	uc := usecase.NewRepaymentUseCase(
		txManager, loanRepo, mocks.NewMockPaymentRepository(ctrl), mocks.NewMockOutboxRepository(ctrl),
		gateway, mocks.NewMockIDGenerator(ctrl), zerolog.Nop(), nil,
	)

	_, err := uc.InitiateRepayment(context.Background(), usecase.InitiateRepaymentInput{
		UserID: memberID, LoanID: "loan-1", Phone: memberPhone, Amount: decimal.NewFromInt(250),
	})
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}
