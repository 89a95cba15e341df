package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

// RepaymentUseCase initiates loan repayments through the payment gateway.
type RepaymentUseCase struct {
	txManager   TransactionManager
	loanRepo    LoanRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	gateway     PaymentGateway
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewRepaymentUseCase creates a new RepaymentUseCase.
func NewRepaymentUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	gateway PaymentGateway,
	idGen IDGenerator,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *RepaymentUseCase {
	return &RepaymentUseCase{
		txManager:   txManager,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		gateway:     gateway,
		idGen:       idGen,
		logger:      logger,
		metrics:     metrics,
	}
}

// InitiateRepaymentInput represents input for starting a repayment.
type InitiateRepaymentInput struct {
	UserID string
	LoanID string
	Phone  string
	Amount decimal.Decimal
}

// InitiateRepaymentOutput is returned once the provider accepted the push.
type InitiateRepaymentOutput struct {
	CheckoutRequestID *string
	PaymentID         string
	Message           string
}

// InitiateRepayment validates the request, asks the provider to push a payment
// prompt to the member's phone and records a pending payment.
//
// The gateway call happens before any database transaction is opened, so a
// slow provider never holds locks.
func (uc *RepaymentUseCase) InitiateRepayment(ctx context.Context, input InitiateRepaymentInput) (*InitiateRepaymentOutput, error) {
	if err := domain.ValidateChargeAmount(input.Amount); err != nil {
		uc.recordError("validation")
		return nil, err
	}

	if err := domain.ValidatePhone(input.Phone); err != nil {
		uc.recordError("validation")
		return nil, err
	}

	loan, err := uc.loanRepo.GetByID(ctx, input.LoanID)
	if err != nil {
		uc.recordError("loan_lookup")
		return nil, err
	}

	if !loan.OwnedBy(input.UserID) {
		uc.recordError("forbidden")
		return nil, domain.ErrLoanNotOwned
	}

	if !loan.Repayable() {
		uc.recordError("validation")
		return nil, domain.ErrLoanNotRepayable
	}

	reference := loan.ID
	if reference == "" {
		reference = DefaultAccountReference
	}

	result, err := uc.gateway.STKPush(ctx, domain.STKPushRequest{
		Phone:            input.Phone,
		Amount:           input.Amount,
		AccountReference: reference,
		Description:      "Repay " + reference,
	})
	if err != nil {
		uc.recordError("gateway")
		uc.logger.Error().Err(err).Str("loan_id", loan.ID).Msg("stk push failed")
		return nil, domain.Gateway("stk push", err)
	}

	if result.CheckoutRequestID == nil {
		uc.logger.Warn().Str("loan_id", loan.ID).Msg("provider accepted push without checkout request id")
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:                uc.idGen.Generate(),
		UserID:            input.UserID,
		LoanID:            loan.ID,
		Phone:             input.Phone,
		Amount:            input.Amount,
		CheckoutRequestID: result.CheckoutRequestID,
		Status:            domain.PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.persistPayment(ctx, payment); err != nil {
		uc.recordError("persistence")
		uc.logger.Error().Err(err).
			Str("loan_id", loan.ID).
			Str("checkout_request_id", deref(result.CheckoutRequestID)).
			Msg("failed to record pending payment")
		return nil, domain.Persistence("record payment", err)
	}

	if uc.metrics != nil {
		uc.metrics.RepaymentsInitiated.Inc()
		uc.metrics.RepaymentAmount.Observe(input.Amount.InexactFloat64())
	}

	uc.logger.Info().
		Str("payment_id", payment.ID).
		Str("loan_id", loan.ID).
		Str("checkout_request_id", deref(result.CheckoutRequestID)).
		Msg("repayment initiated")

	return &InitiateRepaymentOutput{
		CheckoutRequestID: result.CheckoutRequestID,
		PaymentID:         payment.ID,
		Message:           RepaymentInitiatedMessage,
	}, nil
}

func (uc *RepaymentUseCase) persistPayment(ctx context.Context, payment *domain.Payment) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentInitiated,
		Payload: map[string]any{
			"payment_id":          payment.ID,
			"loan_id":             payment.LoanID,
			"user_id":             payment.UserID,
			"amount":              payment.Amount.String(),
			"checkout_request_id": deref(payment.CheckoutRequestID),
		},
		CreatedAt: payment.CreatedAt,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

func (uc *RepaymentUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RepaymentErrors.WithLabelValues(kind).Inc()
	}
}
