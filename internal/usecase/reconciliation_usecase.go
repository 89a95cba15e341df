package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

// CallbackOutcome describes what a callback did to the ledger.
type CallbackOutcome string

const (
	// CallbackApplied means a successful payment was applied to its loan.
	CallbackApplied CallbackOutcome = "applied"
	// CallbackFailed means the payment was marked failed.
	CallbackFailed CallbackOutcome = "failed"
	// CallbackDuplicate means the payment was already terminal and nothing changed.
	CallbackDuplicate CallbackOutcome = "duplicate"
	// CallbackUnmatched means no payment carries the callback's checkout request id.
	CallbackUnmatched CallbackOutcome = "unmatched"
)

// ReconciliationUseCase applies provider callbacks to payments, loans and the ledger.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	paymentRepo PaymentRepository
	loanRepo    LoanRepository
	txnRepo     TransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	paymentRepo PaymentRepository,
	loanRepo LoanRepository,
	txnRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		paymentRepo: paymentRepo,
		loanRepo:    loanRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		logger:      logger,
		metrics:     metrics,
	}
}

// HandleCallback settles the payment identified by the callback exactly once.
//
// Duplicate and late callbacks for a payment that is already terminal are
// acknowledged without side effects. A storage failure re-runs the whole
// transaction once; the pending guard makes the second run safe.
func (uc *ReconciliationUseCase) HandleCallback(ctx context.Context, cb domain.CallbackResult) (CallbackOutcome, error) {
	start := time.Now()

	if err := cb.Validate(); err != nil {
		uc.recordOutcome("invalid")
		return "", err
	}

	log := uc.logger.With().
		Str("checkout_request_id", cb.CheckoutRequestID).
		Int("result_code", cb.ResultCode).
		Logger()

	var (
		outcome CallbackOutcome
		err     error
	)
	for attempt := 1; attempt <= callbackAttempts; attempt++ {
		outcome, err = uc.reconcile(ctx, &cb)
		if err == nil || !isPersistence(err) {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("callback reconciliation failed")
	}

	if err != nil {
		if isNotFound(err) {
			log.Error().Err(err).Msg("callback for unknown payment")
			if uc.metrics != nil {
				uc.metrics.CallbacksUnmatched.Inc()
			}
			uc.recordOutcome(string(CallbackUnmatched))
			return CallbackUnmatched, err
		}

		log.Error().Err(err).Msg("callback reconciliation aborted")
		uc.recordOutcome("error")
		return "", err
	}

	log.Info().Str("outcome", string(outcome)).Msg("callback reconciled")
	uc.recordOutcome(string(outcome))
	if uc.metrics != nil {
		uc.metrics.CallbackDuration.Observe(time.Since(start).Seconds())
	}

	return outcome, nil
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, cb *domain.CallbackResult) (CallbackOutcome, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return "", domain.Persistence("begin callback transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock the payment so concurrent deliveries of the same callback serialize here.
	payment, err := uc.paymentRepo.GetByCheckoutRequestIDForUpdate(txCtx, tx, cb.CheckoutRequestID)
	if err != nil {
		return "", err
	}

	if payment.Status.IsTerminal() {
		return CallbackDuplicate, nil
	}

	now := time.Now().UTC()
	settlement := domain.SettlementFromCallback(cb, now)

	settled, err := uc.paymentRepo.Settle(txCtx, tx, payment.ID, settlement)
	if err != nil {
		return "", err
	}
	if !settled {
		return CallbackDuplicate, nil
	}

	outcome := CallbackFailed
	var events []*domain.OutboxEvent

	if settlement.Status == domain.PaymentStatusSuccess {
		payment.AmountReceived = settlement.AmountReceived
		payment.MpesaReceipt = settlement.MpesaReceipt

		loanEvents, err := uc.applyToLoan(txCtx, tx, payment, now)
		if err != nil {
			return "", err
		}
		events = append(events, loanEvents...)
		outcome = CallbackApplied
	} else {
		events = append(events, uc.paymentEvent(payment, domain.EventTypePaymentFailed, now, map[string]any{
			"result_code": settlement.ResultCode,
			"result_desc": settlement.ResultDesc,
		}))
	}

	for _, event := range events {
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return "", domain.Persistence("commit callback transaction", err)
	}

	return outcome, nil
}

// applyToLoan decrements the loan's outstanding balance and records the
// repayment ledger row. The ledger row carries the applied value so that the
// repayments recorded for a loan never exceed its principal.
func (uc *ReconciliationUseCase) applyToLoan(ctx context.Context, tx Transaction, payment *domain.Payment, now time.Time) ([]*domain.OutboxEvent, error) {
	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, payment.LoanID)
	if err != nil {
		return nil, err
	}

	received := payment.RepaymentAmount()
	outstanding, status, applied := loan.ApplyRepayment(received)

	if err := uc.loanRepo.UpdateRepayment(ctx, tx, loan.ID, outstanding, status, now); err != nil {
		return nil, err
	}

	if applied.IsPositive() {
		loanID := loan.ID
		paymentID := payment.ID
		txn := &domain.Transaction{
			ID:        uc.idGen.Generate(),
			UserID:    payment.UserID,
			LoanID:    &loanID,
			PaymentID: &paymentID,
			Type:      domain.TransactionTypeRepayment,
			Amount:    applied,
			CreatedAt: now,
		}
		if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
			return nil, err
		}
	}

	if applied.LessThan(received) {
		uc.logger.Warn().
			Str("payment_id", payment.ID).
			Str("loan_id", loan.ID).
			Str("received", received.String()).
			Str("applied", applied.String()).
			Msg("repayment exceeded outstanding balance")
	}

	events := []*domain.OutboxEvent{
		uc.paymentEvent(payment, domain.EventTypePaymentSucceeded, now, map[string]any{
			"amount_received": received.String(),
			"amount_applied":  applied.String(),
			"outstanding":     outstanding.String(),
			"mpesa_receipt":   deref(payment.MpesaReceipt),
		}),
	}

	if status == domain.LoanStatusPaid && loan.Status != domain.LoanStatusPaid {
		events = append(events, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   loan.ID,
			AggregateType: domain.AggregateTypeLoan,
			EventType:     domain.EventTypeLoanPaid,
			Payload: map[string]any{
				"loan_id":   loan.ID,
				"user_id":   loan.UserID,
				"principal": loan.Principal.String(),
			},
			CreatedAt: now,
		})
		if uc.metrics != nil {
			uc.metrics.LoansPaid.Inc()
		}
	}

	return events, nil
}

func (uc *ReconciliationUseCase) paymentEvent(payment *domain.Payment, eventType string, now time.Time, extra map[string]any) *domain.OutboxEvent {
	payload := map[string]any{
		"payment_id":          payment.ID,
		"loan_id":             payment.LoanID,
		"user_id":             payment.UserID,
		"checkout_request_id": deref(payment.CheckoutRequestID),
	}
	for k, v := range extra {
		payload[k] = v
	}

	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

func (uc *ReconciliationUseCase) recordOutcome(outcome string) {
	if uc.metrics != nil {
		uc.metrics.CallbacksReceived.WithLabelValues(outcome).Inc()
	}
}
