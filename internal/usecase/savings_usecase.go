package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

// SavingsUseCase handles member deposits.
type SavingsUseCase struct {
	txManager   TransactionManager
	savingsRepo SavingsRepository
	txnRepo     TransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewSavingsUseCase creates a new SavingsUseCase.
func NewSavingsUseCase(
	txManager TransactionManager,
	savingsRepo SavingsRepository,
	txnRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *SavingsUseCase {
	return &SavingsUseCase{
		txManager:   txManager,
		savingsRepo: savingsRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// WithRetrier makes Deposit re-run its transaction on deadlock or
// serialization failures.
func (uc *SavingsUseCase) WithRetrier(retrier Retrier) *SavingsUseCase {
	uc.retrier = retrier
	return uc
}

// Deposit credits the member's savings and records a deposit ledger row.
// The balance is incremented in a single statement, never read then written.
func (uc *SavingsUseCase) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Savings, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	if uc.retrier == nil {
		return uc.deposit(ctx, userID, amount)
	}

	var savings *domain.Savings
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		savings, err = uc.deposit(ctx, userID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return savings, nil
}

func (uc *SavingsUseCase) deposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Savings, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()

	savings, err := uc.savingsRepo.Deposit(txCtx, tx, userID, amount, now)
	if err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    amount,
		CreatedAt: now,
	}
	if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   userID,
		AggregateType: domain.AggregateTypeSavings,
		EventType:     domain.EventTypeSavingsDeposited,
		Payload: map[string]any{
			"user_id":        userID,
			"transaction_id": txn.ID,
			"amount":         amount.String(),
			"balance":        savings.Balance.String(),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.Persistence("commit deposit", err)
	}

	if uc.metrics != nil {
		uc.metrics.DepositsCreated.Inc()
		uc.metrics.DepositAmount.Observe(amount.InexactFloat64())
	}

	return savings, nil
}

// GetBalance returns the member's savings balance.
func (uc *SavingsUseCase) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	savings, err := uc.savingsRepo.GetByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return savings.Balance, nil
}
