package usecase

import (
	"context"

	"github.com/iho/saccopay/internal/domain"
)

// TransactionUseCase reads the member ledger.
type TransactionUseCase struct {
	txnRepo TransactionRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(txnRepo TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{txnRepo: txnRepo}
}

// ListTransactions returns the member's ledger rows, newest first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset = domain.NormalizePagination(limit, offset)
	return uc.txnRepo.ListByUser(ctx, userID, limit, offset)
}
