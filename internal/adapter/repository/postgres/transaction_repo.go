package postgres

import (
	"context"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/postgres/generated"
	"github.com/iho/saccopay/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create appends a ledger row within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	err := queriesIn(tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:        txn.ID,
		UserID:    txn.UserID,
		LoanID:    stringPtrToText(txn.LoanID),
		PaymentID: stringPtrToText(txn.PaymentID),
		Type:      string(txn.Type),
		Amount:    decimalToNumeric(txn.Amount),
		CreatedAt: timeToPgTimestamptz(txn.CreatedAt),
	})

	return domain.Persistence("create transaction", err)
}

// ListByUser returns a member's ledger rows, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByUser(ctx, generated.ListTransactionsByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, domain.Persistence("list transactions", err)
	}

	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, &domain.Transaction{
			ID:        row.ID,
			UserID:    row.UserID,
			LoanID:    textToStringPtr(row.LoanID),
			PaymentID: textToStringPtr(row.PaymentID),
			Type:      domain.TransactionType(row.Type),
			Amount:    numericToDecimal(row.Amount),
			CreatedAt: row.CreatedAt.Time,
		})
	}

	return txns, nil
}
