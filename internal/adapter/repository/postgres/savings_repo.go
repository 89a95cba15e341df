package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/postgres/generated"
	"github.com/iho/saccopay/internal/usecase"
)

// SavingsRepository implements usecase.SavingsRepository.
type SavingsRepository struct {
	queries *generated.Queries
}

// NewSavingsRepository creates a new SavingsRepository.
func NewSavingsRepository(db generated.DBTX) *SavingsRepository {
	return &SavingsRepository{queries: generated.New(db)}
}

// Open creates a zero balance row for the member if none exists.
func (r *SavingsRepository) Open(ctx context.Context, tx usecase.Transaction, userID string, openedAt time.Time) error {
	err := queriesIn(tx).OpenSavings(ctx, generated.OpenSavingsParams{
		UserID:    userID,
		UpdatedAt: timeToPgTimestamptz(openedAt),
	})

	return domain.Persistence("open savings", err)
}

// Deposit increments the balance with a single upsert so concurrent deposits never lose updates.
func (r *SavingsRepository) Deposit(ctx context.Context, tx usecase.Transaction, userID string, amount decimal.Decimal, updatedAt time.Time) (*domain.Savings, error) {
	row, err := queriesIn(tx).DepositSavings(ctx, generated.DepositSavingsParams{
		UserID:    userID,
		Balance:   decimalToNumeric(amount),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return nil, domain.Persistence("deposit savings", err)
	}

	return rowToSavings(row), nil
}

// GetByUser returns the member's savings. A member without a row has a zero balance.
func (r *SavingsRepository) GetByUser(ctx context.Context, userID string) (*domain.Savings, error) {
	row, err := r.queries.GetSavingsByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Savings{UserID: userID, Balance: decimal.Zero}, nil
		}
		return nil, domain.Persistence("get savings", err)
	}

	return rowToSavings(row), nil
}

func rowToSavings(row generated.Saving) *domain.Savings {
	return &domain.Savings{
		UserID:    row.UserID,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
