package postgres

import (
	"context"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// LoanBalances returns every loan with the sum of its repayment rows.
func (r *LedgerRepository) LoanBalances(ctx context.Context) ([]domain.LoanBalance, error) {
	rows, err := r.queries.GetLoanBalances(ctx)
	if err != nil {
		return nil, domain.Persistence("loan balances", err)
	}

	balances := make([]domain.LoanBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, domain.LoanBalance{
			LoanID:      row.ID,
			Status:      domain.LoanStatus(row.Status),
			Principal:   numericToDecimal(row.Principal),
			Outstanding: numericToDecimal(row.Outstanding),
			Repaid:      numericToDecimal(row.Repaid),
		})
	}

	return balances, nil
}
