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

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	queries *generated.Queries
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(db generated.DBTX) *LoanRepository {
	return &LoanRepository{queries: generated.New(db)}
}

// Create inserts a loan within a transaction.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	err := queriesIn(tx).CreateLoan(ctx, generated.CreateLoanParams{
		ID:          loan.ID,
		UserID:      loan.UserID,
		Principal:   decimalToNumeric(loan.Principal),
		Outstanding: decimalToNumeric(loan.Outstanding),
		TermMonths:  int32(loan.TermMonths),
		Purpose:     loan.Purpose,
		Status:      string(loan.Status),
		CreatedAt:   timeToPgTimestamptz(loan.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(loan.UpdatedAt),
	})

	return domain.Persistence("create loan", err)
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row, err := r.queries.GetLoanByID(ctx, id)
	if err != nil {
		return nil, loanError("get loan", err)
	}

	return rowToLoan(row), nil
}

// GetByIDForUpdate retrieves a loan by ID with a FOR UPDATE lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	row, err := queriesIn(tx).GetLoanByIDForUpdate(ctx, id)
	if err != nil {
		return nil, loanError("lock loan", err)
	}

	return rowToLoan(row), nil
}

// UpdateRepayment writes the loan's new outstanding balance and status.
func (r *LoanRepository) UpdateRepayment(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, status domain.LoanStatus, updatedAt time.Time) error {
	affected, err := queriesIn(tx).UpdateLoanRepayment(ctx, generated.UpdateLoanRepaymentParams{
		ID:          id,
		Outstanding: decimalToNumeric(outstanding),
		Status:      string(status),
		UpdatedAt:   timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return domain.Persistence("update loan", err)
	}

	if affected == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// ListByUser returns a member's loans, newest first.
func (r *LoanRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error) {
	rows, err := r.queries.ListLoansByUser(ctx, generated.ListLoansByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, domain.Persistence("list loans", err)
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, rowToLoan(row))
	}

	return loans, nil
}

func loanError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrLoanNotFound
	}
	return domain.Persistence(op, err)
}

func rowToLoan(row generated.Loan) *domain.Loan {
	return &domain.Loan{
		ID:          row.ID,
		UserID:      row.UserID,
		Principal:   numericToDecimal(row.Principal),
		Outstanding: numericToDecimal(row.Outstanding),
		TermMonths:  int(row.TermMonths),
		Purpose:     row.Purpose,
		Status:      domain.LoanStatus(row.Status),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

