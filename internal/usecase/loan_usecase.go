package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
)

// LoanUseCase handles loan applications and listings.
type LoanUseCase struct {
	txManager  TransactionManager
	loanRepo   LoanRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:  txManager,
		loanRepo:   loanRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
	}
}

// ApplyLoanInput represents input for a loan application.
type ApplyLoanInput struct {
	UserID     string
	Purpose    string
	Principal  decimal.Decimal
	TermMonths int
}

// ApplyForLoan records a pending loan with its full principal outstanding.
func (uc *LoanUseCase) ApplyForLoan(ctx context.Context, input ApplyLoanInput) (*domain.Loan, error) {
	purpose := strings.TrimSpace(input.Purpose)
	if err := domain.ValidateLoanApplication(input.Principal, input.TermMonths, purpose); err != nil {
		return nil, err
	}

	loan := domain.NewLoan(uc.idGen.Generate(), input.UserID, input.Principal, input.TermMonths, purpose, time.Now().UTC())

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.loanRepo.Create(txCtx, tx, loan); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanCreated,
		Payload: map[string]any{
			"loan_id":     loan.ID,
			"user_id":     loan.UserID,
			"principal":   loan.Principal.String(),
			"term_months": loan.TermMonths,
		},
		CreatedAt: loan.CreatedAt,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return loan, nil
}

// ListLoans returns the member's loans, newest first.
func (uc *LoanUseCase) ListLoans(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error) {
	limit, offset = domain.NormalizePagination(limit, offset)
	return uc.loanRepo.ListByUser(ctx, userID, limit, offset)
}

// GetLoan returns one of the member's loans.
func (uc *LoanUseCase) GetLoan(ctx context.Context, userID, loanID string) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if !loan.OwnedBy(userID) {
		return nil, domain.ErrLoanNotOwned
	}

	return loan, nil
}
