package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
)

// UserService is the subset of the user use case the handlers need.
type UserService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
}

// LoanService applies for and lists loans.
type LoanService interface {
	ApplyForLoan(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error)
	ListLoans(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error)
	GetLoan(ctx context.Context, userID, loanID string) (*domain.Loan, error)
}

// RepaymentService starts STK push repayments.
type RepaymentService interface {
	InitiateRepayment(ctx context.Context, input usecase.InitiateRepaymentInput) (*usecase.InitiateRepaymentOutput, error)
}

// CallbackService reconciles provider callbacks.
type CallbackService interface {
	HandleCallback(ctx context.Context, cb domain.CallbackResult) (usecase.CallbackOutcome, error)
}

// PaymentService answers payment status queries.
type PaymentService interface {
	GetStatus(ctx context.Context, userID, checkoutRequestID string) (domain.PaymentStatus, error)
}

// SavingsService handles deposits and balances.
type SavingsService interface {
	Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Savings, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// TransactionService lists ledger rows.
type TransactionService interface {
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
}

// LedgerService checks ledger consistency.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}
