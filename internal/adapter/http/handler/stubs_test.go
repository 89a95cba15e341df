package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
)

type userServiceStub struct {
	registerFn     func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	getFn          func(ctx context.Context, id string) (*domain.User, error)
}

func (s *userServiceStub) Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *userServiceStub) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *userServiceStub) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

type tokenIssuerStub struct{}

func (tokenIssuerStub) Generate(user *domain.User) (string, error) {
	return "token-" + user.ID, nil
}

type loanServiceStub struct {
	applyFn func(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error)
	listFn  func(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error)
	getFn   func(ctx context.Context, userID, loanID string) (*domain.Loan, error)
}

func (s *loanServiceStub) ApplyForLoan(ctx context.Context, input usecase.ApplyLoanInput) (*domain.Loan, error) {
	return s.applyFn(ctx, input)
}

func (s *loanServiceStub) ListLoans(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error) {
	return s.listFn(ctx, userID, limit, offset)
}

func (s *loanServiceStub) GetLoan(ctx context.Context, userID, loanID string) (*domain.Loan, error) {
	return s.getFn(ctx, userID, loanID)
}

type repaymentServiceStub struct {
	initiateFn func(ctx context.Context, input usecase.InitiateRepaymentInput) (*usecase.InitiateRepaymentOutput, error)
}

func (s *repaymentServiceStub) InitiateRepayment(ctx context.Context, input usecase.InitiateRepaymentInput) (*usecase.InitiateRepaymentOutput, error) {
	return s.initiateFn(ctx, input)
}

type callbackServiceStub struct {
	handleFn func(ctx context.Context, cb domain.CallbackResult) (usecase.CallbackOutcome, error)
}

func (s *callbackServiceStub) HandleCallback(ctx context.Context, cb domain.CallbackResult) (usecase.CallbackOutcome, error) {
	return s.handleFn(ctx, cb)
}

type paymentServiceStub struct {
	statusFn func(ctx context.Context, userID, checkoutRequestID string) (domain.PaymentStatus, error)
}

func (s *paymentServiceStub) GetStatus(ctx context.Context, userID, checkoutRequestID string) (domain.PaymentStatus, error) {
	return s.statusFn(ctx, userID, checkoutRequestID)
}

type savingsServiceStub struct {
	depositFn func(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Savings, error)
	balanceFn func(ctx context.Context, userID string) (decimal.Decimal, error)
}

func (s *savingsServiceStub) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Savings, error) {
	return s.depositFn(ctx, userID, amount)
}

func (s *savingsServiceStub) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.balanceFn(ctx, userID)
}

type transactionServiceStub struct {
	listFn func(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	return s.listFn(ctx, userID, limit, offset)
}

type ledgerServiceStub struct {
	checkFn func(ctx context.Context) (*usecase.ConsistencyReport, error)
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.checkFn(ctx)
}

// asMember attaches the authenticated member the auth middleware would set.
func asMember(r *http.Request, id string) *http.Request {
	return r.WithContext(domain.ContextWithUser(r.Context(), &domain.User{ID: id}))
}
