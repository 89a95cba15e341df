package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
)

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	UpdateRepayment(ctx context.Context, tx Transaction, id string, outstanding decimal.Decimal, status domain.LoanStatus, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error)
}

// PaymentRepository defines data access for STK push payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error)
	GetByCheckoutRequestIDForUpdate(ctx context.Context, tx Transaction, checkoutRequestID string) (*domain.Payment, error)
	// Settle moves a pending payment to its terminal state. It reports false
	// when the payment was no longer pending and nothing was written.
	Settle(ctx context.Context, tx Transaction, id string, settlement domain.Settlement) (bool, error)
}

// TransactionRepository defines data access for member ledger rows.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
}

// SavingsRepository defines data access for savings balances.
type SavingsRepository interface {
	Open(ctx context.Context, tx Transaction, userID string, openedAt time.Time) error
	// Deposit adds amount to the balance in a single statement and returns the new state.
	Deposit(ctx context.Context, tx Transaction, userID string, amount decimal.Decimal, updatedAt time.Time) (*domain.Savings, error)
	GetByUser(ctx context.Context, userID string) (*domain.Savings, error)
}

// UserRepository defines data access for members.
type UserRepository interface {
	Create(ctx context.Context, tx Transaction, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	LoanBalances(ctx context.Context) ([]domain.LoanBalance, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// PaymentGateway sends STK push requests to the mobile-money provider.
type PaymentGateway interface {
	STKPush(ctx context.Context, req domain.STKPushRequest) (*domain.STKPushResult, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PasswordHasher hashes and verifies member passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyInProgress is the value a claimed idempotency key holds until
// its request completes.
const IdempotencyInProgress = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete so it can be retried.
	Release(ctx context.Context, key string) error
}
