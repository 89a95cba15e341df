package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultStatusCacheTTL is how long a terminal payment status is cached.
	DefaultStatusCacheTTL = time.Hour

	// DefaultAccountReference is sent to the provider when no loan reference is available.
	DefaultAccountReference = "SACCO"

	// RepaymentInitiatedMessage is returned to the member after a successful push.
	RepaymentInitiatedMessage = "STK Push initiated. Awaiting callback."

	// callbackAttempts bounds how many times a callback transaction is run.
	callbackAttempts = 2
)
