package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger row.
type TransactionType string

const (
	TransactionTypeDeposit   TransactionType = "deposit"
	TransactionTypeRepayment TransactionType = "repayment"
)

// Transaction is an immutable member ledger row.
type Transaction struct {
	CreatedAt time.Time
	LoanID    *string
	PaymentID *string
	ID        string
	UserID    string
	Type      TransactionType
	Amount    decimal.Decimal
}

// Savings is a member's accumulated deposit balance.
type Savings struct {
	UpdatedAt time.Time
	UserID    string
	Balance   decimal.Decimal
	Version   int64
}
