package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusPaid     LoanStatus = "paid"
	LoanStatusRejected LoanStatus = "rejected"
)

// Loan is a member's loan. Outstanding starts at Principal and only ever decreases.
type Loan struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	UserID      string
	Purpose     string
	Status      LoanStatus
	Principal   decimal.Decimal
	Outstanding decimal.Decimal
	TermMonths  int
}

// NewLoan builds a pending loan with the full principal outstanding.
func NewLoan(id, userID string, principal decimal.Decimal, termMonths int, purpose string, now time.Time) *Loan {
	return &Loan{
		ID:          id,
		UserID:      userID,
		Principal:   principal,
		Outstanding: principal,
		TermMonths:  termMonths,
		Purpose:     purpose,
		Status:      LoanStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// OwnedBy reports whether the loan belongs to userID.
func (l *Loan) OwnedBy(userID string) bool {
	return l.UserID == userID
}

// Repayable reports whether a repayment may still be initiated against the loan.
func (l *Loan) Repayable() bool {
	return l.Status != LoanStatusPaid && l.Status != LoanStatusRejected
}

// ApplyRepayment returns the loan state after amount is paid against it.
// The outstanding balance is clamped at zero; applied is the portion of
// amount that actually reduced the balance.
func (l *Loan) ApplyRepayment(amount decimal.Decimal) (outstanding decimal.Decimal, status LoanStatus, applied decimal.Decimal) {
	outstanding = l.Outstanding.Sub(amount)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	applied = l.Outstanding.Sub(outstanding)

	status = l.Status
	if outstanding.IsZero() {
		status = LoanStatusPaid
	}

	return outstanding, status, applied
}

// LoanBalance is a loan's recorded balance alongside the sum of its repayment rows.
type LoanBalance struct {
	LoanID      string
	Status      LoanStatus
	Principal   decimal.Decimal
	Outstanding decimal.Decimal
	Repaid      decimal.Decimal
}
