package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of an STK push repayment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"

	// PaymentStatusNotFound is only ever reported by status queries; it is never stored.
	PaymentStatusNotFound PaymentStatus = "not_found"
)

// IsTerminal reports whether no further transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment is a repayment request sent to the mobile-money provider.
// CheckoutRequestID is the provider's correlation id and is nil when the
// provider accepted the request without returning one.
type Payment struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CheckoutRequestID *string
	AmountReceived    *decimal.Decimal
	MpesaReceipt      *string
	ResultCode        *int
	ResultDesc        *string
	ID                string
	UserID            string
	LoanID            string
	Phone             string
	Status            PaymentStatus
	Amount            decimal.Decimal
}

// Settlement is the terminal outcome captured from a provider callback.
type Settlement struct {
	SettledAt      time.Time
	AmountReceived *decimal.Decimal
	MpesaReceipt   *string
	Phone          *string
	ResultDesc     string
	Status         PaymentStatus
	ResultCode     int
}

// SettlementFromCallback derives the terminal outcome of a payment from a callback.
func SettlementFromCallback(cb *CallbackResult, now time.Time) Settlement {
	status := PaymentStatusFailed
	if cb.Succeeded() {
		status = PaymentStatusSuccess
	}

	return Settlement{
		Status:         status,
		ResultCode:     cb.ResultCode,
		ResultDesc:     cb.ResultDesc,
		AmountReceived: cb.Amount,
		MpesaReceipt:   cb.Receipt,
		Phone:          cb.Phone,
		SettledAt:      now,
	}
}

// RepaymentAmount is the value credited against the loan: the amount the
// provider confirmed, or the requested amount when the provider omitted it.
func (p *Payment) RepaymentAmount() decimal.Decimal {
	if p.AmountReceived != nil && p.AmountReceived.IsPositive() {
		return *p.AmountReceived
	}
	return p.Amount
}
