package domain

import (
	"github.com/shopspring/decimal"
)

// ResultCodeSuccess is the provider result code for a completed charge.
const ResultCodeSuccess = 0

// CallbackResult is a provider callback normalized from whatever shape it arrived in.
type CallbackResult struct {
	Amount            *decimal.Decimal
	Receipt           *string
	Phone             *string
	CheckoutRequestID string
	MerchantRequestID string
	ResultDesc        string
	ResultCode        int
}

// Succeeded reports whether the provider confirmed the charge.
func (c *CallbackResult) Succeeded() bool {
	return c.ResultCode == ResultCodeSuccess
}

// Validate checks the fields required to correlate the callback.
func (c *CallbackResult) Validate() error {
	if c.CheckoutRequestID == "" {
		return ErrMissingCorrelationID
	}
	return nil
}
