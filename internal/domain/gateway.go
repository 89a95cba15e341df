package domain

import "github.com/shopspring/decimal"

// STKPushRequest asks the provider to prompt a phone for payment.
type STKPushRequest struct {
	Phone            string
	AccountReference string
	Description      string
	Amount           decimal.Decimal
}

// STKPushResult is the provider's synchronous acknowledgement of a push.
// CheckoutRequestID is nil when the provider accepted the request without
// returning a correlation id.
type STKPushResult struct {
	CheckoutRequestID   *string
	MerchantRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}
