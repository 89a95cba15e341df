package domain

import "time"

// Event types
const (
	EventTypePaymentInitiated = "payment.initiated"
	EventTypePaymentSucceeded = "payment.succeeded"
	EventTypePaymentFailed    = "payment.failed"
	EventTypeLoanCreated      = "loan.created"
	EventTypeLoanPaid         = "loan.paid"
	EventTypeSavingsDeposited = "savings.deposited"
)

// Aggregate types
const (
	AggregateTypePayment = "payment"
	AggregateTypeLoan    = "loan"
	AggregateTypeSavings = "savings"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
