package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UserResponse represents a member in API responses. The password hash is never exposed.
type UserResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		CreatedAt: u.CreatedAt,
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Purpose     string            `json:"purpose,omitempty"`
	Status      domain.LoanStatus `json:"status"`
	Principal   decimal.Decimal   `json:"principal"`
	Outstanding decimal.Decimal   `json:"outstanding"`
	TermMonths  int               `json:"term_months"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		ID:          l.ID,
		UserID:      l.UserID,
		Purpose:     l.Purpose,
		Status:      l.Status,
		Principal:   l.Principal,
		Outstanding: l.Outstanding,
		TermMonths:  l.TermMonths,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// LoanEnvelope wraps a newly created loan.
type LoanEnvelope struct {
	Loan *LoanResponse `json:"loan"`
}

// TransactionResponse represents a ledger row in API responses.
type TransactionResponse struct {
	CreatedAt time.Time              `json:"created_at"`
	LoanID    *string                `json:"loan_id,omitempty"`
	PaymentID *string                `json:"payment_id,omitempty"`
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      domain.TransactionType `json:"type"`
	Amount    decimal.Decimal        `json:"amount"`
}

// TransactionsFromDomain converts ledger rows to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = &TransactionResponse{
			CreatedAt: t.CreatedAt,
			LoanID:    t.LoanID,
			PaymentID: t.PaymentID,
			ID:        t.ID,
			UserID:    t.UserID,
			Type:      t.Type,
			Amount:    t.Amount,
		}
	}
	return result
}

// RepaymentResponse is returned once an STK push was accepted. The key
// keeps the provider's casing so existing clients keep working.
type RepaymentResponse struct {
	CheckoutRequestID *string `json:"checkoutRequestID"`
	Message           string  `json:"message"`
}

// RepaymentFromOutput converts the use case output.
func RepaymentFromOutput(out *usecase.InitiateRepaymentOutput) *RepaymentResponse {
	return &RepaymentResponse{
		CheckoutRequestID: out.CheckoutRequestID,
		Message:           out.Message,
	}
}

// PaymentStatusResponse reports a payment's status.
type PaymentStatusResponse struct {
	Status domain.PaymentStatus `json:"status"`
}

// SavingsResponse reports a savings balance.
type SavingsResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// DepositResponse acknowledges a deposit.
type DepositResponse struct {
	Balance decimal.Decimal `json:"balance"`
	Success bool            `json:"success"`
}

// CallbackAck is the body the provider expects back.
type CallbackAck struct {
	Result string `json:"result"`
}

// DiscrepancyResponse describes one out-of-balance loan.
type DiscrepancyResponse struct {
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

// ConsistencyResponse reports a ledger check.
type ConsistencyResponse struct {
	Status        string                `json:"status"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies,omitempty"`
	LoansChecked  int                   `json:"loans_checked"`
	Consistent    bool                  `json:"consistent"`
}

// ConsistencyFromReport converts a ledger report.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:       "consistent",
		LoansChecked: r.LoansChecked,
		Consistent:   r.Consistent(),
	}
	if !resp.Consistent {
		resp.Status = "inconsistent"
	}
	for _, d := range r.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, DiscrepancyResponse{LoanID: d.LoanID, Reason: d.Reason})
	}
	return resp
}
