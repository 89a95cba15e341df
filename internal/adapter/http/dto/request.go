package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/usecase"
)

// RegisterRequest represents a member registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Password: r.Password,
	}
}

// LoginRequest represents a login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ApplyLoanRequest represents a loan application. Principal accepts a JSON
// number or a quoted decimal string.
type ApplyLoanRequest struct {
	Purpose    string          `json:"purpose"`
	Principal  decimal.Decimal `json:"principal"`
	TermMonths int             `json:"term_months"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyLoanRequest) ToUseCaseInput(userID string) usecase.ApplyLoanInput {
	return usecase.ApplyLoanInput{
		UserID:     userID,
		Purpose:    r.Purpose,
		Principal:  r.Principal,
		TermMonths: r.TermMonths,
	}
}

// InitiateRepaymentRequest starts an STK push for a loan.
type InitiateRepaymentRequest struct {
	Phone  string          `json:"phone"`
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *InitiateRepaymentRequest) ToUseCaseInput(userID, loanID string) usecase.InitiateRepaymentInput {
	return usecase.InitiateRepaymentInput{
		UserID: userID,
		LoanID: loanID,
		Phone:  r.Phone,
		Amount: r.Amount,
	}
}

// DepositRequest adds to the caller's savings.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
