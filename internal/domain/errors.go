package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the use cases wraps exactly one of these,
// so callers classify with errors.Is instead of matching concrete values.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrGateway      = errors.New("payment gateway error")
	ErrPersistence  = errors.New("persistence error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

var (
	// Loan errors
	ErrLoanNotFound     = fmt.Errorf("%w: loan not found", ErrNotFound)
	ErrLoanNotOwned     = fmt.Errorf("%w: loan belongs to another member", ErrForbidden)
	ErrLoanNotRepayable = fmt.Errorf("%w: loan is not open for repayment", ErrValidation)
	ErrInvalidPrincipal = fmt.Errorf("%w: invalid principal", ErrValidation)
	ErrInvalidTerm      = fmt.Errorf("%w: invalid term", ErrValidation)

	// Payment errors
	ErrPaymentNotFound      = fmt.Errorf("%w: payment not found", ErrNotFound)
	ErrMissingCorrelationID = fmt.Errorf("%w: missing checkout request id", ErrValidation)
	ErrInvalidAmount        = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrFractionalAmount     = fmt.Errorf("%w: amount must be whole shillings", ErrInvalidAmount)
	ErrInvalidPhone         = fmt.Errorf("%w: phone must be 2547XXXXXXXX", ErrValidation)

	// User errors
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrExpiredToken       = fmt.Errorf("%w: token has expired", ErrUnauthorized)
)

// Persistence wraps a storage failure so it classifies as ErrPersistence
// while keeping the driver error reachable through errors.As.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// Gateway wraps a provider failure.
func Gateway(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrGateway) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrGateway, op, err)
}
