package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidEmail    = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrPasswordTooWeak = fmt.Errorf("%w: password does not meet requirements", ErrValidation)
	ErrInvalidName     = fmt.Errorf("%w: invalid name", ErrValidation)
	ErrAmountTooLarge  = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrPurposeTooLong  = fmt.Errorf("%w: purpose is too long", ErrValidation)
)

// Validation constants
const (
	MaxNameLength     = 255
	MaxPurposeLength  = 500
	MaxAmount         = "1000000000" // 1 billion
	MinLoanPrincipal  = 1000
	MinTermMonths     = 1
	MaxTermMonths     = 120
	MinPasswordLength = 8
	MaxPasswordLength = 128
	DefaultPageSize   = 50
	MaxPageSize       = 100
)

// phoneRegex matches the M-Pesa MSISDN format: Kenyan country code, a
// Safaricom 7xx prefix and eight subscriber digits.
var phoneRegex = regexp.MustCompile(`^2547\d{8}$`)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateAmount validates a deposit or repayment amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount := decimal.RequireFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateChargeAmount validates an amount pushed to the provider, which
// only charges whole shillings.
func ValidateChargeAmount(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !amount.Equal(amount.Truncate(0)) {
		return ErrFractionalAmount
	}
	return nil
}

// ValidatePhone validates a mobile-money phone number.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidateLoanApplication validates the fields of a new loan.
func ValidateLoanApplication(principal decimal.Decimal, termMonths int, purpose string) error {
	if principal.LessThan(decimal.NewFromInt(MinLoanPrincipal)) {
		return fmt.Errorf("%w: minimum principal is %d", ErrInvalidPrincipal, MinLoanPrincipal)
	}

	if err := ValidateAmount(principal); err != nil {
		return err
	}

	if termMonths < MinTermMonths || termMonths > MaxTermMonths {
		return fmt.Errorf("%w: term must be between %d and %d months", ErrInvalidTerm, MinTermMonths, MaxTermMonths)
	}

	if len(purpose) > MaxPurposeLength {
		return ErrPurposeTooLong
	}

	return nil
}

// ValidateName validates a member's display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	return nil
}

// NormalizePagination clamps pagination parameters.
func NormalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
