package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
)

// ErrInconsistentLedger is returned when loan balances disagree with repayment rows.
var ErrInconsistentLedger = errors.New("ledger is inconsistent")

// LoanDiscrepancy describes a loan whose balance disagrees with its ledger rows.
type LoanDiscrepancy struct {
	LoanID string
	Reason string
}

// ConsistencyReport summarizes a ledger check.
type ConsistencyReport struct {
	Discrepancies []LoanDiscrepancy
	LoansChecked  int
}

// Consistent reports whether no discrepancies were found.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies every loan against its repayment rows.
//
// For each loan: repayments never exceed the principal, the amount repaid
// (principal - outstanding) equals the recorded repayments, and a loan with
// nothing outstanding is paid.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	balances, err := uc.ledgerRepo.LoanBalances(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{LoansChecked: len(balances)}
	for _, b := range balances {
		if reason := checkLoanBalance(b); reason != "" {
			report.Discrepancies = append(report.Discrepancies, LoanDiscrepancy{LoanID: b.LoanID, Reason: reason})
		}
	}

	if !report.Consistent() {
		return report, fmt.Errorf("%w: %d loan(s) out of balance", ErrInconsistentLedger, len(report.Discrepancies))
	}

	return report, nil
}

func checkLoanBalance(b domain.LoanBalance) string {
	switch {
	case b.Outstanding.IsNegative() || b.Outstanding.GreaterThan(b.Principal):
		return fmt.Sprintf("outstanding %s outside [0, %s]", b.Outstanding, b.Principal)
	case b.Repaid.GreaterThan(b.Principal):
		return fmt.Sprintf("repayments %s exceed principal %s", b.Repaid, b.Principal)
	case !b.Principal.Sub(b.Outstanding).Equal(decimal.Min(b.Principal, b.Repaid)):
		return fmt.Sprintf("repaid %s but outstanding reduced by %s", b.Repaid, b.Principal.Sub(b.Outstanding))
	case b.Outstanding.IsZero() && b.Status != domain.LoanStatusPaid:
		return fmt.Sprintf("outstanding is zero but status is %s", b.Status)
	}
	return ""
}
