package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewLoan(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	loan := NewLoan("loan-1", "user-1", decimal.NewFromInt(5000), 6, "stock", now)

	if !loan.Outstanding.Equal(loan.Principal) {
		t.Fatalf("expected outstanding %s to equal principal %s", loan.Outstanding, loan.Principal)
	}
	if loan.Status != LoanStatusPending {
		t.Fatalf("expected pending status, got %s", loan.Status)
	}
	if !loan.OwnedBy("user-1") || loan.OwnedBy("user-2") {
		t.Fatal("ownership check mismatch")
	}
}

func TestLoanApplyRepayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		outstanding     string
		amount          string
		wantOutstanding string
		wantApplied     string
		wantStatus      LoanStatus
	}{
		{"partial", "5000", "2000", "3000", "2000", LoanStatusApproved},
		{"exact", "5000", "5000", "0", "5000", LoanStatusPaid},
		{"overpayment clamps at zero", "1000", "1500", "0", "1000", LoanStatusPaid},
		{"already paid", "0", "100", "0", "0", LoanStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := &Loan{
				Principal:   decimal.NewFromInt(5000),
				Outstanding: decimal.RequireFromString(tt.outstanding),
				Status:      LoanStatusApproved,
			}

			outstanding, status, applied := loan.ApplyRepayment(decimal.RequireFromString(tt.amount))

			if !outstanding.Equal(decimal.RequireFromString(tt.wantOutstanding)) {
				t.Fatalf("outstanding = %s, want %s", outstanding, tt.wantOutstanding)
			}
			if !applied.Equal(decimal.RequireFromString(tt.wantApplied)) {
				t.Fatalf("applied = %s, want %s", applied, tt.wantApplied)
			}
			if status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", status, tt.wantStatus)
			}
		})
	}
}

func TestLoanRepayable(t *testing.T) {
	t.Parallel()

	for status, want := range map[LoanStatus]bool{
		LoanStatusPending:  true,
		LoanStatusApproved: true,
		LoanStatusPaid:     false,
		LoanStatusRejected: false,
	} {
		loan := &Loan{Status: status}
		if got := loan.Repayable(); got != want {
			t.Fatalf("%s: Repayable() = %v, want %v", status, got, want)
		}
	}
}
