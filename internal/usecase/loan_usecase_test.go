package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
	"github.com/iho/saccopay/internal/usecase/mocks"
)

func TestLoanUseCase_ApplyForLoan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     usecase.ApplyLoanInput
		errorType error
	}{
		{
			name:  "valid application",
			input: usecase.ApplyLoanInput{UserID: memberID, Principal: decimal.NewFromInt(10000), TermMonths: 12, Purpose: "  dairy cow  "},
		},
		{
			name:      "principal below minimum",
			input:     usecase.ApplyLoanInput{UserID: memberID, Principal: decimal.NewFromInt(500), TermMonths: 12},
			errorType: domain.ErrInvalidPrincipal,
		},
		{
			name:      "zero term",
			input:     usecase.ApplyLoanInput{UserID: memberID, Principal: decimal.NewFromInt(5000)},
			errorType: domain.ErrInvalidTerm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := mocks.NewMemoryStore()
			uc := usecase.NewLoanUseCase(store, store.Loans(), store.Outbox(), store)

			loan, err := uc.ApplyForLoan(context.Background(), tt.input)
			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if loan.Status != domain.LoanStatusPending || !loan.Outstanding.Equal(loan.Principal) {
				t.Fatalf("unexpected loan %+v", loan)
			}
			if loan.Purpose != "dairy cow" {
				t.Fatalf("expected trimmed purpose, got %q", loan.Purpose)
			}
			if _, ok := store.Loan(loan.ID); !ok {
				t.Fatal("expected loan to be stored")
			}
			if events := store.Events(); len(events) != 1 || events[0].EventType != domain.EventTypeLoanCreated {
				t.Fatalf("expected loan.created event, got %+v", events)
			}
		})
	}
}

func TestLoanUseCase_ListLoansNewestFirst(t *testing.T) {
	t.Parallel()

	store := mocks.NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		store.SeedLoan(domain.Loan{ID: id, UserID: memberID, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	store.SeedLoan(domain.Loan{ID: "foreign", UserID: otherMember, CreatedAt: base})

	uc := usecase.NewLoanUseCase(store, store.Loans(), store.Outbox(), store)

	loans, err := uc.ListLoans(context.Background(), memberID, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loans) != 3 || loans[0].ID != "new" || loans[2].ID != "old" {
		t.Fatalf("unexpected order: %v", loanIDs(loans))
	}

	if _, err := uc.GetLoan(context.Background(), otherMember, "new"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTransactionUseCase_ListTransactions(t *testing.T) {
	t.Parallel()

	store := mocks.NewMemoryStore()
	savings := usecase.NewSavingsUseCase(store, store.Savings(), store.Transactions(), store.Outbox(), store, nil)
	for _, amount := range []int64{100, 200, 300} {
		if _, err := savings.Deposit(context.Background(), memberID, decimal.NewFromInt(amount)); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
	}

	uc := usecase.NewTransactionUseCase(store.Transactions())

	rows, err := uc.ListTransactions(context.Background(), memberID, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || !rows[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected newest two rows, got %+v", rows)
	}
}

func loanIDs(loans []*domain.Loan) []string {
	ids := make([]string, 0, len(loans))
	for _, l := range loans {
		ids = append(ids, l.ID)
	}
	return ids
}
