package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
	"github.com/iho/saccopay/internal/usecase/mocks"
)

func newSavingsUseCase(store *mocks.MemoryStore) *usecase.SavingsUseCase {
	return usecase.NewSavingsUseCase(store, store.Savings(), store.Transactions(), store.Outbox(), store, nil)
}

func TestSavingsUseCase_Deposit(t *testing.T) {
	t.Parallel()

	store := mocks.NewMemoryStore()
	uc := newSavingsUseCase(store)

	savings, err := uc.Deposit(context.Background(), memberID, decimal.NewFromInt(1500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !savings.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("balance = %s, want 1500", savings.Balance)
	}

	balance, err := uc.GetBalance(context.Background(), memberID)
	if err != nil || !balance.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("GetBalance = %s err=%v", balance, err)
	}

	rows := store.LedgerRows()
	if len(rows) != 1 || rows[0].Type != domain.TransactionTypeDeposit || rows[0].LoanID != nil {
		t.Fatalf("expected one deposit row, got %+v", rows)
	}

	events := store.Events()
	if len(events) != 1 || events[0].EventType != domain.EventTypeSavingsDeposited {
		t.Fatalf("expected savings.deposited event, got %+v", events)
	}
}

func TestSavingsUseCase_DepositRejectsNonPositive(t *testing.T) {
	t.Parallel()

	uc := newSavingsUseCase(mocks.NewMemoryStore())

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		if _, err := uc.Deposit(context.Background(), memberID, amount); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("amount %s: expected validation error, got %v", amount, err)
		}
	}
}

func TestSavingsUseCase_ConcurrentDepositsLoseNothing(t *testing.T) {
	t.Parallel()

	store := mocks.NewMemoryStore()
	uc := newSavingsUseCase(store)

	const deposits = 20
	var wg sync.WaitGroup
	for i := 0; i < deposits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Deposit(context.Background(), memberID, decimal.NewFromInt(100)); err != nil {
				t.Errorf("deposit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, err := uc.GetBalance(context.Background(), memberID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100 * deposits)) {
		t.Fatalf("balance = %s, want %d", balance, 100*deposits)
	}
}

func TestSavingsUseCase_FailedDepositLeavesNoTrace(t *testing.T) {
	t.Parallel()

	store := mocks.NewMemoryStore()
	store.FailNext("transaction.create", 1)
	uc := newSavingsUseCase(store)

	if _, err := uc.Deposit(context.Background(), memberID, decimal.NewFromInt(100)); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	balance, _ := uc.GetBalance(context.Background(), memberID)
	if !balance.IsZero() {
		t.Fatalf("expected balance rollback, got %s", balance)
	}
}
