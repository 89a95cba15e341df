package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
	"github.com/iho/saccopay/internal/usecase/mocks"
)

const (
	memberID    = "user-1"
	otherMember = "user-2"
	memberPhone = "254712345678"
)

type harness struct {
	store      *mocks.MemoryStore
	gateway    *mocks.FakeGateway
	repayments *usecase.RepaymentUseCase
	reconciler *usecase.ReconciliationUseCase
	payments   *usecase.PaymentUseCase
	ledger     *usecase.LedgerUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := mocks.NewMemoryStore()
	gateway := &mocks.FakeGateway{}
	log := zerolog.Nop()

	return &harness{
		store:   store,
		gateway: gateway,
		repayments: usecase.NewRepaymentUseCase(
			store, store.Loans(), store.Payments(), store.Outbox(), gateway, store, log, nil,
		),
		reconciler: usecase.NewReconciliationUseCase(
			store, store.Payments(), store.Loans(), store.Transactions(), store.Outbox(), store, log, nil,
		),
		payments: usecase.NewPaymentUseCase(store.Payments(), nil, 0, log),
		ledger:   usecase.NewLedgerUseCase(store.Ledger()),
	}
}

func (h *harness) seedLoan(id string, principal, outstanding int64) {
	status := domain.LoanStatusApproved
	if outstanding == 0 {
		status = domain.LoanStatusPaid
	}
	h.store.SeedLoan(domain.Loan{
		ID:          id,
		UserID:      memberID,
		Principal:   decimal.NewFromInt(principal),
		Outstanding: decimal.NewFromInt(outstanding),
		TermMonths:  12,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
}

func (h *harness) initiate(t *testing.T, loanID string, amount int64) string {
	t.Helper()

	out, err := h.repayments.InitiateRepayment(context.Background(), usecase.InitiateRepaymentInput{
		UserID: memberID,
		LoanID: loanID,
		Phone:  memberPhone,
		Amount: decimal.NewFromInt(amount),
	})
	if err != nil {
		t.Fatalf("initiate repayment failed: %v", err)
	}
	if out.CheckoutRequestID == nil {
		t.Fatal("expected checkout request id")
	}
	return *out.CheckoutRequestID
}

func successCallback(checkoutRequestID string, amount int64) domain.CallbackResult {
	received := decimal.NewFromInt(amount)
	receipt := "QKT" + checkoutRequestID
	phone := memberPhone
	return domain.CallbackResult{
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
		Amount:            &received,
		Receipt:           &receipt,
		Phone:             &phone,
	}
}

func failedCallback(checkoutRequestID string) domain.CallbackResult {
	return domain.CallbackResult{
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	}
}

func requireLoan(t *testing.T, store *mocks.MemoryStore, id string, outstanding int64, status domain.LoanStatus) {
	t.Helper()

	loan, ok := store.Loan(id)
	if !ok {
		t.Fatalf("loan %s not found", id)
	}
	if !loan.Outstanding.Equal(decimal.NewFromInt(outstanding)) {
		t.Fatalf("loan %s outstanding = %s, want %d", id, loan.Outstanding, outstanding)
	}
	if loan.Status != status {
		t.Fatalf("loan %s status = %s, want %s", id, loan.Status, status)
	}
}

func repaymentRows(store *mocks.MemoryStore) []domain.Transaction {
	var rows []domain.Transaction
	for _, row := range store.LedgerRows() {
		if row.Type == domain.TransactionTypeRepayment {
			rows = append(rows, row)
		}
	}
	return rows
}

func eventTypes(store *mocks.MemoryStore) []string {
	var types []string
	for _, e := range store.Events() {
		types = append(types, e.EventType)
	}
	return types
}
