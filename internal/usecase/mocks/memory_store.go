package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
)

// ErrInjected is the driver error returned by injected failures.
var ErrInjected = errors.New("injected failure")

// MemoryStore is an in-memory ledger store implementing every repository
// port. Transactions work on a private copy of the state and are serialized,
// which gives the same guarantees as row locks in Postgres: a transaction
// that commits is visible as a whole, one that rolls back leaves no trace.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *memState

	failMu   sync.Mutex
	failures map[string]int

	seq atomic.Int64
}

type memState struct {
	users        map[string]domain.User
	loans        map[string]domain.Loan
	payments     map[string]domain.Payment
	savings      map[string]domain.Savings
	transactions []domain.Transaction
	outbox       []domain.OutboxEvent
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memState{
			users:    make(map[string]domain.User),
			loans:    make(map[string]domain.Loan),
			payments: make(map[string]domain.Payment),
			savings:  make(map[string]domain.Savings),
		},
		failures: make(map[string]int),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		users:        make(map[string]domain.User, len(s.users)),
		loans:        make(map[string]domain.Loan, len(s.loans)),
		payments:     make(map[string]domain.Payment, len(s.payments)),
		savings:      make(map[string]domain.Savings, len(s.savings)),
		transactions: append([]domain.Transaction(nil), s.transactions...),
		outbox:       append([]domain.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.savings {
		c.savings[k] = v
	}
	return c
}

// FailNext makes the next n calls of op fail with a persistence error.
// Ops: begin, commit, loan.create, loan.update, payment.create,
// payment.settle, payment.lock, transaction.create, savings.deposit,
// outbox.create, user.create.
func (m *MemoryStore) FailNext(op string, n int) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failures[op] = n
}

func (m *MemoryStore) fail(op string) error {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	if m.failures[op] > 0 {
		m.failures[op]--
		return domain.Persistence(op, ErrInjected)
	}
	return nil
}

// Generate implements usecase.IDGenerator with a monotonically increasing sequence.
func (m *MemoryStore) Generate() string {
	return fmt.Sprintf("id-%06d", m.seq.Add(1))
}

// Begin implements usecase.TransactionManager.
func (m *MemoryStore) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.fail("begin"); err != nil {
		return nil, err
	}

	m.txMu.Lock()

	m.mu.RLock()
	snapshot := m.state.clone()
	m.mu.RUnlock()

	return &MemoryTx{store: m, state: snapshot}, nil
}

// MemoryTx is a transaction over a MemoryStore.
type MemoryTx struct {
	store *MemoryStore
	state *memState
	done  bool
}

// Commit publishes the transaction's writes.
func (t *MemoryTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	t.done = true
	defer t.store.txMu.Unlock()

	if err := t.store.fail("commit"); err != nil {
		return err
	}

	t.store.mu.Lock()
	t.store.state = t.state
	t.store.mu.Unlock()

	return nil
}

// Rollback discards the transaction's writes.
func (t *MemoryTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func stateOf(tx usecase.Transaction) *memState {
	return tx.(*MemoryTx).state
}

func (m *MemoryStore) read(fn func(s *memState)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.state)
}

// Loans returns the loan repository view of the store.
func (m *MemoryStore) Loans() *MemoryLoanRepository { return &MemoryLoanRepository{m} }

// Payments returns the payment repository view of the store.
func (m *MemoryStore) Payments() *MemoryPaymentRepository { return &MemoryPaymentRepository{m} }

// Transactions returns the ledger row repository view of the store.
func (m *MemoryStore) Transactions() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{m}
}

// Savings returns the savings repository view of the store.
func (m *MemoryStore) Savings() *MemorySavingsRepository { return &MemorySavingsRepository{m} }

// Users returns the user repository view of the store.
func (m *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{m} }

// Outbox returns the outbox repository view of the store.
func (m *MemoryStore) Outbox() *MemoryOutboxRepository { return &MemoryOutboxRepository{m} }

// Ledger returns the ledger repository view of the store.
func (m *MemoryStore) Ledger() *MemoryLedgerRepository { return &MemoryLedgerRepository{m} }

// SeedLoan stores loan as committed state.
func (m *MemoryStore) SeedLoan(loan domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.loans[loan.ID] = loan
}

// SeedPayment stores payment as committed state.
func (m *MemoryStore) SeedPayment(payment domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.payments[payment.ID] = payment
}

// SeedUser stores user as committed state.
func (m *MemoryStore) SeedUser(user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.users[user.ID] = user
}

// Loan returns the committed loan with id.
func (m *MemoryStore) Loan(id string) (domain.Loan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loan, ok := m.state.loans[id]
	return loan, ok
}

// PaymentByCheckout returns the committed payment with the correlation id.
func (m *MemoryStore) PaymentByCheckout(checkoutRequestID string) (domain.Payment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := findPayment(m.state, checkoutRequestID)
	if p == nil {
		return domain.Payment{}, false
	}
	return *p, true
}

// PaymentCount returns the number of committed payments.
func (m *MemoryStore) PaymentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.payments)
}

// LedgerRows returns the committed ledger rows in insertion order.
func (m *MemoryStore) LedgerRows() []domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Transaction(nil), m.state.transactions...)
}

// Events returns the committed outbox events in insertion order.
func (m *MemoryStore) Events() []domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.OutboxEvent(nil), m.state.outbox...)
}

// SavingsOf returns the committed savings row for userID.
func (m *MemoryStore) SavingsOf(userID string) (domain.Savings, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.state.savings[userID]
	return s, ok
}

func findPayment(s *memState, checkoutRequestID string) *domain.Payment {
	for _, p := range s.payments {
		if p.CheckoutRequestID != nil && *p.CheckoutRequestID == checkoutRequestID {
			p := p
			return &p
		}
	}
	return nil
}

// MemoryLoanRepository implements usecase.LoanRepository.
type MemoryLoanRepository struct{ m *MemoryStore }

func (r *MemoryLoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if err := r.m.fail("loan.create"); err != nil {
		return err
	}
	stateOf(tx).loans[loan.ID] = *loan
	return nil
}

func (r *MemoryLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	var (
		loan domain.Loan
		ok   bool
	)
	r.m.read(func(s *memState) { loan, ok = s.loans[id] })
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return &loan, nil
}

func (r *MemoryLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	loan, ok := stateOf(tx).loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return &loan, nil
}

func (r *MemoryLoanRepository) UpdateRepayment(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, status domain.LoanStatus, updatedAt time.Time) error {
	if err := r.m.fail("loan.update"); err != nil {
		return err
	}
	s := stateOf(tx)
	loan, ok := s.loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if outstanding.IsNegative() || outstanding.GreaterThan(loan.Principal) {
		return domain.Persistence("loan.update", fmt.Errorf("outstanding %s violates check constraint", outstanding))
	}
	loan.Outstanding = outstanding
	loan.Status = status
	loan.UpdatedAt = updatedAt
	s.loans[id] = loan
	return nil
}

func (r *MemoryLoanRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	r.m.read(func(s *memState) {
		for _, l := range s.loans {
			if l.UserID == userID {
				l := l
				loans = append(loans, &l)
			}
		}
	})
	sort.Slice(loans, func(i, j int) bool { return loans[i].CreatedAt.After(loans[j].CreatedAt) })
	return page(loans, limit, offset), nil
}

// MemoryPaymentRepository implements usecase.PaymentRepository.
type MemoryPaymentRepository struct{ m *MemoryStore }

func (r *MemoryPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if err := r.m.fail("payment.create"); err != nil {
		return err
	}
	s := stateOf(tx)
	if payment.CheckoutRequestID != nil && findPayment(s, *payment.CheckoutRequestID) != nil {
		return domain.Persistence("payment.create", errors.New("duplicate checkout_request_id"))
	}
	s.payments[payment.ID] = *payment
	return nil
}

func (r *MemoryPaymentRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Payment, error) {
	var p *domain.Payment
	r.m.read(func(s *memState) { p = findPayment(s, checkoutRequestID) })
	if p == nil {
		return nil, domain.ErrPaymentNotFound
	}
	return p, nil
}

func (r *MemoryPaymentRepository) GetByCheckoutRequestIDForUpdate(ctx context.Context, tx usecase.Transaction, checkoutRequestID string) (*domain.Payment, error) {
	if err := r.m.fail("payment.lock"); err != nil {
		return nil, err
	}
	p := findPayment(stateOf(tx), checkoutRequestID)
	if p == nil {
		return nil, domain.ErrPaymentNotFound
	}
	return p, nil
}

func (r *MemoryPaymentRepository) Settle(ctx context.Context, tx usecase.Transaction, id string, settlement domain.Settlement) (bool, error) {
	if err := r.m.fail("payment.settle"); err != nil {
		return false, err
	}
	s := stateOf(tx)
	p, ok := s.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return false, nil
	}
	resultCode := settlement.ResultCode
	resultDesc := settlement.ResultDesc
	p.Status = settlement.Status
	p.AmountReceived = settlement.AmountReceived
	p.MpesaReceipt = settlement.MpesaReceipt
	p.ResultCode = &resultCode
	p.ResultDesc = &resultDesc
	if settlement.Phone != nil {
		p.Phone = *settlement.Phone
	}
	p.UpdatedAt = settlement.SettledAt
	s.payments[id] = p
	return true, nil
}

// MemoryTransactionRepository implements usecase.TransactionRepository.
type MemoryTransactionRepository struct{ m *MemoryStore }

func (r *MemoryTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if err := r.m.fail("transaction.create"); err != nil {
		return err
	}
	s := stateOf(tx)
	s.transactions = append(s.transactions, *txn)
	return nil
}

func (r *MemoryTransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	var rows []*domain.Transaction
	r.m.read(func(s *memState) {
		for i := len(s.transactions) - 1; i >= 0; i-- {
			if s.transactions[i].UserID == userID {
				t := s.transactions[i]
				rows = append(rows, &t)
			}
		}
	})
	return page(rows, limit, offset), nil
}

// MemorySavingsRepository implements usecase.SavingsRepository.
type MemorySavingsRepository struct{ m *MemoryStore }

func (r *MemorySavingsRepository) Open(ctx context.Context, tx usecase.Transaction, userID string, openedAt time.Time) error {
	s := stateOf(tx)
	if _, ok := s.savings[userID]; !ok {
		s.savings[userID] = domain.Savings{UserID: userID, Balance: decimal.Zero, UpdatedAt: openedAt}
	}
	return nil
}

func (r *MemorySavingsRepository) Deposit(ctx context.Context, tx usecase.Transaction, userID string, amount decimal.Decimal, updatedAt time.Time) (*domain.Savings, error) {
	if err := r.m.fail("savings.deposit"); err != nil {
		return nil, err
	}
	s := stateOf(tx)
	row, ok := s.savings[userID]
	if !ok {
		row = domain.Savings{UserID: userID, Balance: decimal.Zero}
	}
	row.Balance = row.Balance.Add(amount)
	row.Version++
	row.UpdatedAt = updatedAt
	s.savings[userID] = row
	return &row, nil
}

func (r *MemorySavingsRepository) GetByUser(ctx context.Context, userID string) (*domain.Savings, error) {
	var (
		row domain.Savings
		ok  bool
	)
	r.m.read(func(s *memState) { row, ok = s.savings[userID] })
	if !ok {
		return &domain.Savings{UserID: userID, Balance: decimal.Zero}, nil
	}
	return &row, nil
}

// MemoryUserRepository implements usecase.UserRepository.
type MemoryUserRepository struct{ m *MemoryStore }

func (r *MemoryUserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	if err := r.m.fail("user.create"); err != nil {
		return err
	}
	s := stateOf(tx)
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	r.m.read(func(s *memState) { user, ok = s.users[id] })
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var found *domain.User
	r.m.read(func(s *memState) {
		for _, u := range s.users {
			if u.Email == email {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}

// MemoryOutboxRepository implements usecase.OutboxRepository.
type MemoryOutboxRepository struct{ m *MemoryStore }

func (r *MemoryOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if err := r.m.fail("outbox.create"); err != nil {
		return err
	}
	s := stateOf(tx)
	s.outbox = append(s.outbox, *event)
	return nil
}

func (r *MemoryOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	r.m.read(func(s *memState) {
		for _, e := range s.outbox {
			if !e.Published && len(events) < limit {
				e := e
				events = append(events, &e)
			}
		}
	})
	return events, nil
}

func (r *MemoryOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.state.outbox {
		if r.m.state.outbox[i].ID == id {
			r.m.state.outbox[i].Published = true
			r.m.state.outbox[i].PublishedAt = &publishedAt
		}
	}
	return nil
}

func (r *MemoryOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	r.m.read(func(s *memState) {
		for _, e := range s.outbox {
			if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
				e := e
				events = append(events, &e)
			}
		}
	})
	return page(events, limit, offset), nil
}

func (r *MemoryOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	kept := r.m.state.outbox[:0]
	for _, e := range r.m.state.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.m.state.outbox = kept
	return nil
}

// MemoryLedgerRepository implements usecase.LedgerRepository.
type MemoryLedgerRepository struct{ m *MemoryStore }

func (r *MemoryLedgerRepository) LoanBalances(ctx context.Context) ([]domain.LoanBalance, error) {
	var balances []domain.LoanBalance
	r.m.read(func(s *memState) {
		repaid := make(map[string]decimal.Decimal)
		for _, t := range s.transactions {
			if t.Type == domain.TransactionTypeRepayment && t.LoanID != nil {
				repaid[*t.LoanID] = repaid[*t.LoanID].Add(t.Amount)
			}
		}
		for _, l := range s.loans {
			balances = append(balances, domain.LoanBalance{
				LoanID:      l.ID,
				Status:      l.Status,
				Principal:   l.Principal,
				Outstanding: l.Outstanding,
				Repaid:      repaid[l.ID],
			})
		}
	})
	sort.Slice(balances, func(i, j int) bool { return balances[i].LoanID < balances[j].LoanID })
	return balances, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
