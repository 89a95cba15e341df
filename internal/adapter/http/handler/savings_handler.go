package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
)

// SavingsHandler handles deposits, balances and the member's ledger rows.
type SavingsHandler struct {
	savings      SavingsService
	transactions TransactionService
	logger       zerolog.Logger
}

// NewSavingsHandler creates a new SavingsHandler.
func NewSavingsHandler(savings SavingsService, transactions TransactionService, logger zerolog.Logger) *SavingsHandler {
	return &SavingsHandler{savings: savings, transactions: transactions, logger: logger}
}

// Deposit adds to the caller's savings.
func (h *SavingsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	savings, err := h.savings.Deposit(r.Context(), user.ID, req.Amount)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to deposit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DepositResponse{Success: true, Balance: savings.Balance})
}

// Balance returns the caller's savings balance.
func (h *SavingsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	balance, err := h.savings.GetBalance(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to get savings", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SavingsResponse{Balance: balance})
}

// Transactions lists the caller's ledger rows, newest first.
func (h *SavingsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)

	txns, err := h.transactions.ListTransactions(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
