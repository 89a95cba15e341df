package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
)

// LoanHandler handles loan applications and listings.
type LoanHandler struct {
	loans  LoanService
	logger zerolog.Logger
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loans LoanService, logger zerolog.Logger) *LoanHandler {
	return &LoanHandler{loans: loans, logger: logger}
}

// Apply records a pending loan for the caller.
func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.ApplyLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := h.loans.ApplyForLoan(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to apply for loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanEnvelope{Loan: dto.LoanFromDomain(loan)})
}

// List returns the caller's loans, newest first.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)

	loans, err := h.loans.ListLoans(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to list loans", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoansFromDomain(loans))
}

// Get returns one of the caller's loans.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	loan, err := h.loans.GetLoan(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to get loan", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}
