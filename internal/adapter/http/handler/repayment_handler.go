package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
)

// RepaymentHandler starts loan repayments.
type RepaymentHandler struct {
	repayments RepaymentService
	logger     zerolog.Logger
}

// NewRepaymentHandler creates a new RepaymentHandler.
func NewRepaymentHandler(repayments RepaymentService, logger zerolog.Logger) *RepaymentHandler {
	return &RepaymentHandler{repayments: repayments, logger: logger}
}

// Initiate sends an STK push for the loan in the path.
func (h *RepaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.InitiateRepaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.repayments.InitiateRepayment(r.Context(), req.ToUseCaseInput(user.ID, loanID))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to initiate repayment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RepaymentFromOutput(out))
}
