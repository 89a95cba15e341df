package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
)

// PaymentHandler answers payment status queries.
type PaymentHandler struct {
	payments PaymentService
	logger   zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// Status returns the status of one of the caller's payments.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	status, err := h.payments.GetStatus(r.Context(), user.ID, chi.URLParam(r, "checkoutRequestID"))
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to get payment status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentStatusResponse{Status: status})
}
