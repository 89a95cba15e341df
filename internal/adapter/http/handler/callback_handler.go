package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/logger"
)

// CallbackParser normalizes a raw provider callback body.
type CallbackParser func(body []byte) (domain.CallbackResult, error)

// CallbackHandler receives provider payment confirmations.
type CallbackHandler struct {
	reconciler CallbackService
	parse      CallbackParser
	logger     zerolog.Logger
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(reconciler CallbackService, parse CallbackParser, logger zerolog.Logger) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler, parse: parse, logger: logger}
}

var received = dto.CallbackAck{Result: "received"}

// Handle acknowledges every callback it could correlate, including unknown
// and already settled payments, so the provider stops redelivering. Only a
// missing correlation id is rejected; storage failures answer 500 so the
// provider retries.
func (h *CallbackHandler) Handle(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context(), h.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cb, err := h.parse(body)
	if err != nil {
		log.Warn().Err(err).Msg("unparseable callback")
		writeError(w, http.StatusBadRequest, "missing checkoutRequestID", "")
		return
	}

	outcome, err := h.reconciler.HandleCallback(r.Context(), cb)
	switch {
	case err == nil:
		log.Debug().Str("checkout_request_id", cb.CheckoutRequestID).Str("outcome", string(outcome)).Msg("callback acknowledged")
		writeJSON(w, http.StatusOK, received)
	case errors.Is(err, domain.ErrMissingCorrelationID):
		log.Warn().Msg("callback without checkout request id")
		writeError(w, http.StatusBadRequest, "missing checkoutRequestID", "")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusOK, received)
	default:
		log.Error().Err(err).Str("checkout_request_id", cb.CheckoutRequestID).Msg("callback reconciliation failed")
		writeError(w, http.StatusInternalServerError, "server error", "")
	}
}
