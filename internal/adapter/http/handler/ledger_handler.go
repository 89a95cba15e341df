package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
	"github.com/iho/saccopay/internal/usecase"
)

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledger LedgerService
	logger zerolog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService, logger zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, logger: logger}
}

// CheckConsistency verifies loan balances against repayment rows.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			h.logger.Warn().Int("discrepancies", len(report.Discrepancies)).Msg("ledger inconsistent")
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromReport(report))
			return
		}
		writeDomainError(w, r, h.logger, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}
