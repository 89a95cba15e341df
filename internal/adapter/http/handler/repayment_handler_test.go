package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/adapter/http/dto"
	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestRepaymentHandler_Initiate(t *testing.T) {
	checkoutID := "ws_CO_1"

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"accepted", nil, http.StatusOK},
		{"invalid phone", domain.ErrInvalidPhone, http.StatusBadRequest},
		{"not owner", domain.ErrLoanNotOwned, http.StatusForbidden},
		{"unknown loan", domain.ErrLoanNotFound, http.StatusNotFound},
		{"gateway down", domain.Gateway("stk push", errors.New("connection refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.InitiateRepaymentInput
			h := NewRepaymentHandler(&repaymentServiceStub{
				initiateFn: func(ctx context.Context, input usecase.InitiateRepaymentInput) (*usecase.InitiateRepaymentOutput, error) {
					captured = input
					if tt.err != nil {
						return nil, tt.err
					}
					return &usecase.InitiateRepaymentOutput{CheckoutRequestID: &checkoutID, Message: usecase.RepaymentInitiatedMessage}, nil
				},
			}, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/loans/loan-1/repay/initiate", strings.NewReader(`{"amount":500,"phone":"254712345678"}`))
			req = asMember(withURLParam(req, "id", "loan-1"), "u1")
			rec := httptest.NewRecorder()

			h.Initiate(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if captured.UserID != "u1" || captured.LoanID != "loan-1" || !captured.Amount.Equal(decimal.NewFromInt(500)) {
				t.Fatalf("unexpected input %+v", captured)
			}

			if tt.err == nil {
				var resp dto.RepaymentResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.CheckoutRequestID == nil || *resp.CheckoutRequestID != checkoutID {
					t.Fatalf("unexpected response %+v", resp)
				}
			}
			if rec.Code == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "connection refused") {
				t.Fatalf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestRepaymentHandler_RequiresMember(t *testing.T) {
	h := NewRepaymentHandler(&repaymentServiceStub{}, zerolog.Nop())

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/loans/loan-1/repay/initiate", strings.NewReader(`{}`)), "id", "loan-1")
	rec := httptest.NewRecorder()

	h.Initiate(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
