package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/usecase"
)

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	tests := []struct {
		name     string
		report   *usecase.ConsistencyReport
		err      error
		wantCode int
	}{
		{"consistent", &usecase.ConsistencyReport{LoansChecked: 2}, nil, http.StatusOK},
		{
			"inconsistent",
			&usecase.ConsistencyReport{LoansChecked: 2, Discrepancies: []usecase.LoanDiscrepancy{{LoanID: "l1", Reason: "paid loan has outstanding balance"}}},
			fmt.Errorf("%w: 1 loan(s) out of balance", usecase.ErrInconsistentLedger),
			http.StatusConflict,
		},
		{"storage failure", nil, domain.Persistence("loan balances", errors.New("timeout")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLedgerHandler(&ledgerServiceStub{
				checkFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) { return tt.report, tt.err },
			}, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.report != nil {
				var resp dto.ConsistencyResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Consistent != (tt.err == nil) || resp.LoansChecked != 2 {
					t.Fatalf("unexpected response %+v", resp)
				}
			}
		})
	}
}

func TestPaymentHandler_Status(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceStub{
		statusFn: func(ctx context.Context, userID, checkoutRequestID string) (domain.PaymentStatus, error) {
			if checkoutRequestID == "ws_CO_1" && userID == "u1" {
				return domain.PaymentStatusSuccess, nil
			}
			return domain.PaymentStatusNotFound, nil
		},
	}, zerolog.Nop())

	tests := []struct {
		member string
		want   domain.PaymentStatus
	}{
		{"u1", domain.PaymentStatusSuccess},
		{"u2", domain.PaymentStatusNotFound},
	}

	for _, tt := range tests {
		req := asMember(withURLParam(httptest.NewRequest(http.MethodGet, "/payments/ws_CO_1/status", nil), "checkoutRequestID", "ws_CO_1"), tt.member)
		rec := httptest.NewRecorder()
		h.Status(rec, req)

		var resp dto.PaymentStatusResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if rec.Code != http.StatusOK || resp.Status != tt.want {
			t.Fatalf("member %s: got %d %s, want %s", tt.member, rec.Code, resp.Status, tt.want)
		}
	}
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(context.Context) error { return p.err }

func TestHealthHandler_Readiness(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rec := httptest.NewRecorder()
	NewHealthHandler(pingerStub{}, client).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(pingerStub{err: errors.New("down")}, client).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when postgres is down, got %d", rec.Code)
	}

	mr.Close()
	rec = httptest.NewRecorder()
	NewHealthHandler(pingerStub{}, client).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when redis is down, got %d", rec.Code)
	}
}
