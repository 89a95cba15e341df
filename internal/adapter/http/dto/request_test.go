package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/usecase"
)

func TestInitiateRepaymentRequest_DecodesAmount(t *testing.T) {
	tests := []struct {
		name string
		body string
		want decimal.Decimal
	}{
		{"number", `{"amount": 1500.5, "phone": "254712345678"}`, decimal.RequireFromString("1500.5")},
		{"string", `{"amount": "1500.50", "phone": "254712345678"}`, decimal.RequireFromString("1500.5")},
		{"missing", `{"phone": "254712345678"}`, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req InitiateRepaymentRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got := req.ToUseCaseInput("user-1", "loan-1")
			want := usecase.InitiateRepaymentInput{UserID: "user-1", LoanID: "loan-1", Phone: "254712345678", Amount: tt.want}

			if got.UserID != want.UserID || got.LoanID != want.LoanID || got.Phone != want.Phone || !got.Amount.Equal(want.Amount) {
				t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestApplyLoanRequest_ToUseCaseInput(t *testing.T) {
	var req ApplyLoanRequest
	if err := json.Unmarshal([]byte(`{"principal": 5000, "term_months": 6, "purpose": "school fees"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := req.ToUseCaseInput("user-1")
	if got.UserID != "user-1" || got.TermMonths != 6 || got.Purpose != "school fees" || !got.Principal.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected input %+v", got)
	}
}

func TestRegisterRequest_ToUseCaseInput(t *testing.T) {
	req := &RegisterRequest{Name: "Jane", Email: "jane@example.com", Phone: "254712345678", Password: "secret123"}

	got := req.ToUseCaseInput()
	want := usecase.RegisterInput{Name: "Jane", Email: "jane@example.com", Phone: "254712345678", Password: "secret123"}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}
