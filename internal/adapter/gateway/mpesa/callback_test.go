package mpesa

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/saccopay/internal/domain"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		checkoutID  string
		resultCode  int
		resultDesc  string
		amount      string
		receipt     string
		phone       string
		wantSuccess bool
	}{
		{
			name: "nested success",
			body: `{"Body":{"stkCallback":{
				"MerchantRequestID":"29115-34620561-1",
				"CheckoutRequestID":"ws_CO_1",
				"ResultCode":0,
				"ResultDesc":"The service request is processed successfully.",
				"CallbackMetadata":{"Item":[
					{"Name":"Amount","Value":1.00},
					{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"},
					{"Name":"Balance"},
					{"Name":"TransactionDate","Value":20191219102115},
					{"Name":"PhoneNumber","Value":254708374149}
				]}}}}`,
			checkoutID:  "ws_CO_1",
			resultCode:  0,
			resultDesc:  "The service request is processed successfully.",
			amount:      "1",
			receipt:     "NLJ7RT61SV",
			phone:       "254708374149",
			wantSuccess: true,
		},
		{
			name:       "nested cancelled",
			body:       `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_2","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`,
			checkoutID: "ws_CO_2",
			resultCode: 1032,
			resultDesc: "Request cancelled by user",
		},
		{
			name:        "flat camel case with string values",
			body:        `{"checkoutRequestID":"ws_CO_3","resultCode":"0","resultDesc":"ok","callbackMetadata":{"item":[{"name":"amount","value":"250.50"},{"name":"receipt","value":"R1"},{"name":"phoneNumber","value":"254712345678"}]}}`,
			checkoutID:  "ws_CO_3",
			resultCode:  0,
			resultDesc:  "ok",
			amount:      "250.5",
			receipt:     "R1",
			phone:       "254712345678",
			wantSuccess: true,
		},
		{
			name:       "missing result code is a failure",
			body:       `{"CheckoutRequestID":"ws_CO_4"}`,
			checkoutID: "ws_CO_4",
			resultCode: resultCodeMissing,
		},
		{
			name: "metadata names matched by fragment",
			body: `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_6","ResultCode":0,"CallbackMetadata":{"Item":[
				{"Name":"TransactionAmount","Value":500},
				{"Name":"MpesaReceiptNumberV2","Value":"QKX1"},
				{"Name":"MSISDNPhoneNumber","Value":254711000111}
			]}}}}`,
			checkoutID:  "ws_CO_6",
			resultCode:  0,
			amount:      "500",
			receipt:     "QKX1",
			phone:       "254711000111",
			wantSuccess: true,
		},
		{
			name:        "metadata names in upper case",
			body:        `{"CheckoutRequestID":"ws_CO_7","ResultCode":0,"CallbackMetadata":{"Item":[{"Name":"AMOUNT","Value":"75"},{"Name":"MPESARECEIPTNUMBER","Value":"QKX2"}]}}`,
			checkoutID:  "ws_CO_7",
			resultCode:  0,
			amount:      "75",
			receipt:     "QKX2",
			wantSuccess: true,
		},
		{
			name:       "fractional result code is a failure",
			body:       `{"CheckoutRequestID":"ws_CO_8","ResultCode":0.5}`,
			checkoutID: "ws_CO_8",
			resultCode: resultCodeMissing,
		},
		{
			name:       "missing checkout id",
			body:       `{"Body":{"stkCallback":{"ResultCode":0}}}`,
			resultCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCallback([]byte(tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.checkoutID, got.CheckoutRequestID)
			assert.Equal(t, tt.resultCode, got.ResultCode)
			assert.Equal(t, tt.resultDesc, got.ResultDesc)
			assert.Equal(t, tt.wantSuccess, got.Succeeded())

			if tt.amount == "" {
				assert.Nil(t, got.Amount)
			} else {
				require.NotNil(t, got.Amount)
				assert.True(t, decimal.RequireFromString(tt.amount).Equal(*got.Amount), "amount %s", got.Amount)
			}
			if tt.receipt == "" {
				assert.Nil(t, got.Receipt)
			} else {
				require.NotNil(t, got.Receipt)
				assert.Equal(t, tt.receipt, *got.Receipt)
			}
			if tt.phone == "" {
				assert.Nil(t, got.Phone)
			} else {
				require.NotNil(t, got.Phone)
				assert.Equal(t, tt.phone, *got.Phone)
			}
		})
	}
}

func TestParseCallbackMissingIDFailsValidation(t *testing.T) {
	got, err := ParseCallback([]byte(`{"ResultCode":0}`))
	require.NoError(t, err)
	assert.ErrorIs(t, got.Validate(), domain.ErrMissingCorrelationID)
}

func TestParseCallbackMalformed(t *testing.T) {
	_, err := ParseCallback([]byte(`{not json`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
