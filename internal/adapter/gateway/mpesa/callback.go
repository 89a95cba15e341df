package mpesa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/saccopay/internal/domain"
)

// resultCodeMissing marks a callback that carried no result code. It is
// treated as a failed charge.
const resultCodeMissing = -1

// ParseCallback normalizes a provider callback body. The provider wraps the
// result in Body.stkCallback; relays and simulators also post it flat, with
// either PascalCase or camelCase keys.
func ParseCallback(body []byte) (domain.CallbackResult, error) {
	var root map[string]any

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		return domain.CallbackResult{}, fmt.Errorf("%w: malformed callback body: %v", domain.ErrValidation, err)
	}

	cb := root
	if b, ok := field(root, "Body").(map[string]any); ok {
		if stk, ok := field(b, "stkCallback").(map[string]any); ok {
			cb = stk
		}
	}

	result := domain.CallbackResult{
		CheckoutRequestID: asString(field(cb, "CheckoutRequestID")),
		MerchantRequestID: asString(field(cb, "MerchantRequestID")),
		ResultDesc:        asString(field(cb, "ResultDesc")),
		ResultCode:        resultCodeMissing,
	}

	if code, ok := asInt(field(cb, "ResultCode")); ok {
		result.ResultCode = code
	}

	if meta, ok := field(cb, "CallbackMetadata").(map[string]any); ok {
		items, _ := field(meta, "Item").([]any)
		applyMetadata(&result, items)
	}

	return result, nil
}

func applyMetadata(result *domain.CallbackResult, items []any) {
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		value := field(item, "Value")
		if value == nil {
			continue
		}

		// Providers vary the item names, so match on the name fragment.
		name := strings.ToLower(asString(field(item, "Name")))
		switch {
		case strings.Contains(name, "amount"):
			if amount, err := decimal.NewFromString(asString(value)); err == nil {
				result.Amount = &amount
			}
		case strings.Contains(name, "receipt"):
			if receipt := asString(value); receipt != "" {
				result.Receipt = &receipt
			}
		case strings.Contains(name, "phonenumber"):
			if phone := asString(value); phone != "" {
				result.Phone = &phone
			}
		}
	}
}

// field looks a key up by its PascalCase name, then its camelCase form.
func field(m map[string]any, name string) any {
	if v, ok := m[name]; ok {
		return v
	}
	camel := strings.ToLower(name[:1]) + name[1:]
	if v, ok := m[camel]; ok {
		return v
	}
	upper := strings.ToUpper(name[:1]) + name[1:]
	return m[upper]
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
