package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/saccopay/internal/domain"
)

// FakeGateway is a scriptable usecase.PaymentGateway. By default every push
// succeeds with a fresh checkout request id.
type FakeGateway struct {
	mu       sync.Mutex
	calls    []domain.STKPushRequest
	next     int
	Err      error
	NoID     bool
	OnPush   func(req domain.STKPushRequest)
	IDPrefix string
}

// STKPush records the request and returns the scripted result.
func (g *FakeGateway) STKPush(ctx context.Context, req domain.STKPushRequest) (*domain.STKPushResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.next++
	n := g.next
	onPush := g.OnPush
	g.mu.Unlock()

	if onPush != nil {
		onPush(req)
	}

	if g.Err != nil {
		return nil, g.Err
	}

	result := &domain.STKPushResult{
		MerchantRequestID:   fmt.Sprintf("mr-%d", n),
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}
	if !g.NoID {
		prefix := g.IDPrefix
		if prefix == "" {
			prefix = "ws_CO_"
		}
		id := fmt.Sprintf("%s%d", prefix, n)
		result.CheckoutRequestID = &id
	}

	return result, nil
}

// Calls returns the requests the gateway received.
func (g *FakeGateway) Calls() []domain.STKPushRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.STKPushRequest(nil), g.calls...)
}
