package mpesa

import (
	"context"

	"github.com/iho/saccopay/internal/domain"
)

// DisabledGateway rejects every push. The server falls back to it when no
// provider credentials are configured so the rest of the API stays usable.
type DisabledGateway struct{}

// STKPush always fails with ErrNotConfigured.
func (DisabledGateway) STKPush(ctx context.Context, req domain.STKPushRequest) (*domain.STKPushResult, error) {
	return nil, domain.Gateway("stk push", ErrNotConfigured)
}
