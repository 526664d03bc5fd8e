package gateway

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Provider is one tier of the fallback chain. Implementations must be safe
// for concurrent use and should not retry internally; the gateway owns the
// fallback policy.
type Provider interface {
	// Name identifies the provider in attempt logs.
	Name() string
	// Generate runs one completion over the given messages.
	Generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error)
}
