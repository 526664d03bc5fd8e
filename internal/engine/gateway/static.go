package gateway

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// StaticProvider is the degraded last tier of a chain: it answers every
// request with a fixed reply and never fails. Useful as the terminal
// generation tier and in tests.
type StaticProvider struct {
	name  string
	reply string
}

// NewStaticProvider builds a static provider with the given reply.
func NewStaticProvider(name, reply string) *StaticProvider {
	return &StaticProvider{name: name, reply: reply}
}

func (p *StaticProvider) Name() string { return p.name }

func (p *StaticProvider) Generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	return schema.AssistantMessage(p.reply, nil), nil
}

var _ Provider = (*StaticProvider)(nil)
