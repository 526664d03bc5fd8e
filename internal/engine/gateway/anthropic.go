package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cloudwego/eino/schema"

	"github.com/petaldesk/engine/internal/engine/model"
)

// AnthropicProvider is a tertiary tier backed by the Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	cfg    model.AnthropicModelConfig
}

// NewAnthropicProvider builds the provider from config. An empty API key
// falls back to the SDK's environment resolution.
func NewAnthropicProvider(cfg model.AnthropicModelConfig) *AnthropicProvider {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...), cfg: cfg}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.cfg.Model),
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: anthropic.Float(p.cfg.Temperature),
		Messages:    buildAnthropicMessages(msgs),
	}
	if sys := collectSystemText(msgs); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return schema.AssistantMessage(sb.String(), nil), nil
}

// collectSystemText joins system messages; Anthropic takes them out of band.
func collectSystemText(msgs []*schema.Message) string {
	var parts []string
	for _, m := range msgs {
		if m != nil && m.Role == schema.System && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func buildAnthropicMessages(msgs []*schema.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || m.Role == schema.System || m.Content == "" {
			continue
		}
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == schema.Assistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

var _ Provider = (*AnthropicProvider)(nil)
