package gateway

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petaldesk/engine/internal/engine/model"
)

// OpenAIProvider is a secondary tier backed by the Chat Completions API.
type OpenAIProvider struct {
	client openai.Client
	cfg    model.OpenAIModelConfig
}

// NewOpenAIProvider builds the provider from config. An empty API key falls
// back to the SDK's environment resolution.
func NewOpenAIProvider(cfg model.OpenAIModelConfig) *OpenAIProvider {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &OpenAIProvider{client: openai.NewClient(opts...), cfg: cfg}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildOpenAIMessages(msgs),
		Model:               p.cfg.Model,
		Temperature:         openai.Float(p.cfg.Temperature),
		MaxCompletionTokens: openai.Int(p.cfg.MaxTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices returned")
	}
	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

func buildOpenAIMessages(msgs []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.Assistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

var _ Provider = (*OpenAIProvider)(nil)
