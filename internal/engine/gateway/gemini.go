package gateway

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// GeminiProvider is the primary tier, backed by the Gemini API through the
// Eino chat model component.
type GeminiProvider struct {
	cm *gemini.ChatModel
}

// GeminiClientConfig holds what is needed to construct the shared client.
type GeminiClientConfig struct {
	APIKey  string
	BaseURL string
}

// NewGeminiClient builds the genai client shared by Gemini-backed components.
func NewGeminiClient(ctx context.Context, cfg GeminiClientConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiProvider wraps a Gemini chat model as a chain provider.
func NewGeminiProvider(ctx context.Context, client *genai.Client, cfg model.GeminiModelConfig) (*GeminiProvider, error) {
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("error creating Gemini chat model: %w", err)
	}
	return &GeminiProvider{cm: cm}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	return p.cm.Generate(ctx, msgs)
}

var _ Provider = (*GeminiProvider)(nil)
