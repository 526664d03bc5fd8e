package gateway

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/petaldesk/engine/internal/engine/model"
)

//go:embed template/understand_prompt.txt
var understandSystemPrompt string

//go:embed template/generate_prompt.txt
var generateSystemPrompt string

// renderUnderstandSystem renders the intent-analysis system prompt via the
// Eino prompt component. Known tokens are replaced up front so JSON braces in
// the template survive formatting.
func renderUnderstandSystem(ctx context.Context, voice model.VoiceConfig) (string, error) {
	intentTypes := []string{
		string(model.IntentGreeting),
		string(model.IntentProductSearch),
		string(model.IntentPurchase),
		string(model.IntentSupport),
		string(model.IntentComplaint),
		string(model.IntentChitchat),
		string(model.IntentUnknown),
	}
	content := strings.NewReplacer(
		"{business_type}", voice.BusinessType,
		"{business_name}", voice.BusinessName,
		"{intent_types}", `"`+strings.Join(intentTypes, `", "`)+`"`,
	).Replace(understandSystemPrompt)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("understand prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("understand prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// renderGenerateSystem renders the reply-generation system prompt.
func renderGenerateSystem(ctx context.Context, voice model.VoiceConfig, pc PromptContext) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(generateSystemPrompt),
	)
	vars := map[string]any{
		"BusinessType":   voice.BusinessType,
		"BusinessName":   voice.BusinessName,
		"IntentType":     string(pc.Intent.Type),
		"Quality":        string(pc.Quality),
		"WasSearch":      pc.Intent.RequiresSearch,
		"ProductContext": renderProductContext(pc.Candidates),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("generate prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("generate prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func renderProductContext(cands []model.ProductCandidate) string {
	if len(cands) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range cands {
		fmt.Fprintf(&sb, "- %s (%s) %.2f\n", c.Name, c.Category, c.Price)
	}
	return strings.TrimRight(sb.String(), "\n")
}
