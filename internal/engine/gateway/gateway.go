package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// FallbackReply is returned by Generate when every provider in the chain has
// been exhausted. A neutral apology, never an error.
const FallbackReply = "Sorry, I'm having trouble answering right now. Please try again in a moment, or reach out to the shop directly."

// Gateway exposes the two language model operations, each backed by an
// ordered chain of providers tried strictly in declared priority order. The
// first structurally valid response wins; there is no parallel racing.
type Gateway struct {
	understand []Provider
	generate   []Provider

	voice        model.VoiceConfig
	contextTurns int

	understandTimeout time.Duration
	generateTimeout   time.Duration
}

// New builds a gateway. The understand and generate chains may differ: a
// static tier makes sense for generation but not for structured analysis.
func New(cfg model.GatewayConfig, voice model.VoiceConfig, contextTurns int, understand, generate []Provider) *Gateway {
	g := &Gateway{
		understand:        understand,
		generate:          generate,
		voice:             voice,
		contextTurns:      contextTurns,
		understandTimeout: time.Duration(cfg.UnderstandTimeout) * time.Second,
		generateTimeout:   time.Duration(cfg.GenerateTimeout) * time.Second,
	}
	if g.understandTimeout <= 0 {
		g.understandTimeout = 6 * time.Second
	}
	if g.generateTimeout <= 0 {
		g.generateTimeout = 8 * time.Second
	}
	if g.contextTurns <= 0 {
		g.contextTurns = 10
	}
	return g
}

// PromptContext carries everything the generation prompt needs for one turn.
type PromptContext struct {
	Session    *model.Session
	Message    string
	Intent     model.IntentResult
	Candidates []model.ProductCandidate
	Quality    model.SearchQuality
}

// Understand produces a structured IntentResult for the message. Provider
// errors, timeouts and schema violations advance the chain; when the chain is
// exhausted the deterministic unknown result is returned. Never errors.
func (g *Gateway) Understand(ctx context.Context, message string, sess *model.Session) model.IntentResult {
	sys, err := renderUnderstandSystem(ctx, g.voice)
	if err != nil {
		logx.Error().Err(err).Msg("understand prompt render failed")
		return model.UnknownIntent()
	}
	msgs := []*schema.Message{
		schema.SystemMessage(sys),
		schema.UserMessage(buildUnderstandContext(sess, message, g.contextTurns)),
	}

	for _, p := range g.understand {
		out, ok := g.attempt(ctx, p, msgs, g.understandTimeout, "understand")
		if !ok {
			continue
		}
		ir, perr := ParseIntentPayload(out.Content)
		if perr != nil {
			logx.Warn().Err(perr).Str("provider", p.Name()).Msg("provider payload failed schema validation")
			continue
		}
		applyBudgetHeuristics(message, &ir)
		return ir
	}

	logx.Warn().Str("op", "understand").Msg("provider chain exhausted")
	return model.UnknownIntent()
}

// Generate produces the free-text reply for the turn. When the chain is
// exhausted it returns the fixed fallback reply. Never errors.
func (g *Gateway) Generate(ctx context.Context, pc PromptContext) string {
	sys, err := renderGenerateSystem(ctx, g.voice, pc)
	if err != nil {
		logx.Error().Err(err).Msg("generate prompt render failed")
		return FallbackReply
	}

	msgs := make([]*schema.Message, 0, g.contextTurns+2)
	msgs = append(msgs, schema.SystemMessage(sys))
	if pc.Session != nil {
		for _, t := range pc.Session.RecentTurns(g.contextTurns) {
			switch t.Role {
			case model.RoleUser:
				msgs = append(msgs, schema.UserMessage(t.Text))
			case model.RoleAgent:
				msgs = append(msgs, schema.AssistantMessage(t.Text, nil))
			}
		}
	}
	msgs = append(msgs, schema.UserMessage(pc.Message))

	for _, p := range g.generate {
		out, ok := g.attempt(ctx, p, msgs, g.generateTimeout, "generate")
		if !ok {
			continue
		}
		reply := strings.TrimSpace(out.Content)
		if reply == "" {
			logx.Warn().Str("provider", p.Name()).Msg("provider returned empty reply")
			continue
		}
		return reply
	}

	logx.Warn().Str("op", "generate").Msg("provider chain exhausted")
	return FallbackReply
}

// attempt runs one provider call under the per-call timeout and logs the
// outcome. Logging is observability only, not part of the contract.
func (g *Gateway) attempt(ctx context.Context, p Provider, msgs []*schema.Message, timeout time.Duration, op string) (*schema.Message, bool) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := p.Generate(cctx, msgs)
	latency := time.Since(start)

	if err != nil || out == nil {
		logx.Warn().
			Err(err).
			Str("provider", p.Name()).
			Str("op", op).
			Dur("latency", latency).
			Msg("provider attempt failed")
		return nil, false
	}

	logx.Debug().
		Str("provider", p.Name()).
		Str("op", op).
		Dur("latency", latency).
		Msg("provider attempt succeeded")
	return out, true
}

// buildUnderstandContext renders recent turns plus the current message in the
// tagged layout the understand prompt expects.
func buildUnderstandContext(sess *model.Session, message string, maxTurns int) string {
	var sb strings.Builder
	sb.WriteString("<conversation_context>\n")
	if sess != nil {
		for _, t := range sess.RecentTurns(maxTurns) {
			if t.Text == "" {
				continue
			}
			switch t.Role {
			case model.RoleUser:
				sb.WriteString("UserMessage(" + t.Text + ")\n")
			case model.RoleAgent:
				sb.WriteString("AssistantMessage(" + t.Text + ")\n")
			}
		}
	}
	sb.WriteString("</conversation_context>\n")
	sb.WriteString("<current_message_to_analyze>\n")
	sb.WriteString("UserMessage(" + message + ")\n")
	sb.WriteString("</current_message_to_analyze>")
	return sb.String()
}

// applyBudgetHeuristics overlays budgets stated literally in the message. An
// explicit statement in the current message is the freshest signal and wins
// over whatever the provider extracted.
func applyBudgetHeuristics(message string, ir *model.IntentResult) {
	if !ir.RequiresSearch || ir.Search == nil {
		return
	}
	min, max := ExtractBudget(message)
	if min != nil {
		ir.Search.BudgetMin = min
	}
	if max != nil {
		ir.Search.BudgetMax = max
	}
}
