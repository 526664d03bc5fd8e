package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petaldesk/engine/internal/engine/model"
)

type fakeProvider struct {
	name    string
	content string
	err     error
	delay   time.Duration
	calls   int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	p.calls++
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return schema.AssistantMessage(p.content, nil), nil
}

func newTestGateway(understand, generate []Provider) *Gateway {
	return New(
		model.GatewayConfig{UnderstandTimeout: 2, GenerateTimeout: 2},
		model.VoiceConfig{BusinessType: "flower shop", BusinessName: "PetalDesk"},
		5,
		understand,
		generate,
	)
}

const validSearchPayload = `{"intent_type":"product_search","requires_search":true,` +
	`"search_intent":{"query_text":"roses"},"confidence":0.9}`

func TestUnderstand_FirstValidWins(t *testing.T) {
	primary := &fakeProvider{name: "primary", content: validSearchPayload}
	secondary := &fakeProvider{name: "secondary", content: validSearchPayload}
	gw := newTestGateway([]Provider{primary, secondary}, nil)

	ir := gw.Understand(context.Background(), "roses please", model.NewSession("s1"))
	assert.Equal(t, model.IntentProductSearch, ir.Type)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "no parallel racing, later tiers untouched")
}

func TestUnderstand_AdvancesOnErrorAndMalformed(t *testing.T) {
	broken := &fakeProvider{name: "broken", err: errors.New("http 500")}
	malformed := &fakeProvider{name: "malformed", content: "sure! the user wants roses"}
	healthy := &fakeProvider{name: "healthy", content: validSearchPayload}
	gw := newTestGateway([]Provider{broken, malformed, healthy}, nil)

	ir := gw.Understand(context.Background(), "roses please", model.NewSession("s1"))
	assert.Equal(t, model.IntentProductSearch, ir.Type)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, malformed.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestUnderstand_ChainExhausted(t *testing.T) {
	down := errors.New("http 503")
	providers := []Provider{
		&fakeProvider{name: "a", err: down},
		&fakeProvider{name: "b", err: down},
		&fakeProvider{name: "c", err: down},
	}
	gw := newTestGateway(providers, nil)

	ir := gw.Understand(context.Background(), "roses please", model.NewSession("s1"))
	assert.Equal(t, model.IntentUnknown, ir.Type)
	assert.False(t, ir.RequiresSearch)
	assert.Zero(t, ir.Confidence)
}

func TestUnderstand_TimeoutAdvancesChain(t *testing.T) {
	slow := &fakeProvider{name: "slow", content: validSearchPayload, delay: 5 * time.Second}
	fast := &fakeProvider{name: "fast", content: validSearchPayload}
	gw := newTestGateway([]Provider{slow, fast}, nil)
	gw.understandTimeout = 20 * time.Millisecond

	ir := gw.Understand(context.Background(), "roses please", model.NewSession("s1"))
	assert.Equal(t, model.IntentProductSearch, ir.Type)
	assert.Equal(t, 1, fast.calls)
}

func TestUnderstand_BudgetHeuristicOverlay(t *testing.T) {
	// provider omits the budget entirely
	gw := newTestGateway([]Provider{&fakeProvider{name: "p", content: validSearchPayload}}, nil)

	ir := gw.Understand(context.Background(), "roses under 500", model.NewSession("s1"))
	require.NotNil(t, ir.Search)
	require.NotNil(t, ir.Search.BudgetMax)
	assert.Equal(t, 500.0, *ir.Search.BudgetMax)
}

func TestGenerate_FallbackOnExhaustion(t *testing.T) {
	down := errors.New("http 503")
	gw := newTestGateway(nil, []Provider{
		&fakeProvider{name: "a", err: down},
		&fakeProvider{name: "b", err: down},
	})

	reply := gw.Generate(context.Background(), PromptContext{
		Session: model.NewSession("s1"),
		Message: "hello",
		Quality: model.QualityNone,
	})
	assert.Equal(t, FallbackReply, reply)
}

func TestGenerate_SkipsEmptyReplies(t *testing.T) {
	empty := &fakeProvider{name: "empty", content: "   "}
	good := &fakeProvider{name: "good", content: "Happy to help!"}
	gw := newTestGateway(nil, []Provider{empty, good})

	reply := gw.Generate(context.Background(), PromptContext{
		Session: model.NewSession("s1"),
		Message: "hello",
		Quality: model.QualityNone,
	})
	assert.Equal(t, "Happy to help!", reply)
}

func TestGenerate_StaticTierTerminates(t *testing.T) {
	gw := newTestGateway(nil, []Provider{
		&fakeProvider{name: "down", err: errors.New("http 500")},
		NewStaticProvider("static", "We are here to help with flowers."),
	})

	reply := gw.Generate(context.Background(), PromptContext{
		Session: model.NewSession("s1"),
		Message: "hello",
		Quality: model.QualityNone,
	})
	assert.Equal(t, "We are here to help with flowers.", reply)
}
