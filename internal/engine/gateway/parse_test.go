package gateway

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/petaldesk/engine/internal/core/error"
	"github.com/petaldesk/engine/internal/engine/model"
)

func TestParseIntentPayload_Valid(t *testing.T) {
	payload := `{
		"intent_type": "product_search",
		"requires_search": true,
		"search_intent": {
			"query_text": "roses",
			"category": "Bouquets",
			"budget_max": 500,
			"attributes": ["Red", ""]
		},
		"confidence": 0.92,
		"entities": {"product": "roses", "count": 3, "nested": {"x": 1}}
	}`

	ir, err := ParseIntentPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, model.IntentProductSearch, ir.Type)
	assert.True(t, ir.RequiresSearch)
	require.NotNil(t, ir.Search)
	assert.Equal(t, "roses", ir.Search.Query)
	assert.Equal(t, "bouquets", ir.Search.Category)
	require.NotNil(t, ir.Search.BudgetMax)
	assert.Equal(t, 500.0, *ir.Search.BudgetMax)
	assert.Equal(t, []string{"red"}, ir.Search.Attributes)
	assert.Equal(t, "roses", ir.Entities["product"])
	assert.Equal(t, "3", ir.Entities["count"])
	assert.NotContains(t, ir.Entities, "nested")
}

func TestParseIntentPayload_FencedAndProse(t *testing.T) {
	payload := "Here is the analysis:\n```json\n{\"intent_type\":\"greeting\",\"requires_search\":false,\"confidence\":1}\n```"

	ir, err := ParseIntentPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, model.IntentGreeting, ir.Type)
	assert.False(t, ir.RequiresSearch)
}

func TestParseIntentPayload_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "I think the user wants roses"},
		{"unknown intent", `{"intent_type":"buy_stuff","requires_search":false,"confidence":0.5}`},
		{"confidence out of range", `{"intent_type":"greeting","requires_search":false,"confidence":1.5}`},
		{"search without intent", `{"intent_type":"product_search","requires_search":true,"confidence":0.9}`},
		{"empty query", `{"intent_type":"product_search","requires_search":true,"search_intent":{"query_text":"  "},"confidence":0.9}`},
		{"negative budget", `{"intent_type":"product_search","requires_search":true,"search_intent":{"query_text":"roses","budget_max":-5},"confidence":0.9}`},
		{"inverted budget", `{"intent_type":"product_search","requires_search":true,"search_intent":{"query_text":"roses","budget_min":800,"budget_max":500},"confidence":0.9}`},
		{"oversized", `{"intent_type":"greeting","pad":"` + strings.Repeat("x", maxPayloadLen) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIntentPayload(tt.payload)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errx.ErrMalformedProviderResponse), "want ErrMalformedProviderResponse, got %v", err)
		})
	}
}
