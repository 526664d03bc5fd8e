package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	errx "github.com/petaldesk/engine/internal/core/error"
	"github.com/petaldesk/engine/internal/engine/model"
)

// basic safety limits to avoid pathological provider output
const (
	maxPayloadLen   = 64 * 1024 // 64KB
	maxEntities     = 64
	maxAttributes   = 16
	maxEntityValLen = 512
)

// wire types mirror the JSON schema providers are prompted to emit. Kept
// separate from model types so validation happens in one place.
type wireIntent struct {
	IntentType     string         `json:"intent_type"`
	RequiresSearch bool           `json:"requires_search"`
	SearchIntent   *wireSearch    `json:"search_intent"`
	Confidence     float64        `json:"confidence"`
	Entities       map[string]any `json:"entities"`
}

type wireSearch struct {
	QueryText  string   `json:"query_text"`
	Category   string   `json:"category"`
	BudgetMin  *float64 `json:"budget_min"`
	BudgetMax  *float64 `json:"budget_max"`
	Attributes []string `json:"attributes"`
}

// ParseIntentPayload validates a provider payload against the IntentResult
// schema. Any violation returns ErrMalformedProviderResponse so the chain
// advances to the next provider; "non-empty" is not "valid".
func ParseIntentPayload(content string) (model.IntentResult, error) {
	var zero model.IntentResult

	if len(content) > maxPayloadLen {
		return zero, fmt.Errorf("%w: payload exceeds %d bytes", errx.ErrMalformedProviderResponse, maxPayloadLen)
	}
	if !utf8.ValidString(content) {
		return zero, fmt.Errorf("%w: invalid utf8", errx.ErrMalformedProviderResponse)
	}

	raw := extractJSONObject(content)
	if raw == "" {
		return zero, fmt.Errorf("%w: no json object found", errx.ErrMalformedProviderResponse)
	}

	var w wireIntent
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return zero, fmt.Errorf("%w: %v", errx.ErrMalformedProviderResponse, err)
	}

	if !model.KnownIntent(w.IntentType) {
		return zero, fmt.Errorf("%w: unknown intent_type %q", errx.ErrMalformedProviderResponse, w.IntentType)
	}
	if math.IsNaN(w.Confidence) || math.IsInf(w.Confidence, 0) || w.Confidence < 0 || w.Confidence > 1 {
		return zero, fmt.Errorf("%w: confidence out of range", errx.ErrMalformedProviderResponse)
	}

	out := model.IntentResult{
		Type:           model.IntentType(w.IntentType),
		RequiresSearch: w.RequiresSearch,
		Confidence:     w.Confidence,
		Entities:       flattenEntities(w.Entities),
	}

	if w.RequiresSearch {
		si, err := validateSearch(w.SearchIntent)
		if err != nil {
			return zero, err
		}
		out.Search = si
	}
	return out, nil
}

func validateSearch(w *wireSearch) (*model.SearchIntent, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: requires_search without search_intent", errx.ErrMalformedProviderResponse)
	}
	query := strings.TrimSpace(w.QueryText)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query_text", errx.ErrMalformedProviderResponse)
	}
	for _, v := range []*float64{w.BudgetMin, w.BudgetMax} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
			return nil, fmt.Errorf("%w: invalid budget value", errx.ErrMalformedProviderResponse)
		}
	}
	if w.BudgetMin != nil && w.BudgetMax != nil && *w.BudgetMin > *w.BudgetMax {
		return nil, fmt.Errorf("%w: budget_min above budget_max", errx.ErrMalformedProviderResponse)
	}

	si := &model.SearchIntent{
		Query:     query,
		Category:  strings.ToLower(strings.TrimSpace(w.Category)),
		BudgetMin: w.BudgetMin,
		BudgetMax: w.BudgetMax,
	}
	for _, a := range w.Attributes {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		si.Attributes = append(si.Attributes, a)
		if len(si.Attributes) >= maxAttributes {
			break
		}
	}
	return si, nil
}

// flattenEntities keeps scalar entity values as strings and drops nested
// structures providers sometimes invent.
func flattenEntities(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if len(out) >= maxEntities {
			break
		}
		var s string
		switch vv := v.(type) {
		case string:
			s = vv
		case float64, bool:
			s = fmt.Sprint(vv)
		default:
			continue
		}
		if len(s) > maxEntityValLen {
			s = s[:maxEntityValLen]
		}
		out[k] = s
	}
	return out
}

// extractJSONObject strips markdown code fences and surrounding prose,
// returning the outermost {...} span.
func extractJSONObject(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
