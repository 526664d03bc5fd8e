package model

import "strings"

// IntentType is the structured interpretation of what the user wants.
type IntentType string

const (
	IntentUnknown       IntentType = "unknown"
	IntentGreeting      IntentType = "greeting"
	IntentProductSearch IntentType = "product_search"
	IntentPurchase      IntentType = "purchase"
	IntentSupport       IntentType = "support"
	IntentChitchat      IntentType = "chitchat"
	IntentComplaint     IntentType = "complaint"
)

// KnownIntent reports whether v is one of the declared intent types.
func KnownIntent(v string) bool {
	switch IntentType(v) {
	case IntentUnknown, IntentGreeting, IntentProductSearch, IntentPurchase,
		IntentSupport, IntentChitchat, IntentComplaint:
		return true
	}
	return false
}

// IntentResult is produced once per user turn by the language model gateway
// and never mutated afterwards.
type IntentResult struct {
	Type           IntentType        `json:"intent_type"`
	RequiresSearch bool              `json:"requires_search"`
	Search         *SearchIntent     `json:"search_intent,omitempty"`
	Confidence     float64           `json:"confidence"`
	Entities       map[string]string `json:"entities,omitempty"`
}

// UnknownIntent is the deterministic result returned when every provider in
// the chain has been exhausted.
func UnknownIntent() IntentResult {
	return IntentResult{
		Type:           IntentUnknown,
		RequiresSearch: false,
		Confidence:     0,
	}
}

// SearchIntent is the normalized query used to retrieve products. Immutable
// once built for a given turn.
type SearchIntent struct {
	Query      string   `json:"query_text"`
	Category   string   `json:"category,omitempty"`
	BudgetMin  *float64 `json:"budget_min,omitempty"`
	BudgetMax  *float64 `json:"budget_max,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

// Clone returns a deep copy.
func (si SearchIntent) Clone() SearchIntent {
	out := SearchIntent{Query: si.Query, Category: si.Category}
	if si.BudgetMin != nil {
		v := *si.BudgetMin
		out.BudgetMin = &v
	}
	if si.BudgetMax != nil {
		v := *si.BudgetMax
		out.BudgetMax = &v
	}
	out.Attributes = append([]string(nil), si.Attributes...)
	return out
}

// MergeWithPreferences fills gaps from the session preferences. Intent fields
// always win over stale preferences.
func (si SearchIntent) MergeWithPreferences(prefs Preferences) SearchIntent {
	out := si.Clone()
	if out.BudgetMax == nil && prefs.BudgetMax != nil {
		v := *prefs.BudgetMax
		out.BudgetMax = &v
	}
	if out.BudgetMin == nil && prefs.BudgetMin != nil {
		v := *prefs.BudgetMin
		out.BudgetMin = &v
	}
	if out.Category == "" && len(prefs.Categories) > 0 {
		out.Category = prefs.Categories[0]
	}
	out.Attributes = mergeRecent(out.Attributes, prefs.Attributes)
	return out
}

// PreferenceSignals projects the durable part of an intent into preference
// updates for the session.
func (si SearchIntent) PreferenceSignals() Preferences {
	p := Preferences{}
	if si.BudgetMin != nil {
		v := *si.BudgetMin
		p.BudgetMin = &v
	}
	if si.BudgetMax != nil {
		v := *si.BudgetMax
		p.BudgetMax = &v
	}
	if c := strings.TrimSpace(si.Category); c != "" {
		p.Categories = []string{c}
	}
	p.Attributes = append([]string(nil), si.Attributes...)
	return p
}
