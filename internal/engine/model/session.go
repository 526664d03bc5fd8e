package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Turn is one message in a conversation. Immutable once appended to a session.
type Turn struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Intent    *IntentResult `json:"intent,omitempty"`
}

// NewTurn builds a turn with a fresh ID and the current time.
func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// Preferences accumulates durable signals extracted across turns.
// Merging is additive: the most recent budget statement wins, categories and
// attributes accumulate with the newest values moved to the front.
type Preferences struct {
	BudgetMin  *float64 `json:"budget_min,omitempty"`
	BudgetMax  *float64 `json:"budget_max,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

// Merge folds newer signals into p. Existing values are never silently
// dropped: budgets are replaced only when the incoming side states one,
// categories/attributes are prepended with recency bias and deduplicated.
func (p *Preferences) Merge(in Preferences) {
	if in.BudgetMin != nil {
		v := *in.BudgetMin
		p.BudgetMin = &v
	}
	if in.BudgetMax != nil {
		v := *in.BudgetMax
		p.BudgetMax = &v
	}
	p.Categories = mergeRecent(in.Categories, p.Categories)
	p.Attributes = mergeRecent(in.Attributes, p.Attributes)
}

// mergeRecent prepends newer values to older ones, keeping first occurrence.
func mergeRecent(newer, older []string) []string {
	if len(newer) == 0 {
		return older
	}
	seen := make(map[string]struct{}, len(newer)+len(older))
	out := make([]string, 0, len(newer)+len(older))
	for _, lists := range [][]string{newer, older} {
		for _, v := range lists {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy.
func (p Preferences) Clone() Preferences {
	out := Preferences{}
	if p.BudgetMin != nil {
		v := *p.BudgetMin
		out.BudgetMin = &v
	}
	if p.BudgetMax != nil {
		v := *p.BudgetMax
		out.BudgetMax = &v
	}
	out.Categories = append([]string(nil), p.Categories...)
	out.Attributes = append([]string(nil), p.Attributes...)
	return out
}

// Session is the per-user conversational state. Turns are append-only within
// a session lifetime and LastActiveAt increases monotonically.
type Session struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActiveAt   time.Time     `json:"last_active_at"`
	Turns          []Turn        `json:"turns"`
	Preferences    Preferences   `json:"preferences"`
	PendingIntent  *SearchIntent `json:"pending_intent,omitempty"`
	CompactedTurns int           `json:"compacted_turns,omitempty"`
}

// NewSession creates an empty session for the given id.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Touch advances LastActiveAt, never moving it backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActiveAt) {
		s.LastActiveAt = now
	}
}

// RecentTurns returns up to n most recent turns, oldest first.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if len(s.Turns) <= n {
		out := make([]Turn, len(s.Turns))
		copy(out, s.Turns)
		return out
	}
	src := s.Turns[len(s.Turns)-n:]
	out := make([]Turn, len(src))
	copy(out, src)
	return out
}

// Compact drops the oldest turns so at most maxTurns remain verbatim, and
// records how many were elided. A no-op when under the limit.
func (s *Session) Compact(maxTurns int) {
	if maxTurns <= 0 || len(s.Turns) <= maxTurns {
		return
	}
	dropped := len(s.Turns) - maxTurns
	kept := make([]Turn, maxTurns)
	copy(kept, s.Turns[dropped:])
	s.Turns = kept
	s.CompactedTurns += dropped
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		LastActiveAt:   s.LastActiveAt,
		Preferences:    s.Preferences.Clone(),
		CompactedTurns: s.CompactedTurns,
	}
	out.Turns = make([]Turn, len(s.Turns))
	copy(out.Turns, s.Turns)
	if s.PendingIntent != nil {
		pi := s.PendingIntent.Clone()
		out.PendingIntent = &pi
	}
	return out
}
