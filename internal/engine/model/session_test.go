package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pf(v float64) *float64 { return &v }

func TestPreferencesMerge_MostRecentBudgetWins(t *testing.T) {
	p := Preferences{BudgetMax: pf(500), Categories: []string{"roses"}}

	p.Merge(Preferences{BudgetMax: pf(800), Attributes: []string{"yellow"}})

	require.NotNil(t, p.BudgetMax)
	assert.Equal(t, 800.0, *p.BudgetMax)
	assert.Equal(t, []string{"roses"}, p.Categories, "absent fields never clear existing values")
	assert.Equal(t, []string{"yellow"}, p.Attributes)
}

func TestPreferencesMerge_RecencyOrderAndDedup(t *testing.T) {
	p := Preferences{Attributes: []string{"red", "romantic"}}

	p.Merge(Preferences{Attributes: []string{"yellow", "red"}})

	assert.Equal(t, []string{"yellow", "red", "romantic"}, p.Attributes)
}

func TestSearchIntentMergeWithPreferences_IntentWins(t *testing.T) {
	si := SearchIntent{Query: "tulips", BudgetMax: pf(300)}
	prefs := Preferences{BudgetMax: pf(500), BudgetMin: pf(100), Categories: []string{"roses"}}

	merged := si.MergeWithPreferences(prefs)

	assert.Equal(t, 300.0, *merged.BudgetMax, "intent budget beats stale preference")
	assert.Equal(t, 100.0, *merged.BudgetMin, "preference fills the gap")
	assert.Equal(t, "roses", merged.Category)
}

func TestSessionTouch_Monotonic(t *testing.T) {
	s := NewSession("s1")
	later := s.LastActiveAt.Add(time.Minute)

	s.Touch(later)
	assert.Equal(t, later, s.LastActiveAt)

	s.Touch(later.Add(-time.Hour))
	assert.Equal(t, later, s.LastActiveAt, "never moves backwards")
}

func TestSessionCompact(t *testing.T) {
	s := NewSession("s1")
	for i := 0; i < 10; i++ {
		s.Turns = append(s.Turns, NewTurn(RoleUser, "m"))
	}
	first := s.Turns[4].ID

	s.Compact(6)

	assert.Len(t, s.Turns, 6)
	assert.Equal(t, 4, s.CompactedTurns)
	assert.Equal(t, first, s.Turns[0].ID, "oldest surviving turn is preserved verbatim")

	s.Compact(6)
	assert.Equal(t, 4, s.CompactedTurns, "no-op under the limit")
}

func TestRecentTurns(t *testing.T) {
	s := NewSession("s1")
	for i := 0; i < 5; i++ {
		s.Turns = append(s.Turns, NewTurn(RoleUser, "m"))
	}

	got := s.RecentTurns(3)
	require.Len(t, got, 3)
	assert.Equal(t, s.Turns[2].ID, got[0].ID, "oldest first")

	assert.Len(t, s.RecentTurns(10), 5)
	assert.Nil(t, s.RecentTurns(0))
}
