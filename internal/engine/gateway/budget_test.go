package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBudget(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantMin *float64
		wantMax *float64
	}{
		{"english under", "roses under 500", nil, f(500)},
		{"english at least", "something over 1,200 please", f(1200), nil},
		{"range dash", "bouquet 500-800", f(500), f(800)},
		{"range inverted", "between 800 to 500", f(500), f(800)},
		{"russian do", "букет до 800", nil, f(800)},
		{"russian ot", "от 300 рублей", f(300), nil},
		{"thai", "ช่อดอกไม้ ไม่เกิน 1500 บาท", nil, f(1500)},
		{"no budget", "show me something yellow", nil, nil},
		{"most recent wins", "до 800... нет, лучше до 1000", nil, f(1000)},
		{"later english overrides", "under 500, actually make it under 700", nil, f(700)},
		{"contradiction keeps recent", "under 500 but at least 900", f(900), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := ExtractBudget(tt.message)
			assertBudget(t, tt.wantMin, min, "min")
			assertBudget(t, tt.wantMax, max, "max")
		})
	}
}

func f(v float64) *float64 { return &v }

func assertBudget(t *testing.T, want, got *float64, side string) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got, side)
		return
	}
	require.NotNil(t, got, side)
	assert.Equal(t, *want, *got, side)
}
