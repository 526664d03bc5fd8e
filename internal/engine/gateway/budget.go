package gateway

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Budget phrase extraction. Customer messages state budgets in free text
// across several languages ("roses under 500", "до 800", "ไม่เกิน 1500").
// All patterns are evaluated against the whole message and applied in
// positional order, so when several numbers appear the most recent explicit
// budget statement wins.

type budgetKind int

const (
	budgetMax budgetKind = iota
	budgetMin
	budgetRange
)

type budgetPattern struct {
	re   *regexp.Regexp
	kind budgetKind
}

var budgetPatterns = []budgetPattern{
	// ranges first so "500-800" is not swallowed by single-number patterns
	{regexp.MustCompile(`(?i)(?:between\s+)?([0-9][0-9.,]*)\s*(?:-|–|to|до)\s*([0-9][0-9.,]*)`), budgetRange},
	{regexp.MustCompile(`(?i)\b(?:under|below|less than|up to|max(?:imum)?|within|at most)\s*\$?\s*([0-9][0-9.,]*)`), budgetMax},
	{regexp.MustCompile(`(?i)\b(?:over|above|more than|at least|starting (?:at|from))\s*\$?\s*([0-9][0-9.,]*)`), budgetMin},
	{regexp.MustCompile(`(?i)(?:до|не дороже|максимум|в пределах|в районе)\s*([0-9][0-9.,]*)`), budgetMax},
	{regexp.MustCompile(`(?i)(?:от|не дешевле|минимум)\s*([0-9][0-9.,]*)`), budgetMin},
	{regexp.MustCompile(`(?:ไม่เกิน|งบ(?:ประมาณ)?)\s*([0-9][0-9.,]*)`), budgetMax},
}

type budgetMatch struct {
	pos  int
	kind budgetKind
	lo   float64
	hi   float64
}

// ExtractBudget scans a message for budget statements. Returned pointers are
// nil when no statement of that bound was found.
func ExtractBudget(message string) (min, max *float64) {
	var matches []budgetMatch
	for _, bp := range budgetPatterns {
		for _, loc := range bp.re.FindAllStringSubmatchIndex(message, -1) {
			m := budgetMatch{pos: loc[0], kind: bp.kind}
			v1, ok := parseAmount(message[loc[2]:loc[3]])
			if !ok {
				continue
			}
			switch bp.kind {
			case budgetRange:
				v2, ok := parseAmount(message[loc[4]:loc[5]])
				if !ok {
					continue
				}
				if v2 < v1 {
					v1, v2 = v2, v1
				}
				m.lo, m.hi = v1, v2
			case budgetMax:
				m.hi = v1
			case budgetMin:
				m.lo = v1
			}
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	// apply in positional order; later statements override earlier ones
	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })
	minPos, maxPos := -1, -1
	for _, m := range matches {
		switch m.kind {
		case budgetRange:
			lo, hi := m.lo, m.hi
			min, max = &lo, &hi
			minPos, maxPos = m.pos, m.pos
		case budgetMax:
			hi := m.hi
			max = &hi
			maxPos = m.pos
		case budgetMin:
			lo := m.lo
			min = &lo
			minPos = m.pos
		}
	}
	if min != nil && max != nil && *min > *max {
		// contradictory statements, keep only the most recent side
		if minPos > maxPos {
			max = nil
		} else {
			min = nil
		}
	}
	return min, max
}

func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
