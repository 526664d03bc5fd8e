package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/petaldesk/engine/internal/engine/model"
)

// Snapshot is the static fallback catalog: a flat scan with keyword matching
// over name, category, attributes and description. Lower precision than the
// vector index but functionally complete.
type Snapshot struct {
	products []model.CatalogProduct
}

// NewSnapshot builds a snapshot over the given records.
func NewSnapshot(products []model.CatalogProduct) *Snapshot {
	return &Snapshot{products: products}
}

// Products exposes the records, e.g. for seeding the vector index.
func (s *Snapshot) Products() []model.CatalogProduct {
	out := make([]model.CatalogProduct, len(s.products))
	copy(out, s.products)
	return out
}

// LoadSnapshotCSV reads a catalog snapshot from a CSV file with the columns
// id,name,price,category,attributes,description where attributes is a
// pipe-separated list. A header row is detected and skipped.
func LoadSnapshotCSV(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return readSnapshotCSV(f)
}

func readSnapshotCSV(r io.Reader) (*Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	var products []model.CatalogProduct
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(rec[0], "id") {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: bad price %q", line, rec[2])
		}
		p := model.CatalogProduct{
			ID:          strings.TrimSpace(rec[0]),
			Name:        strings.TrimSpace(rec[1]),
			Price:       price,
			Category:    strings.TrimSpace(rec[3]),
			Description: strings.TrimSpace(rec[5]),
		}
		for _, a := range strings.Split(rec[4], "|") {
			if a = strings.TrimSpace(a); a != "" {
				p.Attributes = append(p.Attributes, a)
			}
		}
		products = append(products, p)
	}
	return NewSnapshot(products), nil
}

// field weights for the lexical score
const (
	weightName        = 3.0
	weightCategory    = 2.0
	weightAttribute   = 2.0
	weightDescription = 1.0
)

// Search performs the linear keyword scan. Results are ordered by score
// descending, ties broken by snapshot order for determinism.
func (s *Snapshot) Search(ctx context.Context, query string, k int) ([]model.ProductCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := tokenize(query)
	if len(tokens) == 0 || k <= 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i, p := range s.products {
		score := lexicalScore(p, tokens)
		if score > 0 {
			hits = append(hits, scored{idx: i, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > k {
		hits = hits[:k]
	}

	maxScore := float64(len(tokens)) * (weightName + weightCategory + weightAttribute + weightDescription)
	out := make([]model.ProductCandidate, 0, len(hits))
	for _, h := range hits {
		p := s.products[h.idx]
		out = append(out, model.ProductCandidate{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Category:   p.Category,
			Attributes: append([]string(nil), p.Attributes...),
			Relevance:  h.score / maxScore,
			Source:     model.SourceFallback,
		})
	}
	return out, nil
}

func lexicalScore(p model.CatalogProduct, tokens []string) float64 {
	name := strings.ToLower(p.Name)
	category := strings.ToLower(p.Category)
	attrs := strings.ToLower(strings.Join(p.Attributes, " "))
	desc := strings.ToLower(p.Description)

	var score float64
	for _, tok := range tokens {
		if matchToken(name, tok) {
			score += weightName
		}
		if matchToken(category, tok) {
			score += weightCategory
		}
		if matchToken(attrs, tok) {
			score += weightAttribute
		}
		if matchToken(desc, tok) {
			score += weightDescription
		}
	}
	return score
}

// matchToken also tries the naive singular so "roses" still hits "rose".
func matchToken(haystack, tok string) bool {
	if strings.Contains(haystack, tok) {
		return true
	}
	if len(tok) > 3 && strings.HasSuffix(tok, "s") {
		return strings.Contains(haystack, strings.TrimSuffix(tok, "s"))
	}
	return false
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?\"'()")
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

var _ Index = (*Snapshot)(nil)
