package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	errx "github.com/petaldesk/engine/internal/core/error"
	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// Index is the product search boundary. Both the vector-backed path and the
// lexical snapshot fallback implement it, so the retriever can swap them via
// a capability check instead of branching on error types inline.
type Index interface {
	Search(ctx context.Context, query string, k int) ([]model.ProductCandidate, error)
}

// VectorIndex wraps a chromem-go collection holding the product catalog.
type VectorIndex struct {
	mu  sync.RWMutex
	col *chromem.Collection
}

// NewVectorIndex creates (or reopens) the named collection on db.
func NewVectorIndex(db *chromem.DB, name string, embed chromem.EmbeddingFunc) (*VectorIndex, error) {
	col := db.GetCollection(name, embed)
	if col == nil {
		var err error
		col, err = db.CreateCollection(name, nil, embed)
		if err != nil {
			return nil, fmt.Errorf("create catalog collection: %w", err)
		}
	}
	return &VectorIndex{col: col}, nil
}

// Upsert indexes (or re-indexes) one product. Document content concatenates
// the searchable text fields so semantic queries hit on any of them.
func (v *VectorIndex) Upsert(ctx context.Context, p model.CatalogProduct) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc := chromem.Document{
		ID:      p.ID,
		Content: strings.Join([]string{p.Name, p.Category, strings.Join(p.Attributes, " "), p.Description}, "\n"),
		Metadata: map[string]string{
			"name":       p.Name,
			"price":      strconv.FormatFloat(p.Price, 'f', 2, 64),
			"category":   p.Category,
			"attributes": strings.Join(p.Attributes, "|"),
		},
	}
	return v.col.AddDocument(ctx, doc)
}

// Seed indexes a whole snapshot.
func (v *VectorIndex) Seed(ctx context.Context, products []model.CatalogProduct) error {
	for _, p := range products {
		if err := v.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	logx.Debug().Int("products", len(products)).Msg("catalog index seeded")
	return nil
}

// Search returns up to k candidates ranked by semantic relevance.
func (v *VectorIndex) Search(ctx context.Context, query string, k int) ([]model.ProductCandidate, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	count := v.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	// chromem-go sometimes rejects nResults despite the Count check; step
	// down k until the query goes through.
	var results []chromem.Result
	var err error
	for attemptK := k; attemptK > 0; attemptK-- {
		results, err = v.col.Query(ctx, query, attemptK, nil, nil)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errx.ErrIndexUnavailable, err)
	}

	out := make([]model.ProductCandidate, 0, len(results))
	for _, r := range results {
		c := model.ProductCandidate{
			ID:        r.ID,
			Name:      r.Metadata["name"],
			Category:  r.Metadata["category"],
			Relevance: float64(r.Similarity),
			Source:    model.SourceCatalog,
		}
		if price, perr := strconv.ParseFloat(r.Metadata["price"], 64); perr == nil {
			c.Price = price
		}
		if attrs := r.Metadata["attributes"]; attrs != "" {
			c.Attributes = strings.Split(attrs, "|")
		}
		out = append(out, c)
	}
	return out, nil
}

var _ Index = (*VectorIndex)(nil)
