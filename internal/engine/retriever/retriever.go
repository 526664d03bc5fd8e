package retriever

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/petaldesk/engine/internal/engine/catalog"
	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// Result carries the ranked candidates plus the quality signal the composer
// uses to pick its framing.
type Result struct {
	Candidates []model.ProductCandidate
	Quality    model.SearchQuality
}

// Retriever resolves a search intent against the catalog. The primary index
// is consulted first; if it errors the lexical snapshot serves the same
// query so retrieval never hard-fails the turn.
type Retriever struct {
	primary  catalog.Index
	fallback catalog.Index

	limit        int
	overfetch    int
	relaxFactor  float64
	indexTimeout time.Duration

	excludedCategories map[string]struct{}
	excludedKeywords   []string
}

// New wires a retriever from config. fallback may equal primary when no
// vector index is available; it must never be nil.
func New(cfg model.RetrieverConfig, primary, fallback catalog.Index) *Retriever {
	r := &Retriever{
		primary:            primary,
		fallback:           fallback,
		limit:              cfg.Limit,
		overfetch:          cfg.Limit * cfg.OverfetchFactor,
		relaxFactor:        cfg.BudgetRelaxFactor,
		indexTimeout:       time.Duration(cfg.IndexTimeout) * time.Second,
		excludedCategories: make(map[string]struct{}, len(cfg.ExcludedCategories)),
	}
	for _, c := range cfg.ExcludedCategories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			r.excludedCategories[c] = struct{}{}
		}
	}
	for _, kw := range cfg.ExcludedKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			r.excludedKeywords = append(r.excludedKeywords, kw)
		}
	}
	return r
}

// Retrieve merges the turn's intent with session preferences and searches the
// catalog. Quality is exact when the stated budget held, alternative when it
// had to be relaxed, none when nothing survives filtering.
func (r *Retriever) Retrieve(ctx context.Context, intent model.SearchIntent, prefs model.Preferences) Result {
	merged := intent.MergeWithPreferences(prefs)
	query := buildQuery(merged)
	if query == "" {
		return Result{Quality: model.QualityNone}
	}

	raw := r.search(ctx, query)
	if len(raw) == 0 {
		return Result{Quality: model.QualityNone}
	}

	pool := r.filterPool(raw)
	if len(pool) == 0 {
		return Result{Quality: model.QualityNone}
	}

	exact := filterBudget(pool, merged.BudgetMin, merged.BudgetMax, 1.0)
	if len(exact) > 0 {
		return Result{Candidates: top(exact, r.limit), Quality: model.QualityExact}
	}

	if merged.BudgetMin == nil && merged.BudgetMax == nil {
		// no budget stated and still nothing left
		return Result{Quality: model.QualityNone}
	}

	relaxed := filterBudget(pool, merged.BudgetMin, merged.BudgetMax, r.relaxFactor)
	if len(relaxed) > 0 {
		logx.Debug().
			Str("query", query).
			Float64("relax_factor", r.relaxFactor).
			Msg("budget relaxed to find alternatives")
		return Result{Candidates: top(relaxed, r.limit), Quality: model.QualityAlternative}
	}
	return Result{Quality: model.QualityNone}
}

// search tries the primary index under its own timeout, then degrades to the
// fallback snapshot. Retrieval errors are logged, never surfaced.
func (r *Retriever) search(ctx context.Context, query string) []model.ProductCandidate {
	ictx, cancel := context.WithTimeout(ctx, r.indexTimeout)
	defer cancel()

	out, err := r.primary.Search(ictx, query, r.overfetch)
	if err == nil {
		return out
	}
	logx.Warn().Err(err).Str("query", query).Msg("primary index unavailable, using snapshot fallback")

	out, err = r.fallback.Search(ctx, query, r.overfetch)
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("snapshot fallback failed")
		return nil
	}
	return out
}

// filterPool drops excluded categories and keyword matches and dedups by
// normalized name. The first occurrence by rank wins; later duplicates are
// discarded regardless of price.
func (r *Retriever) filterPool(in []model.ProductCandidate) []model.ProductCandidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.ProductCandidate, 0, len(in))
	for _, c := range in {
		if r.excluded(c) {
			continue
		}
		key := c.NormalizedName()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (r *Retriever) excluded(c model.ProductCandidate) bool {
	if _, ok := r.excludedCategories[strings.ToLower(c.Category)]; ok {
		return true
	}
	name := strings.ToLower(c.Name)
	for _, kw := range r.excludedKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// filterBudget keeps candidates inside the stated budget. relax > 1 widens
// the window on both sides for the alternative pass.
func filterBudget(in []model.ProductCandidate, min, max *float64, relax float64) []model.ProductCandidate {
	if min == nil && max == nil {
		return in
	}
	out := make([]model.ProductCandidate, 0, len(in))
	for _, c := range in {
		if max != nil && c.Price > *max*relax {
			continue
		}
		if min != nil && c.Price < *min/relax {
			continue
		}
		out = append(out, c)
	}
	return out
}

func top(in []model.ProductCandidate, limit int) []model.ProductCandidate {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Relevance > in[j].Relevance })
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}

// buildQuery folds category and attribute hints into the query text without
// repeating terms the user already typed.
func buildQuery(si model.SearchIntent) string {
	q := strings.TrimSpace(si.Query)
	lower := strings.ToLower(q)
	parts := []string{}
	if q != "" {
		parts = append(parts, q)
	}
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || strings.Contains(lower, strings.ToLower(term)) {
			return
		}
		parts = append(parts, term)
	}
	add(si.Category)
	for _, a := range si.Attributes {
		add(a)
	}
	return strings.Join(parts, " ")
}
