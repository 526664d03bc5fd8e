package model

import "strings"

// CandidateSource records which retrieval path produced a candidate.
type CandidateSource string

const (
	SourceCatalog  CandidateSource = "catalog"
	SourceFallback CandidateSource = "fallback"
)

// SearchQuality qualifies a retrieval result for the response composer.
type SearchQuality string

const (
	// QualityExact means candidates satisfy every stated constraint.
	QualityExact SearchQuality = "exact"
	// QualityAlternative means the budget constraint was relaxed to find
	// close alternatives.
	QualityAlternative SearchQuality = "alternative"
	// QualityNone means no product block should be rendered.
	QualityNone SearchQuality = "none"
)

// ProductCandidate is a read-only projection from the catalog index. The
// orchestrator only filters, ranks and copies candidates.
type ProductCandidate struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      float64         `json:"price"`
	Category   string          `json:"category"`
	Attributes []string        `json:"attributes,omitempty"`
	Relevance  float64         `json:"relevance_score"`
	Source     CandidateSource `json:"source"`
}

// NormalizedName returns the case- and whitespace-insensitive dedup key.
func (c ProductCandidate) NormalizedName() string {
	return strings.Join(strings.Fields(strings.ToLower(c.Name)), " ")
}

// CatalogProduct is one record of the catalog snapshot used to seed the
// vector index and to serve the lexical fallback path.
type CatalogProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Attributes  []string `json:"attributes,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SecurityVerdict is computed fresh per inbound message and never cached
// across turns.
type SecurityVerdict struct {
	IsSafe bool   `json:"is_safe"`
	Reason string `json:"reason,omitempty"`
}
