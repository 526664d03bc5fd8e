package composer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/petaldesk/engine/internal/engine/model"
)

// Composer deterministically assembles the final reply from the generated
// text and the retrieval result. No model call happens here, so the output
// shape is fully testable.
type Composer struct {
	maxProducts int
}

func New(cfg model.ComposerConfig) *Composer {
	return &Composer{maxProducts: cfg.MaxProducts}
}

const alternativesLead = "Nothing matched your budget exactly, but these come close:"

// Compose appends a product block to the generated text when the search
// produced candidates. QualityNone renders the text alone, QualityAlternative
// prefixes the block with the close-match lead-in.
func (c *Composer) Compose(text string, candidates []model.ProductCandidate, quality model.SearchQuality) string {
	text = strings.TrimSpace(text)
	if quality == model.QualityNone || len(candidates) == 0 {
		return text
	}

	n := len(candidates)
	if c.maxProducts > 0 && n > c.maxProducts {
		n = c.maxProducts
	}

	var b strings.Builder
	if text != "" {
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	if quality == model.QualityAlternative {
		b.WriteString(alternativesLead)
		b.WriteString("\n")
	}
	for i := 0; i < n; i++ {
		b.WriteString(formatProductLine(i+1, candidates[i]))
		if i < n-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatProductLine(rank int, c model.ProductCandidate) string {
	return fmt.Sprintf("%d. %s - %.2f (#%s) - %s", rank, c.Name, c.Price, c.ID, summaryReason(c))
}

// summaryReason is the one-line relevance note after each summary, built
// from the candidate's category and leading attributes.
func summaryReason(c model.ProductCandidate) string {
	parts := make([]string, 0, 3)
	if c.Category != "" {
		parts = append(parts, c.Category)
	}
	for i, a := range c.Attributes {
		if i == 2 {
			break
		}
		parts = append(parts, a)
	}
	if len(parts) == 0 {
		return "popular pick"
	}
	return strings.Join(parts, ", ")
}

var productLineRe = regexp.MustCompile(`(?m)^(\d+)\. (.+?) - (\d+(?:\.\d+)?) \(#([^)]+)\)(?: - .+)?$`)

// ParseProductBlock recovers the product lines from a composed reply. Every
// candidate rendered by Compose reparses to its name, price and ID; the
// trailing reason is presentation only and is not recovered.
func ParseProductBlock(reply string) []model.ProductCandidate {
	matches := productLineRe.FindAllStringSubmatch(reply, -1)
	out := make([]model.ProductCandidate, 0, len(matches))
	for _, m := range matches {
		price, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		out = append(out, model.ProductCandidate{
			ID:    m[4],
			Name:  m[2],
			Price: price,
		})
	}
	return out
}
