package catalog

import "github.com/petaldesk/engine/internal/engine/model"

// DefaultSnapshot returns the built-in flower shop catalog used for local
// runs and as the fallback snapshot when no external CSV is configured.
func DefaultSnapshot() *Snapshot {
	return NewSnapshot(defaultProducts)
}

var defaultProducts = []model.CatalogProduct{
	{
		ID:          "fl-001",
		Name:        "Classic Red Rose Bouquet",
		Category:    "roses",
		Price:       450.00,
		Attributes:  []string{"red", "romantic", "classic"},
		Description: "Eleven red roses hand-tied with eucalyptus, the evergreen romantic choice",
	},
	{
		ID:          "fl-002",
		Name:        "White Rose Elegance",
		Category:    "roses",
		Price:       490.00,
		Attributes:  []string{"white", "wedding", "elegant"},
		Description: "Fifteen white roses with gypsophila, popular for weddings and anniversaries",
	},
	{
		ID:          "fl-003",
		Name:        "Grand Rose Basket",
		Category:    "roses",
		Price:       890.00,
		Attributes:  []string{"red", "pink", "deluxe"},
		Description: "Twenty five mixed roses arranged in a wicker basket, a statement gift",
	},
	{
		ID:          "fl-004",
		Name:        "Yellow Tulip Morning",
		Category:    "tulips",
		Price:       380.00,
		Attributes:  []string{"yellow", "spring", "cheerful"},
		Description: "Seventeen yellow tulips wrapped in kraft paper, bright and cheerful",
	},
	{
		ID:          "fl-005",
		Name:        "Pink Tulip Dream",
		Category:    "tulips",
		Price:       420.00,
		Attributes:  []string{"pink", "spring", "tender"},
		Description: "Nineteen pink tulips with greenery, a tender springtime bouquet",
	},
	{
		ID:          "fl-006",
		Name:        "Sunflower Smile",
		Category:    "bouquets",
		Price:       350.00,
		Attributes:  []string{"yellow", "birthday", "cheerful"},
		Description: "Five sunflowers with chamomile and ruscus, guaranteed to make someone smile",
	},
	{
		ID:          "fl-007",
		Name:        "Peony Blush",
		Category:    "bouquets",
		Price:       980.00,
		Attributes:  []string{"pink", "premium", "seasonal"},
		Description: "Nine blush peonies, the seasonal premium favourite",
	},
	{
		ID:          "fl-008",
		Name:        "Lily Serenade",
		Category:    "bouquets",
		Price:       520.00,
		Attributes:  []string{"white", "fragrant", "sympathy"},
		Description: "Oriental lilies with greens, strongly fragrant and long lasting",
	},
	{
		ID:          "fl-009",
		Name:        "Phalaenopsis Orchid Pot",
		Category:    "plants",
		Price:       750.00,
		Attributes:  []string{"white", "long-lasting", "office"},
		Description: "Twin-stem phalaenopsis orchid in a ceramic pot, blooms for months",
	},
	{
		ID:          "fl-010",
		Name:        "Succulent Trio",
		Category:    "plants",
		Price:       290.00,
		Attributes:  []string{"green", "low-maintenance", "office"},
		Description: "Three assorted succulents in concrete pots, zero effort greenery",
	},
	{
		ID:          "fl-011",
		Name:        "Spring Mix Surprise",
		Category:    "bouquets",
		Price:       480.00,
		Attributes:  []string{"mixed", "yellow", "birthday"},
		Description: "Florist's choice of seasonal spring flowers with yellow accents",
	},
	{
		ID:          "fl-012",
		Name:        "Autumn Ember",
		Category:    "bouquets",
		Price:       540.00,
		Attributes:  []string{"orange", "autumn", "warm"},
		Description: "Chrysanthemums, hypericum and oak leaves in warm autumn tones",
	},
	{
		ID:          "fl-013",
		Name:        "Birthday Greeting Card",
		Category:    "greeting-cards",
		Price:       60.00,
		Attributes:  []string{"birthday", "paper"},
		Description: "Hand-illustrated birthday greeting card, blank inside",
	},
	{
		ID:          "fl-014",
		Name:        "Glass Vase Medium",
		Category:    "accessories",
		Price:       220.00,
		Attributes:  []string{"glass", "medium"},
		Description: "Clear glass vase fitting most medium bouquets",
	},
	{
		ID:          "fl-015",
		Name:        "Rose Petal Box",
		Category:    "gifts",
		Price:       650.00,
		Attributes:  []string{"red", "romantic", "gift"},
		Description: "Hat box filled with fresh rose petals for special occasions",
	},
	{
		ID:          "fl-016",
		Name:        "White Rose Elegance",
		Category:    "roses",
		Price:       510.00,
		Attributes:  []string{"white", "wedding"},
		Description: "Large-format edition of the white rose bouquet, twenty one stems",
	},
}
