package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVariantLabel is used for products that are sold in a single size.
const DefaultVariantLabel = "Default"

type Flag string

const (
	FlagBestseller Flag = "bestseller"
	FlagNew        Flag = "new"
)

func (f Flag) Valid() bool {
	return f == FlagBestseller || f == FlagNew
}

type Variant struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageRef    string          `json:"image_ref"`
	Variants    []Variant       `json:"variants"`
	Tags        []string        `json:"tags"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	Bestseller  bool            `json:"is_bestseller"`
	New         bool            `json:"is_new"`
	CreatedAt   time.Time       `json:"created_at"`
}

// HasFlag reports whether the product carries the given merchandising flag.
func (p Product) HasFlag(f Flag) bool {
	switch f {
	case FlagBestseller:
		return p.Bestseller
	case FlagNew:
		return p.New
	default:
		return false
	}
}

// Variant resolves a sellable variant by label. An empty label picks the
// first variant; products without variants expose a single default variant
// at base price.
func (p Product) Variant(label string) (Variant, bool) {
	if len(p.Variants) == 0 {
		if label == "" || label == DefaultVariantLabel {
			return Variant{Label: DefaultVariantLabel, Price: p.Price}, true
		}
		return Variant{}, false
	}
	if label == "" {
		return p.Variants[0], true
	}
	for _, v := range p.Variants {
		if v.Label == label {
			return v, true
		}
	}
	return Variant{}, false
}

// Candidate captures the product as the shopper sees it for the given variant.
func (p Product) Candidate(v Variant) Candidate {
	return Candidate{
		ProductID:    p.ID,
		Name:         p.Name,
		UnitPrice:    v.Price,
		VariantLabel: v.Label,
		ImageRef:     p.ImageRef,
	}
}
