package catalog

import (
	"cmp"
	"slices"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/shopspring/decimal"
)

type SortBy string

const (
	SortPopularity   SortBy = "popularity"
	SortPriceLowHigh SortBy = "price-low-high"
	SortPriceHighLow SortBy = "price-high-low"
	SortNewest       SortBy = "newest"
	SortRating       SortBy = "rating"
)

// ParseSortBy falls back to popularity for unknown or empty values.
func ParseSortBy(s string) SortBy {
	switch v := SortBy(s); v {
	case SortPriceLowHigh, SortPriceHighLow, SortNewest, SortRating:
		return v
	default:
		return SortPopularity
	}
}

// Filter narrows a product listing. Zero values do not filter.
type Filter struct {
	MinPrice        decimal.NullDecimal
	MaxPrice        decimal.NullDecimal
	Tags            []string // any of
	Categories      []string // any of, exact
	InStockOnly     bool
	BestsellersOnly bool
	NewOnly         bool
	MinRating       float64
}

func (f Filter) Match(p domain.Product) bool {
	price := listPrice(p)
	if f.MinPrice.Valid && price.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(t string) bool { return slices.Contains(p.Tags, t) }) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if f.InStockOnly && p.Stock <= 0 {
		return false
	}
	if f.BestsellersOnly && !p.Bestseller {
		return false
	}
	if f.NewOnly && !p.New {
		return false
	}
	return p.Rating >= f.MinRating
}

// Browse filters products and orders the result. The input is not modified
// and ties keep their catalog order.
func Browse(products []domain.Product, f Filter, by SortBy) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}

	switch by {
	case SortPriceLowHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return listPrice(a).Cmp(listPrice(b))
		})
	case SortPriceHighLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return listPrice(b).Cmp(listPrice(a))
		})
	case SortNewest:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			if c := cmp.Compare(boolRank(b.New), boolRank(a.New)); c != 0 {
				return c
			}
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortRating:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	default:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(boolRank(b.Bestseller), boolRank(a.Bestseller))
		})
	}
	return out
}

// listPrice is the base price, or the first variant's price when the base is
// unset.
func listPrice(p domain.Product) decimal.Decimal {
	if p.Price.IsZero() && len(p.Variants) > 0 {
		return p.Variants[0].Price
	}
	return p.Price
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
