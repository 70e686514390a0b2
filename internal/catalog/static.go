package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/nutstore/internal/domain"
)

// StaticReader serves a fixed in-memory catalog.
type StaticReader struct {
	products []domain.Product
}

func NewStaticReader(products []domain.Product) *StaticReader {
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return &StaticReader{products: cp}
}

func (s *StaticReader) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
}

func (s *StaticReader) GetByCategory(_ context.Context, category string) ([]domain.Product, error) {
	for _, candidate := range categoryVariants(category) {
		var out []domain.Product
		for _, p := range s.products {
			if matchCategory(p.Category, candidate) {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return []domain.Product{}, nil
}

func (s *StaticReader) GetFlagged(_ context.Context, flag domain.Flag) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range s.products {
		if p.HasFlag(flag) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *StaticReader) GetAll(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// categoryVariants lists the spellings tried for a category slug, exact match
// first: "dry-fruits" also matches "dry fruits" and "dryfruits".
func categoryVariants(category string) []string {
	variants := []string{category}
	for _, v := range []string{strings.ReplaceAll(category, "-", " "), strings.ReplaceAll(category, "-", "")} {
		if v != category {
			variants = append(variants, v)
		}
	}
	return variants
}

func matchCategory(productCategory, candidate string) bool {
	if productCategory == candidate {
		return true
	}
	return candidate != "" && strings.Contains(strings.ToLower(productCategory), strings.ToLower(candidate))
}
