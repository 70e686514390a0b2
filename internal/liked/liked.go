// Package liked keeps the products a shopper has marked as liked.
package liked

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fjod/nutstore/internal/cache"
	"github.com/fjod/nutstore/internal/domain"
	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image_ref"`
	Category  string          `json:"category"`
}

func ItemFromProduct(p domain.Product) Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageRef:  p.ImageRef,
		Category:  p.Category,
	}
}

// Store holds one JSON value per session. cache.RedisCache satisfies it.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Service reads a session's list once per call and writes it back whole on
// every change. Concurrent writers of the same session: last write wins.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, sessionID string) ([]Item, error) {
	var items []Item
	err := s.store.Get(ctx, sessionID, &items)
	if errors.Is(err, cache.ErrCacheMiss) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load liked products: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Add appends item unless a product with the same id is already liked.
func (s *Service) Add(ctx context.Context, sessionID string, item Item) ([]Item, error) {
	items, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(items, func(i Item) bool { return i.ProductID == item.ProductID }) {
		return items, nil
	}
	items = append(items, item)
	return items, s.save(ctx, sessionID, items)
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID int64) ([]Item, error) {
	items, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	kept := slices.DeleteFunc(items, func(i Item) bool { return i.ProductID == productID })
	return kept, s.save(ctx, sessionID, kept)
}

func (s *Service) IsLiked(ctx context.Context, sessionID string, productID int64) (bool, error) {
	items, err := s.List(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(items, func(i Item) bool { return i.ProductID == productID }), nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear liked products: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, sessionID string, items []Item) error {
	if err := s.store.Set(ctx, sessionID, items); err != nil {
		return fmt.Errorf("save liked products: %w", err)
	}
	return nil
}
