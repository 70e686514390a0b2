// Package cart owns the line items of one shopping session.
//
// Every mutation is total: inputs that do not match an item, or quantities
// that are out of range, resolve to a defined no-op or removal instead of an
// error. Derived values are recomputed from current state on every read.
package cart

import (
	"sync"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/shopspring/decimal"
)

// Store holds line items for the standard cart and the hamper builder.
// The backing slice never leaves the store; readers receive copies.
type Store struct {
	mu    sync.RWMutex
	items []domain.LineItem // insertion order
}

func NewStore() *Store {
	return &Store{}
}

// Restore builds a store from previously persisted items. Items with a
// non-positive quantity or an unknown kind are dropped and duplicate keys are
// merged, so a corrupted snapshot cannot break the store invariants.
func Restore(items []domain.LineItem) *Store {
	s := NewStore()
	for _, item := range items {
		if item.Quantity <= 0 || !item.Kind.Valid() {
			continue
		}
		if i := s.indexOf(item.Key()); i >= 0 {
			s.items[i].Quantity += item.Quantity
			continue
		}
		s.items = append(s.items, item)
	}
	return s
}

// AddItem increments the quantity of the item with the same identity key or
// inserts the candidate with quantity 1.
func (s *Store) AddItem(c domain.Candidate, kind domain.Kind) {
	if !kind.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.ItemKey{ProductID: c.ProductID, VariantLabel: c.VariantLabel, Kind: kind}
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity++
		return
	}

	s.items = append(s.items, domain.LineItem{
		ProductID:    c.ProductID,
		Name:         c.Name,
		UnitPrice:    c.UnitPrice,
		VariantLabel: c.VariantLabel,
		Quantity:     1,
		ImageRef:     c.ImageRef,
		Kind:         kind,
	})
}

// RemoveItem deletes the matching item. Absent keys are ignored.
func (s *Store) RemoveItem(productID int64, variantLabel string, kind domain.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(domain.ItemKey{ProductID: productID, VariantLabel: variantLabel, Kind: kind})
}

// SetQuantity overwrites the quantity of an existing item. A quantity of zero
// or less removes the item; an absent key is never re-created.
func (s *Store) SetQuantity(productID int64, variantLabel string, kind domain.Kind, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.ItemKey{ProductID: productID, VariantLabel: variantLabel, Kind: kind}
	if quantity <= 0 {
		s.remove(key)
		return
	}
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity = quantity
	}
}

// Clear empties every partition.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// ClearKind empties a single partition and leaves the others intact.
func (s *Store) ClearKind(kind domain.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.Kind != kind {
			kept = append(kept, item)
		}
	}
	clear(s.items[len(kept):])
	s.items = kept
}

// Items returns a copy of the items of one kind in insertion order.
func (s *Store) Items(kind domain.Kind) []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LineItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// Snapshot returns a copy of every item, all kinds included.
func (s *Store) Snapshot() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItemCount sums quantities over the given kinds, or over all items when
// no kind is given.
func (s *Store) TotalItemCount(kinds ...domain.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		if matchesKind(item.Kind, kinds) {
			total += item.Quantity
		}
	}
	return total
}

// Subtotal is the sum of unit price times quantity over one kind.
func (s *Store) Subtotal(kind domain.Kind) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subtotal := decimal.Zero
	for _, item := range s.items {
		if item.Kind == kind {
			subtotal = subtotal.Add(item.LineTotal())
		}
	}
	return subtotal
}

func (s *Store) indexOf(key domain.ItemKey) int {
	for i, item := range s.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) remove(key domain.ItemKey) {
	i := s.indexOf(key)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func matchesKind(k domain.Kind, kinds []domain.Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
