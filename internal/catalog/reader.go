// Package catalog reads product records. The cart references products by id
// but never owns or mutates them.
package catalog

import (
	"context"
	"errors"

	"github.com/fjod/nutstore/internal/domain"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrUnavailable means the catalog could not answer at all. Callers should
	// offer a retry rather than render an empty catalog.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Reader is implemented by every catalog backend.
type Reader interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByCategory(ctx context.Context, category string) ([]domain.Product, error)
	GetFlagged(ctx context.Context, flag domain.Flag) ([]domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
}
