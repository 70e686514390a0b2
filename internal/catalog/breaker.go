package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerReader stops calling a failing catalog backend until it recovers.
// While the breaker is open every read fails fast with ErrUnavailable.
type BreakerReader struct {
	next Reader
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreakerReader(next Reader, cfg circuitbreaker.Config, log *zap.Logger) *BreakerReader {
	// a missing product is an answer from a healthy backend
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNotFound)
	}
	return &BreakerReader{
		next: next,
		cb:   circuitbreaker.New[any](cfg, log),
	}
}

func (b *BreakerReader) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	return v.(*domain.Product), nil
}

func (b *BreakerReader) GetByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return b.list(func() ([]domain.Product, error) { return b.next.GetByCategory(ctx, category) })
}

func (b *BreakerReader) GetFlagged(ctx context.Context, flag domain.Flag) ([]domain.Product, error) {
	return b.list(func() ([]domain.Product, error) { return b.next.GetFlagged(ctx, flag) })
}

func (b *BreakerReader) GetAll(ctx context.Context) ([]domain.Product, error) {
	return b.list(func() ([]domain.Product, error) { return b.next.GetAll(ctx) })
}

func (b *BreakerReader) list(call func() ([]domain.Product, error)) ([]domain.Product, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return call()
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	return v.([]domain.Product), nil
}

func (b *BreakerReader) wrap(err error) error {
	if circuitbreaker.IsOpen(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
