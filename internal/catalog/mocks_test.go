package catalog_test

import (
	"context"
	"sync/atomic"

	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/domain"
)

// countingReader wraps a Reader, counts backend calls and can be made to fail.
type countingReader struct {
	next  catalog.Reader
	calls atomic.Int32
	err   atomic.Pointer[error]
}

func (c *countingReader) fail(err error) { c.err.Store(&err) }

func (c *countingReader) heal() { c.err.Store(nil) }

func (c *countingReader) failure() error {
	if p := c.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (c *countingReader) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	c.calls.Add(1)
	if err := c.failure(); err != nil {
		return nil, err
	}
	return c.next.GetByID(ctx, id)
}

func (c *countingReader) GetByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	c.calls.Add(1)
	if err := c.failure(); err != nil {
		return nil, err
	}
	return c.next.GetByCategory(ctx, category)
}

func (c *countingReader) GetFlagged(ctx context.Context, flag domain.Flag) ([]domain.Product, error) {
	c.calls.Add(1)
	if err := c.failure(); err != nil {
		return nil, err
	}
	return c.next.GetFlagged(ctx, flag)
}

func (c *countingReader) GetAll(ctx context.Context) ([]domain.Product, error) {
	c.calls.Add(1)
	if err := c.failure(); err != nil {
		return nil, err
	}
	return c.next.GetAll(ctx)
}
