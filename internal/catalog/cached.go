package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/nutstore/internal/cache"
	"github.com/fjod/nutstore/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedReader serves catalog reads from a cache and falls through to next on
// a miss. Cache failures are logged and bypassed, never surfaced.
type CachedReader struct {
	next  Reader
	cache cache.Cache
	log   *zap.Logger
	sfg   singleflight.Group // one backend read per key under load
}

func NewCachedReader(next Reader, c cache.Cache, log *zap.Logger) *CachedReader {
	return &CachedReader{next: next, cache: c, log: log}
}

func (r *CachedReader) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := fmt.Sprintf("product:%d", id)
	v, err, _ := r.sfg.Do(key, func() (any, error) {
		var p domain.Product
		if r.get(ctx, key, &p) {
			return &p, nil
		}
		product, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		r.set(key, product)
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*domain.Product)
	return &p, nil
}

func (r *CachedReader) GetByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return r.list(ctx, "category:"+strings.ToLower(category), func() ([]domain.Product, error) {
		return r.next.GetByCategory(ctx, category)
	})
}

func (r *CachedReader) GetFlagged(ctx context.Context, flag domain.Flag) ([]domain.Product, error) {
	return r.list(ctx, "flag:"+string(flag), func() ([]domain.Product, error) {
		return r.next.GetFlagged(ctx, flag)
	})
}

func (r *CachedReader) GetAll(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, "all", func() ([]domain.Product, error) {
		return r.next.GetAll(ctx)
	})
}

func (r *CachedReader) list(ctx context.Context, key string, load func() ([]domain.Product, error)) ([]domain.Product, error) {
	v, err, _ := r.sfg.Do(key, func() (any, error) {
		var products []domain.Product
		if r.get(ctx, key, &products) {
			return products, nil
		}
		products, err := load()
		if err != nil {
			return nil, err
		}
		r.set(key, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	shared := v.([]domain.Product)
	out := make([]domain.Product, len(shared))
	copy(out, shared)
	return out, nil
}

func (r *CachedReader) get(ctx context.Context, key string, dest any) bool {
	err := r.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.log.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (r *CachedReader) set(key string, value any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := r.cache.Set(ctx, key, value); err != nil {
			r.log.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
