package order

import (
	"context"
	"fmt"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSubmitter fails fast while the wrapped submitter keeps erroring.
// A rejection is an answer and does not count as a failure.
type BreakerSubmitter struct {
	next Submitter
	cb   *gobreaker.CircuitBreaker[Result]
}

func NewBreakerSubmitter(next Submitter, cfg circuitbreaker.Config, log *zap.Logger) *BreakerSubmitter {
	return &BreakerSubmitter{
		next: next,
		cb:   circuitbreaker.New[Result](cfg, log),
	}
}

func (b *BreakerSubmitter) Submit(ctx context.Context, snapshot domain.OrderSnapshot) (Result, error) {
	res, err := b.cb.Execute(func() (Result, error) {
		return b.next.Submit(ctx, snapshot)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return Result{}, fmt.Errorf("order submitter unavailable: %w", err)
		}
		return Result{}, err
	}
	return res, nil
}
