// Package checkout turns a cart into a submitted order.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/order"
	"github.com/fjod/nutstore/internal/pricing"
	"go.uber.org/zap"
)

// Cart is what checkout needs from a cart store.
type Cart interface {
	Items(kind domain.Kind) []domain.LineItem
	ClearKind(kind domain.Kind)
}

type Confirmation struct {
	OrderID  string
	Snapshot domain.OrderSnapshot
}

type Service struct {
	rules     pricing.Rules
	submitter order.Submitter
	log       *zap.Logger
	now       func() time.Time
}

func NewService(rules pricing.Rules, submitter order.Submitter, log *zap.Logger) *Service {
	return &Service{
		rules:     rules,
		submitter: submitter,
		log:       log,
		now:       time.Now,
	}
}

// PlaceOrder prices the standard items of cart, submits them once and clears
// them only when the order is accepted. On any error the cart is untouched.
func (s *Service) PlaceOrder(ctx context.Context, cart Cart, sessionID, couponCode string, customer domain.Customer) (*Confirmation, error) {
	items := cart.Items(domain.KindStandard)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if missing := customer.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidCustomer, strings.Join(missing, ", "))
	}
	if !strings.Contains(customer.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidCustomer)
	}

	totals := s.rules.Calculate(items, couponCode)
	snapshot := domain.NewOrderSnapshot(sessionID, customer, items, totals, s.now())

	log := s.log.With(
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("session_id", sessionID))

	res, err := s.submitter.Submit(ctx, snapshot)
	if err != nil {
		log.Warn("order submission failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrOrderTransport, err)
	}
	if !res.Accepted {
		log.Info("order rejected")
		return nil, ErrOrderRejected
	}

	cart.ClearKind(domain.KindStandard)
	log.Info("order placed",
		zap.String("order_id", res.OrderID),
		zap.String("grand_total", totals.GrandTotal.StringFixed(2)))

	return &Confirmation{OrderID: res.OrderID, Snapshot: snapshot}, nil
}
