// Package pricing derives checkout totals from line items.
//
// Calculate is a pure function of its inputs; callers recompute on every read.
package pricing

import (
	"github.com/fjod/nutstore/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculate prices the standard items in items. Hamper components are ignored.
func (r Rules) Calculate(items []domain.LineItem, couponCode string) domain.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Kind != domain.KindStandard {
			continue
		}
		subtotal = subtotal.Add(item.LineTotal())
	}

	delivery := r.DeliveryCharge(subtotal)

	discount := decimal.Zero
	applied := ""
	if rate, ok := r.LookupCoupon(couponCode); ok {
		discount = subtotal.Mul(rate)
		applied = couponCode
	}

	grand := subtotal.Sub(discount).Add(delivery)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return domain.Totals{
		Subtotal:       subtotal,
		Discount:       discount,
		DeliveryCharge: delivery,
		GrandTotal:     grand,
		CouponCode:     applied,
	}
}

func (r Rules) DeliveryCharge(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return r.DeliveryFee
}

// RemainingForFreeDelivery is how much more the shopper has to add before
// delivery becomes free. Zero once the threshold is passed.
func (r Rules) RemainingForFreeDelivery(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return r.FreeDeliveryThreshold.Sub(subtotal)
}
