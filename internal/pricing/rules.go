package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownCoupon = errors.New("unknown coupon code")

// Rules is the business configuration the totals are derived from.
type Rules struct {
	// Delivery is free when the subtotal is strictly greater than this.
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	// Coupons maps an exact, case-sensitive code to a discount rate in [0, 1].
	Coupons map[string]decimal.Decimal
}

// DefaultRules mirrors the storefront's published promotions.
func DefaultRules() Rules {
	return Rules{
		FreeDeliveryThreshold: decimal.NewFromInt(3000),
		DeliveryFee:           decimal.NewFromInt(350),
		Coupons: map[string]decimal.Decimal{
			"WELCOME10": decimal.RequireFromString("0.10"),
		},
	}
}

func (r Rules) LookupCoupon(code string) (decimal.Decimal, bool) {
	if code == "" {
		return decimal.Zero, false
	}
	rate, ok := r.Coupons[code]
	return rate, ok
}

// ParseCoupons reads a registry in the form "CODE:rate,CODE2:rate".
func ParseCoupons(s string) (map[string]decimal.Decimal, error) {
	coupons := make(map[string]decimal.Decimal)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, rawRate, ok := strings.Cut(entry, ":")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			return nil, fmt.Errorf("invalid coupon entry %q", entry)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rawRate))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for coupon %q: %w", code, err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("rate for coupon %q must be between 0 and 1", code)
		}
		coupons[code] = rate
	}
	return coupons, nil
}
