package order

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestSnapshot(sessionID string) domain.OrderSnapshot {
	items := []domain.LineItem{
		{ProductID: 1, Name: "Premium Cashew Nuts", UnitPrice: decimal.NewFromInt(1450), VariantLabel: "250g", Quantity: 2, Kind: domain.KindStandard},
	}
	totals := domain.Totals{
		Subtotal:       decimal.NewFromInt(2900),
		Discount:       decimal.NewFromInt(290),
		DeliveryCharge: decimal.NewFromInt(350),
		GrandTotal:     decimal.NewFromInt(2960),
		CouponCode:     "WELCOME10",
	}
	customer := domain.Customer{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "0300-1234567",
		Address:  "12 Mall Road",
		City:     "Lahore",
		Notes:    "  ring twice ",
	}
	return domain.NewOrderSnapshot(sessionID, customer, items, totals, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
}

// stubSubmitter answers with a fixed result and counts calls.
type stubSubmitter struct {
	result Result
	err    error
	calls  int
}

func (s *stubSubmitter) Submit(context.Context, domain.OrderSnapshot) (Result, error) {
	s.calls++
	return s.result, s.err
}

var errNetwork = errors.New("connection reset by peer")
