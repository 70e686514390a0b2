package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Totals is the checkout-facing price breakdown.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	CouponCode     string          `json:"coupon_code,omitempty"`
}

type Customer struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes"`
}

// MissingFields lists required customer fields that are blank.
func (c Customer) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"full_name", c.FullName},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
		{"city", c.City},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type OrderLine struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	VariantLabel string          `json:"variant_label"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderSnapshot is the point-in-time record handed to the order submitter.
// It owns copies of everything it references.
type OrderSnapshot struct {
	ID        uuid.UUID   `json:"id"`
	SessionID string      `json:"session_id"`
	Customer  Customer    `json:"customer"`
	Items     []OrderLine `json:"items"`
	Totals    Totals      `json:"totals"`
	PlacedAt  time.Time   `json:"placed_at"`
}

func NewOrderSnapshot(sessionID string, customer Customer, items []LineItem, totals Totals, placedAt time.Time) OrderSnapshot {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			ProductID:    item.ProductID,
			Name:         item.Name,
			VariantLabel: item.VariantLabel,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal(),
		})
	}
	customer.Notes = strings.TrimSpace(customer.Notes)

	return OrderSnapshot{
		ID:        uuid.New(),
		SessionID: sessionID,
		Customer:  customer,
		Items:     lines,
		Totals:    totals,
		PlacedAt:  placedAt.UTC(),
	}
}
