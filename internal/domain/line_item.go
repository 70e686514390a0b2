package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind partitions line items between the shopping cart and the hamper builder.
type Kind string

const (
	KindStandard        Kind = "standard"
	KindHamperComponent Kind = "hamper_component"
)

func (k Kind) Valid() bool {
	return k == KindStandard || k == KindHamperComponent
}

func (k Kind) String() string {
	return string(k)
}

// ItemKey identifies a line item. Two additions with the same key merge.
type ItemKey struct {
	ProductID    int64
	VariantLabel string
	Kind         Kind
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.ProductID, k.VariantLabel, k.Kind)
}

// Candidate is what the shopper picked on a product page. Name and price are
// captured as shown at that moment.
type Candidate struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VariantLabel string          `json:"variant_label"`
	ImageRef     string          `json:"image_ref"`
}

type LineItem struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VariantLabel string          `json:"variant_label"`
	Quantity     int             `json:"quantity"`
	ImageRef     string          `json:"image_ref"`
	Kind         Kind            `json:"kind"`
}

func (i LineItem) Key() ItemKey {
	return ItemKey{ProductID: i.ProductID, VariantLabel: i.VariantLabel, Kind: i.Kind}
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
