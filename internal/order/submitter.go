// Package order hands placed orders to whatever accepts them.
package order

import (
	"context"
	"errors"

	"github.com/fjod/nutstore/internal/domain"
)

// ErrDuplicateOrder means an order with the same snapshot id is already
// stored. Submitters report it as a rejection, not a failure.
var ErrDuplicateOrder = errors.New("order already exists")

// Result is the receiver's answer to a submission. A returned error means no
// answer was obtained at all.
type Result struct {
	Accepted bool
	OrderID  string
}

type Submitter interface {
	Submit(ctx context.Context, snapshot domain.OrderSnapshot) (Result, error)
}
