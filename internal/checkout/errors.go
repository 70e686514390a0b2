package checkout

import "errors"

var (
	ErrEmptyCart       = errors.New("cart is empty, nothing to checkout")
	ErrInvalidCustomer = errors.New("customer details are incomplete")
	// ErrOrderRejected means the receiver answered and declined the order.
	ErrOrderRejected = errors.New("order rejected")
	// ErrOrderTransport means no answer was obtained. The order may or may
	// not have been received.
	ErrOrderTransport = errors.New("order submission failed")
)
