package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/checkout"
	"github.com/fjod/nutstore/internal/enquiry"
	"github.com/fjod/nutstore/internal/pricing"
	"github.com/fjod/nutstore/internal/session"
	"github.com/fjod/nutstore/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var errLikedUnavailable = errors.New("liked products unavailable")

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain errors to HTTP responses. Unavailability of a
// collaborator is reported as retryable, never as an empty result.
func handleError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var (
		status  int
		code    string
		message string
	)
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		status, code, message = http.StatusServiceUnavailable, "catalog_unavailable", "catalog is temporarily unavailable, please retry"
	case errors.Is(err, catalog.ErrNotFound):
		status, code, message = http.StatusNotFound, "product_not_found", "product not found"
	case errors.Is(err, checkout.ErrEmptyCart):
		status, code, message = http.StatusConflict, "empty_cart", "cart is empty"
	case errors.Is(err, checkout.ErrInvalidCustomer):
		status, code, message = http.StatusBadRequest, "invalid_customer", "customer details are incomplete"
	case errors.Is(err, checkout.ErrOrderRejected):
		status, code, message = http.StatusUnprocessableEntity, "order_rejected", "order was rejected"
	case errors.Is(err, checkout.ErrOrderTransport):
		status, code, message = http.StatusBadGateway, "order_transport_failure", "order could not be submitted, please retry"
	case errors.Is(err, pricing.ErrUnknownCoupon):
		status, code, message = http.StatusBadRequest, "invalid_coupon", "coupon code is not valid"
	case errors.Is(err, enquiry.ErrInvalid):
		status, code, message = http.StatusBadRequest, "invalid_enquiry", "enquiry is incomplete"
	case errors.Is(err, session.ErrUnavailable):
		status, code, message = http.StatusServiceUnavailable, "session_unavailable", "cart storage is temporarily unavailable, please retry"
	case errors.Is(err, errLikedUnavailable):
		status, code, message = http.StatusServiceUnavailable, "liked_unavailable", "liked products are temporarily unavailable, please retry"
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, "timeout", "request timed out"
	default:
		status, code, message = http.StatusInternalServerError, "internal_error", "internal server error"
	}

	l := logger.FromContext(r.Context(), log)
	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.String("code", code), zap.Error(err))
	} else {
		l.Debug("request rejected", zap.String("code", code), zap.Error(err))
	}

	resp := ErrorResponse{Error: message, Code: code}
	if status < http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	respondJSON(w, status, resp)
}
