package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderReader is implemented by order.Repository.
type OrderReader interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*order.StoredOrder, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
	log     *zap.Logger
}

func NewOrdersHandler(orders OrderReader, timeout time.Duration, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout, log: log}
}

type OrderResponseDTO struct {
	ID       string             `json:"id"`
	Status   string             `json:"status"`
	Items    []domain.OrderLine `json:"items"`
	Totals   domain.Totals      `json:"totals"`
	PlacedAt time.Time          `json:"placed_at"`
}

// GetOrder serves an order placed from the caller's own session. Orders of
// other sessions are reported as not found.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.orders.GetOrder(ctx, id)
	if errors.Is(err, order.ErrOrderNotFound) || (err == nil && o.SessionID != sessionID(r.Context())) {
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, OrderResponseDTO{
		ID:       o.ID.String(),
		Status:   string(o.Status),
		Items:    o.Items,
		Totals:   o.Totals,
		PlacedAt: o.PlacedAt,
	})
}
