package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/pricing"
	"github.com/fjod/nutstore/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartHandler serves one partition of the session cart: the shopping cart or
// the hamper builder.
type CartHandler struct {
	kind     domain.Kind
	sessions *session.Manager
	catalog  catalog.Reader
	rules    pricing.Rules
	timeout  time.Duration
	log      *zap.Logger
}

func NewCartHandler(kind domain.Kind, sessions *session.Manager, reader catalog.Reader, rules pricing.Rules, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		kind:     kind,
		sessions: sessions,
		catalog:  reader,
		rules:    rules,
		timeout:  timeout,
		log:      log,
	}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Variant   string `json:"variant"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	SessionID string            `json:"session_id"`
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`

	// Totals and the delivery hint only apply to the shopping cart.
	Totals                   *domain.Totals   `json:"totals,omitempty"`
	RemainingForFreeDelivery *decimal.Decimal `json:"remaining_for_free_delivery,omitempty"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.view(s))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	variant, ok := product.Variant(req.Variant)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_variant", "product has no variant "+req.Variant)
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	err = s.Update(ctx, func(st *session.State) error {
		st.Cart.AddItem(product.Candidate(variant), h.kind)
		return nil
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.view(s))
}

// UpdateQuantity sets an item's quantity. Zero or less removes the item.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}

	h.mutate(w, r, func(st *session.State) {
		st.Cart.SetQuantity(productID, variantParam(r), h.kind, *req.Quantity)
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, func(st *session.State) {
		st.Cart.RemoveItem(productID, variantParam(r), h.kind)
	})
}

// Clear empties this handler's partition. ?scope=all resets the whole
// session cart: both partitions, the coupon and the saved copy.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	switch scope {
	case "", string(h.kind):
		h.mutate(w, r, func(st *session.State) {
			st.Cart.ClearKind(h.kind)
		})
	case "all":
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		s, ok := h.session(w, r)
		if !ok {
			return
		}
		if err := s.Reset(ctx); err != nil {
			handleError(w, r, h.log, err)
			return
		}
		respondJSON(w, http.StatusOK, h.view(s))
	default:
		respondError(w, http.StatusBadRequest, "invalid_scope", "scope must be all or "+string(h.kind))
	}
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.State)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	err := s.Update(ctx, func(st *session.State) error {
		fn(st)
		return nil
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(s))
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(r.Context(), sessionID(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return nil, false
	}
	return s, true
}

func (h *CartHandler) view(s *session.Session) CartResponse {
	var resp CartResponse
	s.View(func(st session.State) {
		resp = CartResponse{
			SessionID: s.ID(),
			Items:     st.Cart.Items(h.kind),
			ItemCount: st.Cart.TotalItemCount(h.kind),
			Subtotal:  st.Cart.Subtotal(h.kind),
		}
		if h.kind == domain.KindStandard {
			totals := h.rules.Calculate(resp.Items, st.Coupon)
			remaining := h.rules.RemainingForFreeDelivery(totals.Subtotal)
			resp.Totals = &totals
			resp.RemainingForFreeDelivery = &remaining
		}
	})
	return resp
}

func variantParam(r *http.Request) string {
	if v := r.URL.Query().Get("variant"); v != "" {
		return v
	}
	return domain.DefaultVariantLabel
}
