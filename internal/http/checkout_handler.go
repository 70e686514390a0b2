package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/nutstore/internal/checkout"
	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/session"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	sessions *session.Manager
	checkout *checkout.Service
	timeout  time.Duration
	log      *zap.Logger
}

func NewCheckoutHandler(sessions *session.Manager, svc *checkout.Service, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, checkout: svc, timeout: timeout, log: log}
}

type CheckoutRequestDTO struct {
	Customer domain.Customer `json:"customer"`
}

type CheckoutResponse struct {
	OrderID  string        `json:"order_id"`
	Totals   domain.Totals `json:"totals"`
	PlacedAt time.Time     `json:"placed_at"`
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s, err := h.sessions.Get(ctx, sessionID(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	var conf *checkout.Confirmation
	err = s.Update(ctx, func(st *session.State) error {
		c, err := h.checkout.PlaceOrder(ctx, st.Cart, s.ID(), st.Coupon, req.Customer)
		if err != nil {
			return err
		}
		conf = c
		st.Coupon = ""
		return nil
	})
	if err != nil {
		if conf == nil || !errors.Is(err, session.ErrUnavailable) {
			handleError(w, r, h.log, err)
			return
		}
		// the order went through; only saving the emptied cart failed
		h.log.Warn("order placed but cart not saved",
			zap.String("order_id", conf.OrderID), zap.Error(err))
	}

	respondJSON(w, http.StatusCreated, CheckoutResponse{
		OrderID:  conf.OrderID,
		Totals:   conf.Snapshot.Totals,
		PlacedAt: conf.Snapshot.PlacedAt,
	})
}
