package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ApplyCouponRequestDTO struct {
	Code string `json:"code"`
}

// ApplyCoupon replaces the session's coupon. Codes are matched exactly.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ApplyCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ApplyCoupon(ctx, strings.TrimSpace(req.Code)); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(s))
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.RemoveCoupon(ctx); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(s))
}
