package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/enquiry"
	"go.uber.org/zap"
)

type EnquiryHandler struct {
	enquiries *enquiry.Service
	timeout   time.Duration
	log       *zap.Logger
}

func NewEnquiryHandler(svc *enquiry.Service, timeout time.Duration, log *zap.Logger) *EnquiryHandler {
	return &EnquiryHandler{enquiries: svc, timeout: timeout, log: log}
}

func (h *EnquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Enquiry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	saved, err := h.enquiries.Submit(ctx, req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (h *EnquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.enquiries.List(ctx, domain.EnquiryType(r.URL.Query().Get("type")))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"enquiries": list, "count": len(list)})
}
