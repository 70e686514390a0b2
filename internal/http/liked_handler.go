package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/liked"
	"go.uber.org/zap"
)

type LikedHandler struct {
	liked   *liked.Service
	catalog catalog.Reader
	timeout time.Duration
	log     *zap.Logger
}

func NewLikedHandler(svc *liked.Service, reader catalog.Reader, timeout time.Duration, log *zap.Logger) *LikedHandler {
	return &LikedHandler{liked: svc, catalog: reader, timeout: timeout, log: log}
}

type LikeRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type LikedResponse struct {
	Items []liked.Item `json:"items"`
	Count int          `json:"count"`
}

func (h *LikedHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.liked.List(ctx, sessionID(r.Context()))
	h.respond(w, r, http.StatusOK, items, err)
}

func (h *LikedHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LikeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	items, err := h.liked.Add(ctx, sessionID(r.Context()), liked.ItemFromProduct(*product))
	h.respond(w, r, http.StatusCreated, items, err)
}

func (h *LikedHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	items, err := h.liked.Remove(ctx, sessionID(r.Context()), productID)
	h.respond(w, r, http.StatusOK, items, err)
}

type LikedStatusResponse struct {
	ProductID int64 `json:"product_id"`
	Liked     bool  `json:"liked"`
}

func (h *LikedHandler) IsLiked(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	isLiked, err := h.liked.IsLiked(ctx, sessionID(r.Context()), productID)
	if err != nil {
		handleError(w, r, h.log, fmt.Errorf("%w: %w", errLikedUnavailable, err))
		return
	}
	respondJSON(w, http.StatusOK, LikedStatusResponse{ProductID: productID, Liked: isLiked})
}

func (h *LikedHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	err := h.liked.Clear(ctx, sessionID(r.Context()))
	h.respond(w, r, http.StatusOK, []liked.Item{}, err)
}

func (h *LikedHandler) respond(w http.ResponseWriter, r *http.Request, status int, items []liked.Item, err error) {
	if err != nil {
		handleError(w, r, h.log, fmt.Errorf("%w: %w", errLikedUnavailable, err))
		return
	}
	respondJSON(w, status, LikedResponse{Items: items, Count: len(items)})
}
