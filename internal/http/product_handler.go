package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog catalog.Reader
	timeout time.Duration
	log     *zap.Logger
}

func NewProductHandler(reader catalog.Reader, timeout time.Duration, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: reader, timeout: timeout, log: log}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// List serves the catalog, one category or one flag, filtered and sorted.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter, err := parseFilter(q.Get)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	var products []domain.Product
	switch {
	case q.Get("category") != "":
		products, err = h.catalog.GetByCategory(ctx, q.Get("category"))
	case q.Get("flag") != "":
		flag := domain.Flag(q.Get("flag"))
		if !flag.Valid() {
			respondError(w, http.StatusBadRequest, "invalid_flag", "flag must be bestseller or new")
			return
		}
		products, err = h.catalog.GetFlagged(ctx, flag)
	default:
		products, err = h.catalog.GetAll(ctx)
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	products = catalog.Browse(products, filter, catalog.ParseSortBy(q.Get("sort")))
	respondJSON(w, http.StatusOK, ProductsResponse{Products: products, Count: len(products)})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.GetByID(ctx, id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return id, true
}

type badParam struct {
	name string
}

func (e badParam) Error() string {
	return "invalid value for " + e.name
}

func parseFilter(get func(string) string) (catalog.Filter, error) {
	var f catalog.Filter

	for _, p := range []struct {
		name string
		dst  *decimal.NullDecimal
	}{
		{"min_price", &f.MinPrice},
		{"max_price", &f.MaxPrice},
	} {
		if v := get(p.name); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return f, badParam{p.name}
			}
			*p.dst = decimal.NewNullDecimal(d)
		}
	}

	f.Tags = splitParam(get("tags"))
	f.Categories = splitParam(get("categories"))

	for _, p := range []struct {
		name string
		dst  *bool
	}{
		{"in_stock", &f.InStockOnly},
		{"bestseller", &f.BestsellersOnly},
		{"new", &f.NewOnly},
	} {
		if v := get(p.name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return f, badParam{p.name}
			}
			*p.dst = b
		}
	}

	if v := get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 || rating > 5 {
			return f, badParam{"min_rating"}
		}
		f.MinRating = rating
	}
	return f, nil
}

func splitParam(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
