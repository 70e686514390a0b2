package http

import (
	"net/http"
	"time"

	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/checkout"
	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/enquiry"
	"github.com/fjod/nutstore/internal/liked"
	"github.com/fjod/nutstore/internal/pricing"
	"github.com/fjod/nutstore/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Catalog   catalog.Reader
	Sessions  *session.Manager
	Checkout  *checkout.Service
	Liked     *liked.Service
	Enquiries *enquiry.Service
	Orders    OrderReader // nil unless orders are stored in Postgres
	Rules     pricing.Rules
	Log       *zap.Logger

	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

func NewRouter(d Deps) http.Handler {
	products := NewProductHandler(d.Catalog, d.RequestTimeout, d.Log)
	cart := NewCartHandler(domain.KindStandard, d.Sessions, d.Catalog, d.Rules, d.RequestTimeout, d.Log)
	hamper := NewCartHandler(domain.KindHamperComponent, d.Sessions, d.Catalog, d.Rules, d.RequestTimeout, d.Log)
	checkouts := NewCheckoutHandler(d.Sessions, d.Checkout, d.RequestTimeout, d.Log)
	likes := NewLikedHandler(d.Liked, d.Catalog, d.RequestTimeout, d.Log)
	enquiries := NewEnquiryHandler(d.Enquiries, d.RequestTimeout, d.Log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.Compress(5))
	if d.MaxRequestBodySize > 0 {
		r.Use(limitBody(d.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/{product_id}", products.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			itemRoutes(r, cart)
			r.Post("/coupon", cart.ApplyCoupon)
			r.Delete("/coupon", cart.RemoveCoupon)
		})
		r.Route("/hamper", func(r chi.Router) {
			itemRoutes(r, hamper)
		})

		r.Post("/checkout", checkouts.PlaceOrder)
		if d.Orders != nil {
			orders := NewOrdersHandler(d.Orders, d.RequestTimeout, d.Log)
			r.Get("/orders/{order_id}", orders.GetOrder)
		}

		r.Route("/liked", func(r chi.Router) {
			r.Get("/", likes.List)
			r.Post("/", likes.Add)
			r.Delete("/", likes.Clear)
			r.Get("/{product_id}", likes.IsLiked)
			r.Delete("/{product_id}", likes.Remove)
		})

		r.Route("/enquiries", func(r chi.Router) {
			r.Get("/", enquiries.List)
			r.Post("/", enquiries.Submit)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

func itemRoutes(r chi.Router, h *CartHandler) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Put("/items/{product_id}", h.UpdateQuantity)
	r.Delete("/items/{product_id}", h.RemoveItem)
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
