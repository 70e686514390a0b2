package http

import (
	"net/http"
	"testing"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertDecimal(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: want %d, got %s", msg, want, got)
}

func TestSessionHeader(t *testing.T) {
	srv := newTestServer(t)

	t.Run("echoes a valid id", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/v1/cart", nil)
		assert.Equal(t, srv.sessionID, rec.Header().Get(SessionHeader))
	})

	t.Run("issues an id when missing or malformed", func(t *testing.T) {
		for _, id := range []string{"", "not-a-uuid"} {
			other := *srv
			other.sessionID = id
			rec := other.do(t, http.MethodGet, "/api/v1/cart", nil)

			issued := rec.Header().Get(SessionHeader)
			_, err := uuid.Parse(issued)
			assert.NoError(t, err)
			assert.NotEqual(t, srv.sessionID, issued)
		}
	})

	t.Run("health is outside the session scope", func(t *testing.T) {
		other := *srv
		other.sessionID = ""
		rec := other.do(t, http.MethodGet, "/health", nil)
		assert.Empty(t, rec.Header().Get(SessionHeader))
	})
}

func TestCart_AddMergesAndPrices(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Variant: "500g"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[CartResponse](t, rec)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, domain.KindStandard, resp.Items[0].Kind)
	require.NotNil(t, resp.Totals)
	assertDecimal(t, 2850, resp.Totals.Subtotal, "subtotal")
	assertDecimal(t, 350, resp.Totals.DeliveryCharge, "delivery")
	assertDecimal(t, 3200, resp.Totals.GrandTotal, "grand total")
	assertDecimal(t, 150, *resp.RemainingForFreeDelivery, "remaining")

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Variant: "500g"})
	resp = decode[CartResponse](t, rec)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, 2, resp.ItemCount)
	assertDecimal(t, 5700, resp.Totals.Subtotal, "subtotal")
	assertDecimal(t, 0, resp.Totals.DeliveryCharge, "delivery")
	assertDecimal(t, 0, *resp.RemainingForFreeDelivery, "remaining")
}

func TestCart_AddRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing product", AddItemRequestDTO{Variant: "500g"}, http.StatusBadRequest, "invalid_product_id"},
		{"unknown product", AddItemRequestDTO{ProductID: 9999}, http.StatusNotFound, "product_not_found"},
		{"unknown variant", AddItemRequestDTO{ProductID: 1, Variant: "2kg"}, http.StatusBadRequest, "invalid_variant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}

	rec := srv.do(t, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decode[CartResponse](t, rec).Items)
}

func TestCart_AddWhileCatalogDown(t *testing.T) {
	srv := newTestServer(t, withReader(downReader{}))

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "catalog_unavailable", errorCode(t, rec))
}

func TestCart_UpdateQuantity(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 3, Variant: "250g"})

	qty := func(n int) UpdateQuantityRequestDTO { return UpdateQuantityRequestDTO{Quantity: &n} }

	rec := srv.do(t, http.MethodPut, "/api/v1/cart/items/3?variant=250g", qty(4))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CartResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 4, resp.Items[0].Quantity)

	rec = srv.do(t, http.MethodPut, "/api/v1/cart/items/3?variant=250g", qty(250))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[CartResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 250, resp.Items[0].Quantity)
	assertDecimal(t, 295000, resp.Totals.Subtotal, "subtotal")

	rec = srv.do(t, http.MethodPut, "/api/v1/cart/items/3?variant=250g", UpdateQuantityRequestDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/v1/cart/items/3?variant=250g", qty(0))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartResponse](t, rec).Items)
}

func TestCart_RemoveItemOnlyTouchesMatchingKey(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Variant: "100g"})
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Variant: "1kg"})

	rec := srv.do(t, http.MethodDelete, "/api/v1/cart/items/1?variant=100g", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CartResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "1kg", resp.Items[0].VariantLabel)
}

func TestHamper_IsPartitionedFromCart(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 101})

	rec := srv.do(t, http.MethodPost, "/api/v1/hamper/items", AddItemRequestDTO{ProductID: 101})
	require.Equal(t, http.StatusCreated, rec.Code)
	hamper := decode[CartResponse](t, rec)

	require.Len(t, hamper.Items, 1)
	assert.Equal(t, domain.KindHamperComponent, hamper.Items[0].Kind)
	assert.Equal(t, 1, hamper.Items[0].Quantity)
	assert.Nil(t, hamper.Totals)
	assert.Nil(t, hamper.RemainingForFreeDelivery)

	cart := decode[CartResponse](t, srv.do(t, http.MethodGet, "/api/v1/cart", nil))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, domain.KindStandard, cart.Items[0].Kind)
	assertDecimal(t, 4500, cart.Totals.Subtotal, "hamper components stay out of the cart subtotal")

	rec = srv.do(t, http.MethodDelete, "/api/v1/hamper", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartResponse](t, rec).Items)

	cart = decode[CartResponse](t, srv.do(t, http.MethodGet, "/api/v1/cart", nil))
	assert.Len(t, cart.Items, 1)
}

func TestCart_ClearScope(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 2})
	srv.do(t, http.MethodPost, "/api/v1/hamper/items", AddItemRequestDTO{ProductID: 102})

	rec := srv.do(t, http.MethodDelete, "/api/v1/cart?scope=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/cart?scope=standard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[CartResponse](t, srv.do(t, http.MethodGet, "/api/v1/hamper", nil)).Items, 1)

	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 2})
	srv.do(t, http.MethodPost, "/api/v1/cart/coupon", ApplyCouponRequestDTO{Code: "WELCOME10"})
	rec = srv.do(t, http.MethodDelete, "/api/v1/cart?scope=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartResponse](t, rec).Totals.CouponCode)
	assert.Empty(t, decode[CartResponse](t, srv.do(t, http.MethodGet, "/api/v1/cart", nil)).Items)
	assert.Empty(t, decode[CartResponse](t, srv.do(t, http.MethodGet, "/api/v1/hamper", nil)).Items)
}

func TestCart_Coupon(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Variant: "500g"})

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/coupon", ApplyCouponRequestDTO{Code: "welcome10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_coupon", errorCode(t, rec))

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/coupon", ApplyCouponRequestDTO{Code: "WELCOME10"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CartResponse](t, rec)
	assert.Equal(t, "WELCOME10", resp.Totals.CouponCode)
	assertDecimal(t, 285, resp.Totals.Discount, "discount")
	assertDecimal(t, 2915, resp.Totals.GrandTotal, "grand total")

	rec = srv.do(t, http.MethodDelete, "/api/v1/cart/coupon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[CartResponse](t, rec)
	assert.Empty(t, resp.Totals.CouponCode)
	assertDecimal(t, 0, resp.Totals.Discount, "discount")
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 4})

	other := *srv
	other.sessionID = uuid.NewString()
	rec := other.do(t, http.MethodGet, "/api/v1/cart", nil)

	assert.Empty(t, decode[CartResponse](t, rec).Items)
}

func TestCart_QuantityIsUnboundedAbove(t *testing.T) {
	srv := newTestServer(t)
	for range 100 {
		srv.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 1, Variant: "500g"})
	}

	cart := decode[CartResponse](t, srv.do(t, http.MethodGet, "/api/v1/cart", nil))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 100, cart.Items[0].Quantity)

	n := 100
	rec := srv.do(t, http.MethodPut, "/api/v1/cart/items/1?variant=500g", UpdateQuantityRequestDTO{Quantity: &n})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 100, decode[CartResponse](t, rec).Items[0].Quantity)
}
