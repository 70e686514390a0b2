package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/nutstore/internal/cache"
	"github.com/fjod/nutstore/internal/catalog"
	"github.com/fjod/nutstore/internal/checkout"
	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/enquiry"
	"github.com/fjod/nutstore/internal/liked"
	"github.com/fjod/nutstore/internal/order"
	"github.com/fjod/nutstore/internal/pricing"
	"github.com/fjod/nutstore/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSubmitter struct {
	Result order.Result
	Err    error
	Calls  int
}

func (m *MockSubmitter) Submit(_ context.Context, snapshot domain.OrderSnapshot) (order.Result, error) {
	m.Calls++
	if m.Err != nil {
		return order.Result{}, m.Err
	}
	res := m.Result
	if res.Accepted && res.OrderID == "" {
		res.OrderID = snapshot.ID.String()
	}
	return res, nil
}

// downReader fails every call the way a tripped catalog backend does.
type downReader struct{}

func (downReader) GetByID(context.Context, int64) (*domain.Product, error) {
	return nil, catalog.ErrUnavailable
}

func (downReader) GetByCategory(context.Context, string) ([]domain.Product, error) {
	return nil, catalog.ErrUnavailable
}

func (downReader) GetFlagged(context.Context, domain.Flag) ([]domain.Product, error) {
	return nil, catalog.ErrUnavailable
}

func (downReader) GetAll(context.Context) ([]domain.Product, error) {
	return nil, catalog.ErrUnavailable
}

type testServer struct {
	handler   http.Handler
	submitter *MockSubmitter
	sessionID string
}

type serverOption func(*Deps)

func withReader(r catalog.Reader) serverOption {
	return func(d *Deps) { d.Catalog = r }
}

func withLikedStore(s liked.Store) serverOption {
	return func(d *Deps) { d.Liked = liked.NewService(s) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	rules := pricing.DefaultRules()
	log := zap.NewNop()
	sub := &MockSubmitter{Result: order.Result{Accepted: true}}

	d := Deps{
		Catalog:            catalog.NewStaticReader(catalog.SeedProducts()),
		Sessions:           session.NewManager(nil, rules, log),
		Checkout:           checkout.NewService(rules, sub, log),
		Liked:              liked.NewService(cache.NewMemoryCache()),
		Enquiries:          enquiry.NewService(enquiry.NewMemoryRepository(), log),
		Rules:              rules,
		Log:                log,
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	for _, opt := range opts {
		opt(&d)
	}

	return &testServer{handler: NewRouter(d), submitter: sub, sessionID: uuid.NewString()}
}

// do sends a request in the server's session and returns the recorder.
func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, s.sessionID)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, rec).Code
}
