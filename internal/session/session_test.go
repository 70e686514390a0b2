package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/pricing"
	"github.com/fjod/nutstore/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository keeps saved carts in a map.
type MockRepository struct {
	mu       sync.Mutex
	carts    map[string]domain.SavedCart
	getErr   error
	saveErr  error
	getCalls int
}

func newMockRepository() *MockRepository {
	return &MockRepository{carts: make(map[string]domain.SavedCart)}
}

func (m *MockRepository) GetCart(_ context.Context, sessionID string) (*domain.SavedCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return &c, nil
}

func (m *MockRepository) UpsertCart(_ context.Context, cart *domain.SavedCart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[cart.SessionID] = *cart
	return nil
}

func (m *MockRepository) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.carts[sessionID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, sessionID)
	return nil
}

func cashews() domain.Candidate {
	return domain.Candidate{ProductID: 1, Name: "Premium Cashew Nuts", UnitPrice: decimal.NewFromInt(1450), VariantLabel: "250g"}
}

func TestManager_GetReturnsSameSession(t *testing.T) {
	m := NewManager(nil, pricing.DefaultRules(), zap.NewNop())
	ctx := context.Background()

	a, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	b, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	c, err := m.Get(ctx, "s2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestSession_UpdatePersists(t *testing.T) {
	repo := newMockRepository()
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())
	ctx := context.Background()

	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, func(st *State) error {
		st.Cart.AddItem(cashews(), domain.KindStandard)
		st.Cart.AddItem(cashews(), domain.KindStandard)
		return nil
	}))

	saved := repo.carts["s1"]
	require.Len(t, saved.Items, 1)
	assert.Equal(t, 2, saved.Items[0].Quantity)
}

func TestSession_FailedUpdateIsNotPersisted(t *testing.T) {
	repo := newMockRepository()
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())
	ctx := context.Background()
	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Update(ctx, func(*State) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, repo.carts, "s1")
}

func TestManager_LoadsSavedCart(t *testing.T) {
	repo := newMockRepository()
	repo.carts["s1"] = domain.SavedCart{
		SessionID: "s1",
		Items: []domain.LineItem{
			{ProductID: 1, UnitPrice: decimal.NewFromInt(1450), VariantLabel: "250g", Quantity: 3, Kind: domain.KindStandard},
			{ProductID: 2, UnitPrice: decimal.NewFromInt(900), VariantLabel: "250g", Quantity: 0, Kind: domain.KindStandard},
		},
		Coupon: "WELCOME10",
	}
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())

	s, err := m.Get(context.Background(), "s1")
	require.NoError(t, err)

	s.View(func(st State) {
		assert.Equal(t, 3, st.Cart.TotalItemCount())
		assert.Len(t, st.Cart.Items(domain.KindStandard), 1)
		assert.Equal(t, "WELCOME10", st.Coupon)
	})
}

func TestManager_DropsRetiredCouponOnLoad(t *testing.T) {
	repo := newMockRepository()
	repo.carts["s1"] = domain.SavedCart{SessionID: "s1", Coupon: "SUMMER50"}
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())

	s, err := m.Get(context.Background(), "s1")
	require.NoError(t, err)

	s.View(func(st State) { assert.Empty(t, st.Coupon) })
}

func TestManager_LoadFailureIsUnavailable(t *testing.T) {
	repo := newMockRepository()
	repo.getErr = errors.New("server selection timeout")
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())

	_, err := m.Get(context.Background(), "s1")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestManager_ConcurrentGetLoadsOnce(t *testing.T) {
	repo := newMockRepository()
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())

	var wg sync.WaitGroup
	sessions := make([]*Session, 20)
	for i := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Get(context.Background(), "s1")
			assert.NoError(t, err)
			sessions[i] = s
		}()
	}
	wg.Wait()

	for _, s := range sessions {
		assert.Same(t, sessions[0], s)
	}
}

func TestSession_ConcurrentUpdatesAreSerialized(t *testing.T) {
	m := NewManager(newMockRepository(), pricing.DefaultRules(), zap.NewNop())
	ctx := context.Background()
	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, func(st *State) error {
				st.Cart.AddItem(cashews(), domain.KindStandard)
				return nil
			})
		}()
	}
	wg.Wait()

	s.View(func(st State) { assert.Equal(t, 50, st.Cart.TotalItemCount()) })
}

func TestSession_ApplyCoupon(t *testing.T) {
	m := NewManager(nil, pricing.DefaultRules(), zap.NewNop())
	ctx := context.Background()
	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, s.ApplyCoupon(ctx, "WELCOME10"))
	s.View(func(st State) { assert.Equal(t, "WELCOME10", st.Coupon) })

	err = s.ApplyCoupon(ctx, "welcome10")
	assert.ErrorIs(t, err, pricing.ErrUnknownCoupon)
	s.View(func(st State) { assert.Equal(t, "WELCOME10", st.Coupon, "unknown code keeps the applied one") })

	require.NoError(t, s.RemoveCoupon(ctx))
	s.View(func(st State) { assert.Empty(t, st.Coupon) })
}

func TestSession_ApplyCouponReplaces(t *testing.T) {
	rules := pricing.DefaultRules()
	rules.Coupons["FESTIVE20"] = decimal.RequireFromString("0.20")
	m := NewManager(nil, rules, zap.NewNop())
	ctx := context.Background()
	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, s.ApplyCoupon(ctx, "WELCOME10"))
	require.NoError(t, s.ApplyCoupon(ctx, "FESTIVE20"))

	s.View(func(st State) { assert.Equal(t, "FESTIVE20", st.Coupon) })
}

func TestManager_EvictIdle(t *testing.T) {
	repo := newMockRepository()
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	old, err := m.Get(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, old.Update(ctx, func(st *State) error {
		st.Cart.AddItem(cashews(), domain.KindStandard)
		return nil
	}))

	clock = clock.Add(time.Hour)
	_, err = m.Get(ctx, "fresh")
	require.NoError(t, err)

	assert.Equal(t, 1, m.EvictIdle(30*time.Minute))

	reloaded, err := m.Get(ctx, "old")
	require.NoError(t, err)
	assert.NotSame(t, old, reloaded)
	reloaded.View(func(st State) { assert.Equal(t, 1, st.Cart.TotalItemCount()) })
}

func TestManager_EvictIdleSkipsLockedSessionWithoutBlocking(t *testing.T) {
	m := NewManager(nil, pricing.DefaultRules(), zap.NewNop())
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	busy, err := m.Get(ctx, "busy")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- busy.Update(ctx, func(st *State) error {
			close(entered)
			<-release
			st.Cart.AddItem(cashews(), domain.KindStandard)
			return nil
		})
	}()
	<-entered
	clock = clock.Add(time.Hour)

	start := time.Now()
	assert.Equal(t, 0, m.EvictIdle(30*time.Minute))
	_, err = m.Get(ctx, "other")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(release)
	require.NoError(t, <-done)

	same, err := m.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Same(t, busy, same)
	same.View(func(st State) { assert.Equal(t, 1, st.Cart.TotalItemCount()) })

	clock = clock.Add(time.Hour)
	assert.Equal(t, 2, m.EvictIdle(30*time.Minute))
}

func TestManager_GetKeepsSessionAlive(t *testing.T) {
	m := NewManager(nil, pricing.DefaultRules(), zap.NewNop())
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	first, err := m.Get(ctx, "s1")
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, err = m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, m.EvictIdle(30*time.Minute))

	again, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestSession_ResetDeletesSavedCart(t *testing.T) {
	repo := newMockRepository()
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())
	ctx := context.Background()

	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, func(st *State) error {
		st.Cart.AddItem(cashews(), domain.KindStandard)
		st.Cart.AddItem(cashews(), domain.KindHamperComponent)
		return nil
	}))
	require.NoError(t, s.ApplyCoupon(ctx, "WELCOME10"))

	require.NoError(t, s.Reset(ctx))

	s.View(func(st State) {
		assert.Zero(t, st.Cart.TotalItemCount())
		assert.Empty(t, st.Coupon)
	})
	_, err = repo.GetCart(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrCartNotFound)

	// nothing saved any more; a second reset is still fine
	require.NoError(t, s.Reset(ctx))
}

func TestSession_ResetStorageFailure(t *testing.T) {
	repo := newMockRepository()
	m := NewManager(repo, pricing.DefaultRules(), zap.NewNop())
	ctx := context.Background()

	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	repo.saveErr = errors.New("mongo down")

	assert.ErrorIs(t, s.Reset(ctx), ErrUnavailable)
}
