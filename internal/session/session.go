// Package session keeps one cart and one applied coupon per shopper session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/nutstore/internal/cart"
	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/pricing"
	"github.com/fjod/nutstore/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUnavailable means the session's saved cart could not be loaded.
var ErrUnavailable = errors.New("session storage unavailable")

// Repository persists session carts. Implemented by repository.MongoRepository.
type Repository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.SavedCart, error)
	UpsertCart(ctx context.Context, cart *domain.SavedCart) error
	DeleteCart(ctx context.Context, sessionID string) error
}

// State is what a session owns. It is only reachable inside Update and View.
type State struct {
	Cart   *cart.Store
	Coupon string
}

type Session struct {
	id      string
	manager *Manager

	mu        sync.Mutex
	state     State
	createdAt time.Time

	// unix nanoseconds; read by the janitor without taking mu
	lastUsed atomic.Int64
}

func (s *Session) ID() string { return s.id }

func (s *Session) touch() {
	s.lastUsed.Store(s.manager.now().UnixNano())
}

func (s *Session) idleSince(cutoff time.Time) bool {
	return s.lastUsed.Load() < cutoff.UnixNano()
}

// View runs fn with the current state. fn must not keep references to it.
func (s *Session) View(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	fn(s.state)
}

// Update runs fn under the session lock and persists the state when fn
// succeeds. Concurrent updates of one session are applied one at a time; the
// last persisted write wins.
func (s *Session) Update(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := fn(&s.state); err != nil {
		return err
	}
	return s.manager.persist(ctx, s)
}

// ApplyCoupon replaces any applied coupon with code.
func (s *Session) ApplyCoupon(ctx context.Context, code string) error {
	if _, ok := s.manager.rules.LookupCoupon(code); !ok {
		return fmt.Errorf("%w: %q", pricing.ErrUnknownCoupon, code)
	}
	return s.Update(ctx, func(st *State) error {
		st.Coupon = code
		return nil
	})
}

func (s *Session) RemoveCoupon(ctx context.Context) error {
	return s.Update(ctx, func(st *State) error {
		st.Coupon = ""
		return nil
	})
}

// Reset empties both cart partitions, drops the coupon and deletes the saved
// cart.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.state.Cart.Clear()
	s.state.Coupon = ""
	return s.manager.forget(ctx, s.id)
}

// Manager hands out sessions by id, loading saved carts on first use.
type Manager struct {
	repo  Repository
	rules pricing.Rules
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	loads    singleflight.Group
}

// NewManager returns a manager that persists through repo. A nil repo keeps
// sessions in memory only.
func NewManager(repo Repository, rules pricing.Rules, log *zap.Logger) *Manager {
	return &Manager{
		repo:     repo,
		rules:    rules,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	// touched under mu so a concurrent EvictIdle sees the session in use
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		s.touch()
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.loads.Do(id, func() (any, error) {
		m.mu.Lock()
		if s, ok := m.sessions[id]; ok {
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()

		s, err := m.load(ctx, id)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s := v.(*Session)
	s.touch()
	return s, nil
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	now := m.now()
	s := &Session{
		id:        id,
		manager:   m,
		state:     State{Cart: cart.NewStore()},
		createdAt: now,
	}
	s.touch()
	if m.repo == nil {
		return s, nil
	}

	saved, err := m.repo.GetCart(ctx, id)
	if errors.Is(err, repository.ErrCartNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.state.Cart = cart.Restore(saved.Items)
	if _, ok := m.rules.LookupCoupon(saved.Coupon); ok {
		s.state.Coupon = saved.Coupon
	}
	if !saved.CreatedAt.IsZero() {
		s.createdAt = saved.CreatedAt
	}
	return s, nil
}

func (m *Manager) persist(ctx context.Context, s *Session) error {
	if m.repo == nil {
		return nil
	}
	err := m.repo.UpsertCart(ctx, &domain.SavedCart{
		SessionID: s.id,
		Items:     s.state.Cart.Snapshot(),
		Coupon:    s.state.Coupon,
		CreatedAt: s.createdAt,
	})
	if err != nil {
		m.log.Error("failed to save cart", zap.String("session_id", s.id), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (m *Manager) forget(ctx context.Context, id string) error {
	if m.repo == nil {
		return nil
	}
	err := m.repo.DeleteCart(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		m.log.Error("failed to delete cart", zap.String("session_id", id), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// EvictIdle drops sessions unused for longer than idle. Sessions that are
// locked by a request in flight are skipped until a later pass. Persisted
// carts are reloaded on the next request.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		if !s.idleSince(cutoff) || !s.mu.TryLock() {
			continue
		}
		if s.idleSince(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := m.EvictIdle(idle); n > 0 {
				m.log.Debug("evicted idle sessions", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
