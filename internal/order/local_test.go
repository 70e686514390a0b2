package order

import (
	"context"
	"crypto/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLocalSubmitter_AcceptsWithShortID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLocalSubmitter(zap.New(core))

	res, err := s.Submit(context.Background(), newTestSnapshot("session-1"))

	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), res.OrderID)
	require.Equal(t, 1, logs.FilterMessage("order accepted locally").Len())
	assert.Equal(t, "2960.00", logs.All()[0].ContextMap()["grand_total"])
}

func TestLocalSubmitter_IDsDiffer(t *testing.T) {
	s := NewLocalSubmitter(zap.NewNop())
	seen := make(map[string]bool)
	for range 50 {
		res, err := s.Submit(context.Background(), newTestSnapshot("session-1"))
		require.NoError(t, err)
		seen[res.OrderID] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestLocalSubmitter_CancelledContext(t *testing.T) {
	s := NewLocalSubmitter(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Submit(ctx, newTestSnapshot("session-1"))

	assert.ErrorIs(t, err, context.Canceled)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errNetwork }

func TestLocalSubmitter_RandomSourceFailure(t *testing.T) {
	s := NewLocalSubmitter(zap.NewNop())
	s.random = failingReader{}

	res, err := s.Submit(context.Background(), newTestSnapshot("session-1"))

	assert.ErrorIs(t, err, errNetwork)
	assert.False(t, res.Accepted)
}

func TestNewOrderNumber_UsesWholeAlphabet(t *testing.T) {
	seen := make(map[rune]bool)
	for range 200 {
		id, err := newOrderNumber(rand.Reader)
		require.NoError(t, err)
		for _, c := range id {
			seen[c] = true
		}
	}
	assert.Len(t, seen, len(orderIDAlphabet))
}
