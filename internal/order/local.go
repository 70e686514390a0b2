package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/fjod/nutstore/internal/domain"
	"go.uber.org/zap"
)

const orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// LocalSubmitter accepts every order without sending it anywhere. It backs
// development setups that run without a database.
type LocalSubmitter struct {
	log    *zap.Logger
	random io.Reader
}

func NewLocalSubmitter(log *zap.Logger) *LocalSubmitter {
	return &LocalSubmitter{log: log, random: rand.Reader}
}

func (s *LocalSubmitter) Submit(ctx context.Context, snapshot domain.OrderSnapshot) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	id, err := newOrderNumber(s.random)
	if err != nil {
		return Result{}, err
	}
	s.log.Info("order accepted locally",
		zap.String("order_id", id),
		zap.String("session_id", snapshot.SessionID),
		zap.Int("lines", len(snapshot.Items)),
		zap.String("grand_total", snapshot.Totals.GrandTotal.StringFixed(2)))
	return Result{Accepted: true, OrderID: id}, nil
}

// newOrderNumber returns 8 upper-case alphanumerics drawn uniformly from r.
func newOrderNumber(r io.Reader) (string, error) {
	size := big.NewInt(int64(len(orderIDAlphabet)))
	b := make([]byte, 8)
	for i := range b {
		n, err := rand.Int(r, size)
		if err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		b[i] = orderIDAlphabet[n.Int64()]
	}
	return string(b), nil
}
