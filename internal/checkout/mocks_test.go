package checkout

import (
	"context"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/fjod/nutstore/internal/order"
)

// MockSubmitter records every snapshot it is handed.
type MockSubmitter struct {
	Result    order.Result
	Err       error
	Submitted []domain.OrderSnapshot
}

func (m *MockSubmitter) Submit(_ context.Context, snapshot domain.OrderSnapshot) (order.Result, error) {
	m.Submitted = append(m.Submitted, snapshot)
	return m.Result, m.Err
}
