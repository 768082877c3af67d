package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FakeGateway is an in-memory Gateway for tests and local development. Orders
// are created unpaid; MarkPaid flips them.
type FakeGateway struct {
	mu     sync.RWMutex
	paid   map[string]bool
	amount map[string]int64
}

// NewFakeGateway returns an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		paid:   make(map[string]bool),
		amount: make(map[string]int64),
	}
}

func (g *FakeGateway) CreateOrder(_ context.Context, amount int64, _ string, _ bool) (string, error) {
	id := "order_" + uuid.NewString()
	g.mu.Lock()
	g.paid[id] = false
	g.amount[id] = amount
	g.mu.Unlock()
	return id, nil
}

func (g *FakeGateway) CheckStatus(_ context.Context, orderID string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paid[orderID], nil
}

// MarkPaid records the order as paid, as if the customer completed the
// provider's payment flow.
func (g *FakeGateway) MarkPaid(orderID string) {
	g.mu.Lock()
	g.paid[orderID] = true
	g.mu.Unlock()
}

// Amount returns the minor-unit amount the order was created with.
func (g *FakeGateway) Amount(orderID string) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.amount[orderID]
}
