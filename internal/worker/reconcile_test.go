package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpro/storefront/internal/domain/cart"
	"github.com/taskpro/storefront/internal/domain/checkout"
	"github.com/taskpro/storefront/internal/domain/order"
	"github.com/taskpro/storefront/internal/payment"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type memPendingRepo struct {
	rows map[string]checkout.Pending
}

func newMemPendingRepo() *memPendingRepo {
	return &memPendingRepo{rows: make(map[string]checkout.Pending)}
}

func (m *memPendingRepo) Create(_ context.Context, p *checkout.Pending) error {
	m.rows[p.OrderID] = *p
	return nil
}

func (m *memPendingRepo) ListStale(_ context.Context, _ time.Duration) ([]checkout.Pending, error) {
	out := make([]checkout.Pending, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPendingRepo) Delete(_ context.Context, orderID string) error {
	delete(m.rows, orderID)
	return nil
}

type memOrderRepo struct {
	orders  map[string]*order.Order
	history map[string][]order.StatusEvent
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:  make(map[string]*order.Order),
		history: make(map[string][]order.StatusEvent),
	}
}

func (m *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	cp := *o
	m.orders[o.OrderID] = &cp
	m.history[o.OrderID] = []order.StatusEvent{{Status: o.Status}}
	return nil
}

func (m *memOrderRepo) Exists(_ context.Context, orderID string) (bool, error) {
	_, ok := m.orders[orderID]
	return ok, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, orderID string) (*order.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) ListByCustomer(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}

func (m *memOrderRepo) ListAll(_ context.Context) ([]order.Order, error) {
	return nil, nil
}

func (m *memOrderRepo) UpdateStatus(_ context.Context, orderID string, status order.Status) error {
	o, ok := m.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	m.history[orderID] = append(m.history[orderID], order.StatusEvent{Status: status})
	return nil
}

func (m *memOrderRepo) History(_ context.Context, orderID string) ([]order.StatusEvent, error) {
	return m.history[orderID], nil
}

func pendingFor(orderID string) *checkout.Pending {
	return &checkout.Pending{
		OrderID:       orderID,
		CustomerEmail: "jane@example.com",
		Invoice: checkout.Invoice{
			OrderID:    orderID,
			Lines:      []cart.Line{{Name: "Shirt", Price: d("500"), Quantity: 2, Total: d("1000")}},
			Subtotal:   d("1000"),
			Discount:   d("200"),
			GrandTotal: d("800"),
			CouponCode: "DISCOUNT20",
		},
		Address: order.Address{City: "Mumbai"},
	}
}

func TestSweep_RecoversPaidCheckout(t *testing.T) {
	ctx := context.Background()
	gw := payment.NewFakeGateway()
	pending := newMemPendingRepo()
	orderRepo := newMemOrderRepo()
	svc := order.NewService(orderRepo, nil)

	id, err := gw.CreateOrder(ctx, 80000, "INR", true)
	require.NoError(t, err)
	require.NoError(t, pending.Create(ctx, pendingFor(id)))
	gw.MarkPaid(id)

	r := NewReconciler(pending, svc, gw, time.Minute, time.Minute)
	require.NoError(t, r.Sweep(ctx))

	// Paid checkout became a durable order and the snapshot is gone.
	o, err := orderRepo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.True(t, d("800").Equal(o.GrandTotal))
	assert.Empty(t, pending.rows)
}

func TestSweep_DropsUnpaidCheckout(t *testing.T) {
	ctx := context.Background()
	gw := payment.NewFakeGateway()
	pending := newMemPendingRepo()
	orderRepo := newMemOrderRepo()
	svc := order.NewService(orderRepo, nil)

	id, err := gw.CreateOrder(ctx, 50000, "INR", true)
	require.NoError(t, err)
	require.NoError(t, pending.Create(ctx, pendingFor(id)))

	r := NewReconciler(pending, svc, gw, time.Minute, time.Minute)
	require.NoError(t, r.Sweep(ctx))

	// Unpaid snapshot discarded, no order created.
	assert.Empty(t, pending.rows)
	assert.Empty(t, orderRepo.orders)
}

func TestSweep_IdempotentWithConfirmedOrder(t *testing.T) {
	ctx := context.Background()
	gw := payment.NewFakeGateway()
	pending := newMemPendingRepo()
	orderRepo := newMemOrderRepo()
	svc := order.NewService(orderRepo, nil)

	id, err := gw.CreateOrder(ctx, 80000, "INR", true)
	require.NoError(t, err)
	p := pendingFor(id)
	require.NoError(t, pending.Create(ctx, p))
	gw.MarkPaid(id)

	// The confirmation callback already finalized the order, but the
	// snapshot delete raced and was lost.
	_, err = svc.Confirm(ctx, p.ConfirmRequest())
	require.NoError(t, err)

	r := NewReconciler(pending, svc, gw, time.Minute, time.Minute)
	require.NoError(t, r.Sweep(ctx))

	assert.Len(t, orderRepo.orders, 1)
	assert.Empty(t, pending.rows)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewReconciler(newMemPendingRepo(), order.NewService(newMemOrderRepo(), nil),
		payment.NewFakeGateway(), time.Millisecond, time.Minute)

	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
