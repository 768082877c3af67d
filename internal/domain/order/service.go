package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/cart"
)

// PaymentCompleted is the payment state recorded on every finalized order.
// Orders are only written after the gateway confirms the charge.
const PaymentCompleted = "completed"

// Notifier receives order lifecycle events. Implementations must not block
// order processing on delivery failures.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order)
	OrderStatusChanged(ctx context.Context, o *Order, status Status)
}

// ConfirmRequest holds the checkout snapshot that becomes a durable order
// once payment is verified.
type ConfirmRequest struct {
	OrderID        string
	CustomerEmail  string
	Lines          []cart.Line
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	GrandTotal     decimal.Decimal
	CouponCode     string
	Address        Address
}

// Service encapsulates order finalization and fulfilment logic.
type Service struct {
	orders   Repository
	notifier Notifier
}

// NewService creates an order Service.
func NewService(orders Repository, notifier Notifier) *Service {
	return &Service{orders: orders, notifier: notifier}
}

// Confirm finalizes a paid checkout into a durable order. It is idempotent on
// the gateway order id: a repeated confirmation returns the already-stored
// order without creating a duplicate or re-notifying.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*Order, error) {
	exists, err := s.orders.Exists(ctx, req.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "check order")
	}
	if exists {
		o, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, errors.Wrap(err, "get order")
		}
		return o, nil
	}

	o := &Order{
		OrderID:         req.OrderID,
		CustomerEmail:   req.CustomerEmail,
		Lines:           req.Lines,
		TotalAmount:     req.Subtotal,
		DiscountAmount:  req.Discount,
		GrandTotal:      req.GrandTotal,
		CouponCode:      req.CouponCode,
		ShippingAddress: req.Address,
		Status:          StatusPending,
		PaymentStatus:   PaymentCompleted,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, o)
	}
	return o, nil
}

// Track returns an order with its full status history.
func (s *Service) Track(ctx context.Context, orderID string) (*Order, []StatusEvent, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.orders.History(ctx, orderID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load history")
	}
	return o, history, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (s *Service) ListByCustomer(ctx context.Context, email string) ([]Order, error) {
	return s.orders.ListByCustomer(ctx, email)
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// AdvanceStatus moves an order to the given status, appending to its history.
// Backward moves and transitions out of terminal states are rejected with
// ErrInvalidTransition.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(next) {
		return nil, errors.Wrapf(ErrInvalidTransition, "%s to %s", o.Status, next)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = next

	if s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, o, next)
	}
	return o, nil
}

// Cancel moves an order to cancelled.
func (s *Service) Cancel(ctx context.Context, orderID string) (*Order, error) {
	return s.AdvanceStatus(ctx, orderID, StatusCancelled)
}
