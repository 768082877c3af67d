package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/cart"
)

// Sentinel errors for order lookups and lifecycle.
var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// Status is an order's fulfilment state. Orders move strictly forward through
// pending, processing, shipped, delivered; cancelled is reachable from any
// non-terminal state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var statusRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseStatus validates a status string from the wire.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Address is a shipping address captured at checkout.
type Address struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

// Order is a finalized customer order. OrderID is the payment gateway's order
// id and is the primary key: one gateway order produces at most one Order.
type Order struct {
	OrderID         string
	CustomerEmail   string
	Lines           []cart.Line
	TotalAmount     decimal.Decimal
	DiscountAmount  decimal.Decimal
	GrandTotal      decimal.Decimal
	CouponCode      string
	ShippingAddress Address
	Status          Status
	PaymentStatus   string
	CreatedAt       time.Time
}

// StatusEvent is one entry of an order's append-only status history.
type StatusEvent struct {
	Status    Status
	CreatedAt time.Time
}

// Repository defines persistence for orders and their status history.
// Create records the order together with its initial history entry, and
// UpdateStatus appends a history entry for the new status.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Exists(ctx context.Context, orderID string) (bool, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByCustomer(ctx context.Context, email string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
	History(ctx context.Context, orderID string) ([]StatusEvent, error)
}
