// Package checkout prices a cart against the live catalog and opens a
// payment-gateway order for it.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/cart"
	"github.com/taskpro/storefront/internal/domain/catalog"
	"github.com/taskpro/storefront/internal/domain/coupon"
	"github.com/taskpro/storefront/internal/domain/order"
	"github.com/taskpro/storefront/internal/payment"
)

// ErrEmptyCart is returned when checkout is attempted with nothing to buy.
// A cart whose every product has been removed from the catalog counts as
// empty.
var ErrEmptyCart = errors.New("cart is empty")

// Currency is the gateway settlement currency. Amounts sent to the gateway
// are minor units of this currency.
const Currency = "INR"

var minorUnits = decimal.NewFromInt(100)

// Invoice is the priced snapshot of a cart at checkout time. It is held in
// the session and persisted as a pending checkout until payment confirmation
// turns it into an order.
type Invoice struct {
	OrderID    string          `json:"order_id"`
	Lines      []cart.Line     `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	CouponCode string          `json:"coupon_code,omitempty"`
}

// Pending is a durable pre-payment checkout snapshot keyed by the gateway
// order id. The reconciliation worker finalizes or discards stale rows.
type Pending struct {
	OrderID       string
	CustomerEmail string
	Invoice       Invoice
	Address       order.Address
	CreatedAt     time.Time
}

// PendingRepository persists checkout snapshots until payment settles.
type PendingRepository interface {
	Create(ctx context.Context, p *Pending) error
	ListStale(ctx context.Context, olderThan time.Duration) ([]Pending, error)
	Delete(ctx context.Context, orderID string) error
}

// Service prices carts and opens gateway orders.
type Service struct {
	catalog catalog.Store
	coupons coupon.Validator
	gateway payment.Gateway
	pending PendingRepository
}

// NewService creates a checkout Service.
func NewService(
	catalog catalog.Store,
	coupons coupon.Validator,
	gateway payment.Gateway,
	pending PendingRepository,
) *Service {
	return &Service{
		catalog: catalog,
		coupons: coupons,
		gateway: gateway,
		pending: pending,
	}
}

// Checkout prices the cart at live catalog prices, applies the coupon when
// one is given and valid (an unknown code simply yields no discount), opens a
// gateway order for the grand total in minor units, and records the snapshot
// durably. The returned invoice carries the gateway order id.
func (s *Service) Checkout(
	ctx context.Context,
	c cart.Cart,
	customerEmail string,
	addr order.Address,
	couponCode string,
) (*Invoice, error) {
	if len(c) == 0 {
		return nil, ErrEmptyCart
	}

	products, err := s.catalog.AllProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	lines := cart.Resolve(c, products)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := cart.Subtotal(lines)

	discount := decimal.Zero
	applied := ""
	if couponCode != "" {
		d, err := s.coupons.Validate(ctx, couponCode, subtotal)
		switch {
		case err == nil:
			discount = d.Amount
			applied = couponCode
		case errors.Is(err, coupon.ErrInvalidCoupon):
			// Unknown code: charge the full subtotal.
		default:
			return nil, errors.Wrap(err, "validate coupon")
		}
	}

	grand := subtotal.Sub(discount)
	if grand.IsNegative() {
		grand = decimal.Zero
	}
	grand = grand.Round(2)

	amount := grand.Mul(minorUnits).IntPart()
	orderID, err := s.gateway.CreateOrder(ctx, amount, Currency, true)
	if err != nil {
		return nil, errors.Wrap(err, "create gateway order")
	}

	inv := &Invoice{
		OrderID:    orderID,
		Lines:      lines,
		Subtotal:   subtotal,
		Discount:   discount,
		GrandTotal: grand,
		CouponCode: applied,
	}

	if err := s.pending.Create(ctx, &Pending{
		OrderID:       orderID,
		CustomerEmail: customerEmail,
		Invoice:       *inv,
		Address:       addr,
	}); err != nil {
		return nil, errors.Wrap(err, "record pending checkout")
	}
	return inv, nil
}

// ConfirmRequest converts a settled pending checkout into the order
// finalization input.
func (p *Pending) ConfirmRequest() order.ConfirmRequest {
	return order.ConfirmRequest{
		OrderID:       p.OrderID,
		CustomerEmail: p.CustomerEmail,
		Lines:         p.Invoice.Lines,
		Subtotal:      p.Invoice.Subtotal,
		Discount:      p.Invoice.Discount,
		GrandTotal:    p.Invoice.GrandTotal,
		CouponCode:    p.Invoice.CouponCode,
		Address:       p.Address,
	}
}
