// Package notify delivers order lifecycle notifications. Delivery is
// fire-and-forget: a failed notification is logged and never fails the
// order operation that produced it.
package notify

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/taskpro/storefront/internal/domain/catalog"
	"github.com/taskpro/storefront/internal/domain/order"
)

// Notifier is the full event surface: order lifecycle plus catalog changes.
type Notifier interface {
	order.Notifier
	ProductAdded(ctx context.Context, ownerEmail string, p catalog.Product)
}

// LogNotifier writes notifications to the request logger. It is the default
// when no broker is configured.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) OrderPlaced(ctx context.Context, o *order.Order) {
	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.OrderID),
		zap.String("customer", o.CustomerEmail),
		zap.String("grand_total", o.GrandTotal.String()),
	)
}

func (LogNotifier) OrderStatusChanged(ctx context.Context, o *order.Order, status order.Status) {
	zctx.From(ctx).Info("Order status changed",
		zap.String("order_id", o.OrderID),
		zap.String("status", string(status)),
	)
}

func (LogNotifier) ProductAdded(ctx context.Context, ownerEmail string, p catalog.Product) {
	zctx.From(ctx).Info("Product added",
		zap.String("owner", ownerEmail),
		zap.String("product", p.Name),
		zap.String("price", p.Price.String()),
	)
}
