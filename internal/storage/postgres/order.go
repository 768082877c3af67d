package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpro/storefront/internal/domain/cart"
	"github.com/taskpro/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (order_id, customer_email, products, total_amount,
		discount_amount, grand_total, coupon_code, shipping_address, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id) DO NOTHING`

	createHistorySQL = `INSERT INTO order_status_history (order_id, status) VALUES ($1, $2)`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1)`

	selectOrderSQL = `SELECT order_id, customer_email, products, total_amount, discount_amount,
		grand_total, coupon_code, shipping_address, status, payment_status, created_at
		FROM orders`

	getOrderByIDSQL = selectOrderSQL + ` WHERE order_id = $1`

	listOrdersByCustomerSQL = selectOrderSQL + ` WHERE customer_email = $1 ORDER BY created_at DESC`

	listAllOrdersSQL = selectOrderSQL + ` ORDER BY created_at DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE order_id = $1`

	getHistorySQL = `SELECT status, changed_at FROM order_status_history
		WHERE order_id = $1 ORDER BY changed_at, id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and its initial status history entry in one
// transaction. Lines and the shipping address are serialized to JSONB.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return errors.Wrap(err, "marshaling order lines")
	}
	addrJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return errors.Wrap(err, "marshaling shipping address")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, createOrderSQL,
		o.OrderID, o.CustomerEmail, linesJSON, o.TotalAmount,
		o.DiscountAmount, o.GrandTotal, o.CouponCode, addrJSON,
		string(o.Status), o.PaymentStatus,
	); err != nil {
		return errors.Wrapf(err, "creating order %q", o.OrderID)
	}
	if _, err := tx.Exec(ctx, createHistorySQL, o.OrderID, string(o.Status)); err != nil {
		return errors.Wrapf(err, "recording initial status for %q", o.OrderID)
	}

	return tx.Commit(ctx)
}

// Exists reports whether an order with the given id has been finalized.
func (r *OrderRepository) Exists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, orderExistsSQL, orderID).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "checking order %q", orderID)
	}
	return exists, nil
}

// GetByID fetches a single order. Returns order.ErrNotFound when absent.
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %q", orderID)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", orderID)
	}
	return &o, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, email string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCustomerSQL, email)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders for %q", email)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus sets the order's current status and appends a history entry.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, updateOrderStatusSQL, orderID, string(status))
	if err != nil {
		return errors.Wrapf(err, "updating status of %q", orderID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	if _, err := tx.Exec(ctx, createHistorySQL, orderID, string(status)); err != nil {
		return errors.Wrapf(err, "recording status of %q", orderID)
	}

	return tx.Commit(ctx)
}

// History returns the order's status timeline, oldest first.
func (r *OrderRepository) History(ctx context.Context, orderID string) ([]order.StatusEvent, error) {
	rows, err := r.pool.Query(ctx, getHistorySQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "loading history of %q", orderID)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.StatusEvent, error) {
		var (
			ev     order.StatusEvent
			status string
		)
		err := row.Scan(&status, &ev.CreatedAt)
		ev.Status = order.Status(status)
		return ev, err
	})
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		status    string
		linesJSON []byte
		addrJSON  []byte
	)
	err := row.Scan(
		&o.OrderID, &o.CustomerEmail, &linesJSON, &o.TotalAmount, &o.DiscountAmount,
		&o.GrandTotal, &o.CouponCode, &addrJSON, &status, &o.PaymentStatus, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return o, errors.Wrap(err, "unmarshaling order lines")
	}
	if len(o.Lines) == 0 {
		o.Lines = []cart.Line{}
	}
	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return o, errors.Wrap(err, "unmarshaling shipping address")
	}
	return o, nil
}
