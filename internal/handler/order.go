package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/cart"
	"github.com/taskpro/storefront/internal/domain/order"
)

type orderResponse struct {
	OrderID        string          `json:"order_id"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	Lines          []cart.Line     `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Address        order.Address   `json:"shipping_address"`
	Status         order.Status    `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	CreatedAt      time.Time       `json:"created_at"`
}

func orderView(o *order.Order) orderResponse {
	return orderResponse{
		OrderID:       o.OrderID,
		CustomerEmail: o.CustomerEmail,
		Lines:         o.Lines,
		Subtotal:      o.TotalAmount,
		Discount:      o.DiscountAmount,
		GrandTotal:    o.GrandTotal,
		CouponCode:    o.CouponCode,
		Address:       o.ShippingAddress,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
	}
}

// orderHistory lists the customer's orders, newest first.
func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Lookup(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "login required")
		return
	}

	orders, err := h.orders.ListByCustomer(r.Context(), s.CustomerEmail)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	views := make([]orderResponse, len(orders))
	for i := range orders {
		views[i] = orderView(&orders[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": views})
}

type statusEventView struct {
	Status    order.Status `json:"status"`
	ChangedAt time.Time    `json:"changed_at"`
}

type trackResponse struct {
	Order   orderResponse     `json:"order"`
	History []statusEventView `json:"history"`
}

// trackOrder returns an order with its full status timeline.
func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	o, history, err := h.orders.Track(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	events := make([]statusEventView, len(history))
	for i, ev := range history {
		events[i] = statusEventView{Status: ev.Status, ChangedAt: ev.CreatedAt}
	}
	respondJSON(w, http.StatusOK, trackResponse{
		Order:   orderView(o),
		History: events,
	})
}
