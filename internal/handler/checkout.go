package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/taskpro/storefront/internal/domain/order"
)

type addressRequest struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

func (a addressRequest) validate() string {
	switch {
	case a.FullName == "":
		return "full_name required"
	case a.Address == "":
		return "address required"
	case a.City == "":
		return "city required"
	case a.Pincode == "":
		return "pincode required"
	case a.Phone == "":
		return "phone required"
	default:
		return ""
	}
}

// checkoutAddress stores the shipping address in the session for the
// payment step.
func (h *Handler) checkoutAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	s := h.sessions.Get(w, r)
	s.Address = &order.Address{
		FullName: req.FullName,
		Address:  req.Address,
		City:     req.City,
		Pincode:  req.Pincode,
		Phone:    req.Phone,
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "address saved"})
}

type paymentRequest struct {
	CouponCode string `json:"coupon_code,omitempty"`
}

// checkoutPayment prices the cart, opens a gateway order, and returns the
// invoice snapshot the browser needs to complete the payment.
func (h *Handler) checkoutPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	s := h.sessions.Get(w, r)
	if s.Address == nil {
		respondError(w, http.StatusBadRequest, "shipping address required")
		return
	}

	inv, err := h.checkouts.Checkout(r.Context(), s.Cart, s.CustomerEmail, *s.Address, req.CouponCode)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	s.Invoice = inv
	respondJSON(w, http.StatusOK, inv)
}

type paymentSuccessRequest struct {
	OrderID string `json:"order_id"`
}

// paymentSuccess is the confirmation callback. The gateway is asked whether
// the order is actually paid before anything is finalized; confirming the
// same order twice creates at most one durable order. Cart and snapshot are
// cleared once the payment is verified, whatever the finalization outcome.
func (h *Handler) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	var req paymentSuccessRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := h.sessions.Get(w, r)
	if s.Invoice == nil || s.Invoice.OrderID == "" {
		respondError(w, http.StatusBadRequest, "no checkout in progress")
		return
	}
	if req.OrderID != s.Invoice.OrderID {
		respondError(w, http.StatusBadRequest, "order id does not match checkout")
		return
	}

	paid, err := h.gateway.CheckStatus(r.Context(), req.OrderID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if !paid {
		respondError(w, http.StatusPaymentRequired, "payment not completed")
		return
	}

	inv := *s.Invoice
	addr := order.Address{}
	if s.Address != nil {
		addr = *s.Address
	}
	s.Cart.Clear()
	s.Invoice = nil
	s.Address = nil

	o, err := h.orders.Confirm(r.Context(), order.ConfirmRequest{
		OrderID:       inv.OrderID,
		CustomerEmail: s.CustomerEmail,
		Lines:         inv.Lines,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		GrandTotal:    inv.GrandTotal,
		CouponCode:    inv.CouponCode,
		Address:       addr,
	})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	if err := h.pending.Delete(r.Context(), inv.OrderID); err != nil {
		// The reconciliation worker will retire the row later.
		zctx.From(r.Context()).Warn("Pending checkout cleanup failed",
			zap.String("order_id", inv.OrderID),
			zap.Error(err),
		)
	}

	respondJSON(w, http.StatusCreated, orderView(o))
}

// invoice returns the current checkout snapshot.
func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	if s.Invoice == nil {
		respondError(w, http.StatusNotFound, "no invoice available")
		return
	}
	respondJSON(w, http.StatusOK, s.Invoice)
}
