package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/order"
	"github.com/taskpro/storefront/internal/domain/report"
)

type ownerStatsView struct {
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	ProductCount   int             `json:"product_count"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}

type dashboardResponse struct {
	OwnerCount          int             `json:"owner_count"`
	ProductCount        int             `json:"product_count"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	OrderCount          int             `json:"order_count"`
}

// adminDashboard recomputes the per-owner stats snapshot from the catalog
// document and returns platform totals.
func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := report.Refresh(ctx, h.catalog, h.stats); err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	stats, err := h.stats.List(ctx)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	resp := dashboardResponse{
		OwnerCount:          len(stats),
		OrderCount:          len(orders),
		TotalInventoryValue: decimal.Zero,
	}
	for _, s := range stats {
		resp.ProductCount += s.ProductCount
		resp.TotalInventoryValue = resp.TotalInventoryValue.Add(s.InventoryValue)
	}
	respondJSON(w, http.StatusOK, resp)
}

// adminOwners lists every owner with their stored stats snapshot.
func (h *Handler) adminOwners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := report.Refresh(ctx, h.catalog, h.stats); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	stats, err := h.stats.List(ctx)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	views := make([]ownerStatsView, len(stats))
	for i, s := range stats {
		views[i] = ownerStatsView{
			Email:          s.OwnerEmail,
			Username:       s.OwnerName,
			ProductCount:   s.ProductCount,
			InventoryValue: s.InventoryValue,
			UpdatedAt:      s.UpdatedAt,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"owners": views})
}

// adminOwnerDetail returns one owner's catalog slice with live counts.
func (h *Handler) adminOwnerDetail(w http.ResponseWriter, r *http.Request) {
	oc, err := h.catalog.OwnerByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	stats := report.Compute(*oc)
	respondJSON(w, http.StatusOK, map[string]any{
		"email":           oc.Owner.Email,
		"username":        oc.Owner.Username,
		"categories":      oc.Categories,
		"products":        oc.Products,
		"product_count":   stats.ProductCount,
		"inventory_value": stats.InventoryValue,
	})
}

// adminDeleteOwner removes an owner's account, catalog slice, and stats row.
func (h *Handler) adminDeleteOwner(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	if err := h.catalog.DeleteOwner(r.Context(), email); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if err := h.stats.Delete(r.Context(), email); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// adminOrders lists every order on the platform.
func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
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

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// adminOrderStatus advances an order's fulfilment status.
func (h *Handler) adminOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	o, err := h.orders.AdvanceStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderView(o))
}
