package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/cart"
)

type cartResponse struct {
	Lines    []cart.Line     `json:"lines"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// viewCart prices the cart against the live catalog. Entries whose product
// has been removed from the catalog are not shown.
func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)

	products, err := h.catalog.AllProducts(r.Context())
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	lines := cart.Resolve(s.Cart, products)
	respondJSON(w, http.StatusOK, cartResponse{
		Lines:    lines,
		Count:    s.Cart.Count(),
		Subtotal: cart.Subtotal(lines),
	})
}

// cartAdd puts a catalog product in the cart, or bumps its quantity.
func (h *Handler) cartAdd(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := h.catalog.ProductByName(r.Context(), name); err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	s := h.sessions.Get(w, r)
	s.Cart.Add(name)
	respondJSON(w, http.StatusOK, map[string]int{"count": s.Cart.Count()})
}

func (h *Handler) cartRemove(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	s.Cart.Remove(r.PathValue("name"))
	respondJSON(w, http.StatusOK, map[string]int{"count": s.Cart.Count()})
}

func (h *Handler) cartIncrement(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	s.Cart.Increment(r.PathValue("name"))
	respondJSON(w, http.StatusOK, map[string]int{"count": s.Cart.Count()})
}

func (h *Handler) cartDecrement(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Get(w, r)
	s.Cart.Decrement(r.PathValue("name"))
	respondJSON(w, http.StatusOK, map[string]int{"count": s.Cart.Count()})
}
