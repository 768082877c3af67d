package handler

import (
	"net/http"
	"strings"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

type homeResponse struct {
	Products   []catalog.Product   `json:"products"`
	Categories map[string][]string `json:"categories"`
	CartCount  int                 `json:"cart_count"`
}

// home lists every owner's products with the category tree and the current
// cart size.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.catalog.AllProducts(ctx)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	s := h.sessions.Get(w, r)
	respondJSON(w, http.StatusOK, homeResponse{
		Products:   products,
		Categories: categories,
		CartCount:  s.Cart.Count(),
	})
}

type productListResponse struct {
	Products  []catalog.Product `json:"products"`
	CartCount int               `json:"cart_count"`
}

func (h *Handler) categoryPage(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ProductsByCategory(r.Context(), r.PathValue("name"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	s := h.sessions.Get(w, r)
	respondJSON(w, http.StatusOK, productListResponse{
		Products:  products,
		CartCount: s.Cart.Count(),
	})
}

func (h *Handler) subcategoryPage(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ProductsBySubcategory(r.Context(), r.PathValue("name"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	s := h.sessions.Get(w, r)
	respondJSON(w, http.StatusOK, productListResponse{
		Products:  products,
		CartCount: s.Cart.Count(),
	})
}

func (h *Handler) productDetail(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.ProductByName(r.Context(), r.PathValue("name"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

func (c credentialsRequest) validate() string {
	switch {
	case !strings.Contains(c.Email, "@"):
		return "valid email required"
	case len(c.Password) < 4:
		return "password too short"
	default:
		return ""
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.catalog.RegisterOwner(r.Context(), req.Email, req.Username, req.Password); err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	s := h.sessions.Get(w, r)
	s.CustomerEmail = req.Email
	respondJSON(w, http.StatusCreated, map[string]string{"email": req.Email})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, err := h.catalog.AuthenticateOwner(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	s := h.sessions.Get(w, r)
	s.CustomerEmail = owner.Email
	respondJSON(w, http.StatusOK, map[string]string{
		"email":    owner.Email,
		"username": owner.Username,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
