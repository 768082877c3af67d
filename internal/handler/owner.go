package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

func (h *Handler) ownerRegister(w http.ResponseWriter, r *http.Request) {
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
	s.OwnerEmail = req.Email
	respondJSON(w, http.StatusCreated, map[string]string{"email": req.Email})
}

func (h *Handler) ownerLogin(w http.ResponseWriter, r *http.Request) {
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
	s.OwnerEmail = owner.Email
	respondJSON(w, http.StatusOK, map[string]string{
		"email":    owner.Email,
		"username": owner.Username,
	})
}

func (h *Handler) ownerLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// ownerEmail returns the authenticated owner for the request. requireOwner
// has already verified the session.
func (h *Handler) ownerEmail(r *http.Request) string {
	s, ok := h.sessions.Lookup(r)
	if !ok {
		return ""
	}
	return s.OwnerEmail
}

type ownerCatalogResponse struct {
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	Categories    []string          `json:"categories"`
	Products      []catalog.Product `json:"products"`
	CategoryCount int               `json:"category_count"`
	ProductCount  int               `json:"product_count"`
}

// ownerCatalog returns the owner's whole catalog slice with counts.
func (h *Handler) ownerCatalog(w http.ResponseWriter, r *http.Request) {
	oc, err := h.catalog.OwnerByEmail(r.Context(), h.ownerEmail(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ownerCatalogResponse{
		Email:         oc.Owner.Email,
		Username:      oc.Owner.Username,
		Categories:    oc.Categories,
		Products:      oc.Products,
		CategoryCount: len(oc.Categories),
		ProductCount:  len(oc.Products),
	})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ownerAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "category name required")
		return
	}

	if err := h.catalog.AddCategory(r.Context(), h.ownerEmail(r), req.Name); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (h *Handler) ownerRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "category name required")
		return
	}

	oldName := r.PathValue("name")
	if err := h.catalog.RenameCategory(r.Context(), h.ownerEmail(r), oldName, req.Name); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

func (h *Handler) ownerDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), h.ownerEmail(r), r.PathValue("name")); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type productRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Description string          `json:"description,omitempty"`
	ImagePath   string          `json:"image_path,omitempty"`
}

func (p productRequest) validate() string {
	switch {
	case p.Name == "":
		return "product name required"
	case p.Price.IsNegative():
		return "price must be non-negative"
	case p.Category == "":
		return "category required"
	default:
		return ""
	}
}

func (p productRequest) toProduct() catalog.Product {
	return catalog.Product{
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Description: p.Description,
		ImagePath:   p.ImagePath,
	}
}

func (h *Handler) ownerAddProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	owner := h.ownerEmail(r)
	p := req.toProduct()
	if err := h.catalog.AddProduct(r.Context(), owner, p); err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.notifier.ProductAdded(r.Context(), owner, p)
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) ownerUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	oldName := r.PathValue("name")
	if err := h.catalog.UpdateProduct(r.Context(), h.ownerEmail(r), oldName, req.toProduct()); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, req.toProduct())
}

func (h *Handler) ownerDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), h.ownerEmail(r), r.PathValue("name")); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

func (h *Handler) ownerSetRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "rating must be between 0 and 5")
		return
	}

	if err := h.catalog.SetRating(r.Context(), h.ownerEmail(r), r.PathValue("name"), req.Rating); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"rating": req.Rating})
}

// ownerSearch matches the query against the owner's product names,
// case-insensitively.
func (h *Handler) ownerSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter q required")
		return
	}

	products, err := h.catalog.SearchProducts(r.Context(), h.ownerEmail(r), query)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}
