// Package handler exposes the storefront over HTTP: customer shopping
// routes, the owner catalog console, and the superadmin API. All routes
// render JSON.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/taskpro/storefront/internal/domain/auth"
	"github.com/taskpro/storefront/internal/domain/catalog"
	"github.com/taskpro/storefront/internal/domain/checkout"
	"github.com/taskpro/storefront/internal/domain/coupon"
	"github.com/taskpro/storefront/internal/domain/order"
	"github.com/taskpro/storefront/internal/domain/report"
	"github.com/taskpro/storefront/internal/notify"
	"github.com/taskpro/storefront/internal/payment"
	"github.com/taskpro/storefront/internal/session"
)

// Handler holds the domain dependencies of every route.
type Handler struct {
	catalog   catalog.Store
	checkouts *checkout.Service
	orders    *order.Service
	pending   checkout.PendingRepository
	gateway   payment.Gateway
	sessions  *session.Manager
	stats     report.Repository
	apikeys   auth.Repository
	pepper    []byte
	notifier  notify.Notifier
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	catalogStore catalog.Store,
	checkouts *checkout.Service,
	orders *order.Service,
	pending checkout.PendingRepository,
	gateway payment.Gateway,
	sessions *session.Manager,
	stats report.Repository,
	apikeys auth.Repository,
	pepper []byte,
	notifier notify.Notifier,
) *Handler {
	return &Handler{
		catalog:   catalogStore,
		checkouts: checkouts,
		orders:    orders,
		pending:   pending,
		gateway:   gateway,
		sessions:  sessions,
		stats:     stats,
		apikeys:   apikeys,
		pepper:    pepper,
		notifier:  notifier,
	}
}

// Routes builds the full route tree.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Storefront.
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /category/{name}", h.categoryPage)
	mux.HandleFunc("GET /subcategory/{name}", h.subcategoryPage)
	mux.HandleFunc("GET /product/{name}", h.productDetail)
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)

	// Cart.
	mux.HandleFunc("GET /cart", h.viewCart)
	mux.HandleFunc("POST /cart/add/{name}", h.cartAdd)
	mux.HandleFunc("POST /cart/remove/{name}", h.cartRemove)
	mux.HandleFunc("POST /cart/increment/{name}", h.cartIncrement)
	mux.HandleFunc("POST /cart/decrement/{name}", h.cartDecrement)

	// Checkout and orders.
	mux.HandleFunc("POST /checkout/address", h.requireCustomer(h.checkoutAddress))
	mux.HandleFunc("POST /checkout/payment", h.requireCustomer(h.checkoutPayment))
	mux.HandleFunc("POST /payment/success", h.requireCustomer(h.paymentSuccess))
	mux.HandleFunc("GET /invoice", h.requireCustomer(h.invoice))
	mux.HandleFunc("GET /orders", h.requireCustomer(h.orderHistory))
	mux.HandleFunc("GET /orders/{id}/track", h.trackOrder)

	// Owner console.
	mux.HandleFunc("POST /owner/register", h.ownerRegister)
	mux.HandleFunc("POST /owner/login", h.ownerLogin)
	mux.HandleFunc("POST /owner/logout", h.ownerLogout)
	mux.HandleFunc("GET /owner/catalog", h.requireOwner(h.ownerCatalog))
	mux.HandleFunc("POST /owner/categories", h.requireOwner(h.ownerAddCategory))
	mux.HandleFunc("PUT /owner/categories/{name}", h.requireOwner(h.ownerRenameCategory))
	mux.HandleFunc("DELETE /owner/categories/{name}", h.requireOwner(h.ownerDeleteCategory))
	mux.HandleFunc("POST /owner/products", h.requireOwner(h.ownerAddProduct))
	mux.HandleFunc("PUT /owner/products/{name}", h.requireOwner(h.ownerUpdateProduct))
	mux.HandleFunc("DELETE /owner/products/{name}", h.requireOwner(h.ownerDeleteProduct))
	mux.HandleFunc("POST /owner/products/{name}/rating", h.requireOwner(h.ownerSetRating))
	mux.HandleFunc("GET /owner/products/search", h.requireOwner(h.ownerSearch))
	mux.HandleFunc("GET /owner/export/products", h.requireOwner(h.ownerExportCSV))
	mux.HandleFunc("POST /owner/import/products", h.requireOwner(h.ownerImportCSV))

	// Superadmin.
	mux.HandleFunc("GET /admin/dashboard", h.requireAPIKey(h.adminDashboard))
	mux.HandleFunc("GET /admin/owners", h.requireAPIKey(h.adminOwners))
	mux.HandleFunc("GET /admin/owners/{email}", h.requireAPIKey(h.adminOwnerDetail))
	mux.HandleFunc("DELETE /admin/owners/{email}", h.requireAPIKey(h.adminDeleteOwner))
	mux.HandleFunc("GET /admin/orders", h.requireAPIKey(h.adminOrders))
	mux.HandleFunc("POST /admin/orders/{id}/status", h.requireAPIKey(h.adminOrderStatus))

	return mux
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondDomainError maps domain sentinel errors onto HTTP statuses.
// Anything unmapped is a 500 and is logged.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrDuplicate), errors.Is(err, catalog.ErrOwnerExists),
		errors.Is(err, order.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrBadCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, coupon.ErrInvalidCoupon),
		errors.Is(err, order.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		zctx.From(r.Context()).Error("Internal error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

const maxBodySize = 1 << 20

// decodeBody decodes a JSON request body into v, rejecting unknown fields
// and bodies over 1 MiB.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}

// requireCustomer rejects requests without a logged-in customer session.
func (h *Handler) requireCustomer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.sessions.Lookup(r)
		if !ok || s.CustomerEmail == "" {
			respondError(w, http.StatusUnauthorized, "login required")
			return
		}
		next(w, r)
	}
}

// requireOwner rejects requests without a logged-in owner session.
func (h *Handler) requireOwner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.sessions.Lookup(r)
		if !ok || s.OwnerEmail == "" {
			respondError(w, http.StatusUnauthorized, "owner login required")
			return
		}
		next(w, r)
	}
}
