package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product, category, or owner
	// does not exist.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrDuplicate is returned when a product or category with the same name
	// already exists in the owner's catalog.
	ErrDuplicate = errors.New("catalog entry already exists")
	// ErrOwnerExists is returned when registering an already-registered email.
	ErrOwnerExists = errors.New("owner already registered")
	// ErrBadCredentials is returned on a failed owner login.
	ErrBadCredentials = errors.New("invalid email or password")
)

// Product is a catalog item. Names are unique within an owner's catalog and
// act as the public identifier in storefront routes.
type Product struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Description string          `json:"description,omitempty"`
	ImagePath   string          `json:"image_path,omitempty"`
	Rating      int             `json:"rating"`
}

// Owner is a catalog-owning account.
type Owner struct {
	Email    string
	Username string
}

// OwnerCatalog is one owner's slice of the catalog document.
type OwnerCatalog struct {
	Owner      Owner
	Categories []string
	Products   []Product
}

// Store is the catalog document. Reads span all owners (the storefront sells
// every owner's products); mutations are scoped to a single owner.
type Store interface {
	// Owner accounts.
	RegisterOwner(ctx context.Context, email, username, password string) error
	AuthenticateOwner(ctx context.Context, email, password string) (*Owner, error)
	Owners(ctx context.Context) ([]OwnerCatalog, error)
	OwnerByEmail(ctx context.Context, email string) (*OwnerCatalog, error)
	DeleteOwner(ctx context.Context, email string) error

	// Cross-tenant storefront reads.
	AllProducts(ctx context.Context) ([]Product, error)
	ProductByName(ctx context.Context, name string) (*Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]Product, error)
	ProductsBySubcategory(ctx context.Context, subcategory string) ([]Product, error)
	Categories(ctx context.Context) (map[string][]string, error)

	// Owner-scoped catalog management.
	AddCategory(ctx context.Context, owner, name string) error
	RenameCategory(ctx context.Context, owner, oldName, newName string) error
	DeleteCategory(ctx context.Context, owner, name string) error
	AddProduct(ctx context.Context, owner string, p Product) error
	UpdateProduct(ctx context.Context, owner, oldName string, p Product) error
	DeleteProduct(ctx context.Context, owner, name string) error
	SetRating(ctx context.Context, owner, name string, rating int) error
	SearchProducts(ctx context.Context, owner, query string) ([]Product, error)
}
