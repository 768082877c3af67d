package jsonfile

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data.json"), []byte("test-pepper"))
	require.NoError(t, err)
	return s
}

func shirt(price string) catalog.Product {
	return catalog.Product{
		Name:        "Shirt",
		Price:       decimal.RequireFromString(price),
		Category:    "mens",
		Subcategory: "tops",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "s3cret"))

	owner, err := s.AuthenticateOwner(ctx, "a@shop.test", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner.Username)

	_, err = s.AuthenticateOwner(ctx, "a@shop.test", "wrong")
	assert.ErrorIs(t, err, catalog.ErrBadCredentials)

	err = s.RegisterOwner(ctx, "a@shop.test", "alice2", "other")
	assert.ErrorIs(t, err, catalog.ErrOwnerExists)
}

func TestRegisterSeedsDefaultCategories(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))

	oc, err := s.OwnerByEmail(ctx, "a@shop.test")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mens", "women", "baby"}, oc.Categories)
	assert.Empty(t, oc.Products)
}

func TestAddProduct_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))

	require.NoError(t, s.AddProduct(ctx, "a@shop.test", shirt("500")))
	err := s.AddProduct(ctx, "a@shop.test", shirt("600"))
	assert.ErrorIs(t, err, catalog.ErrDuplicate)
}

func TestProductReadsAcrossOwners(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))
	require.NoError(t, s.RegisterOwner(ctx, "b@shop.test", "bob", "pw"))

	require.NoError(t, s.AddProduct(ctx, "a@shop.test", shirt("500")))
	require.NoError(t, s.AddProduct(ctx, "b@shop.test", catalog.Product{
		Name: "Dress", Price: decimal.NewFromInt(900), Category: "women", Subcategory: "dresses",
	}))

	all, err := s.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	p, err := s.ProductByName(ctx, "Dress")
	require.NoError(t, err)
	assert.Equal(t, "women", p.Category)

	byCat, err := s.ProductsByCategory(ctx, "mens")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "Shirt", byCat[0].Name)

	bySub, err := s.ProductsBySubcategory(ctx, "dresses")
	require.NoError(t, err)
	require.Len(t, bySub, 1)
	assert.Equal(t, "Dress", bySub[0].Name)

	_, err = s.ProductByName(ctx, "Hat")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))
	require.NoError(t, s.AddProduct(ctx, "a@shop.test", shirt("500")))

	updated := shirt("450")
	updated.Name = "Linen Shirt"
	require.NoError(t, s.UpdateProduct(ctx, "a@shop.test", "Shirt", updated))

	_, err := s.ProductByName(ctx, "Shirt")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	p, err := s.ProductByName(ctx, "Linen Shirt")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("450").Equal(p.Price))

	require.NoError(t, s.DeleteProduct(ctx, "a@shop.test", "Linen Shirt"))
	assert.ErrorIs(t, s.DeleteProduct(ctx, "a@shop.test", "Linen Shirt"), catalog.ErrNotFound)
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))

	require.NoError(t, s.AddCategory(ctx, "a@shop.test", "shoes"))
	assert.ErrorIs(t, s.AddCategory(ctx, "a@shop.test", "shoes"), catalog.ErrDuplicate)

	require.NoError(t, s.AddProduct(ctx, "a@shop.test", catalog.Product{
		Name: "Sneaker", Price: decimal.NewFromInt(700), Category: "shoes", Subcategory: "casual",
	}))

	require.NoError(t, s.RenameCategory(ctx, "a@shop.test", "shoes", "footwear"))
	p, err := s.ProductByName(ctx, "Sneaker")
	require.NoError(t, err)
	assert.Equal(t, "footwear", p.Category)

	require.NoError(t, s.DeleteCategory(ctx, "a@shop.test", "footwear"))
	_, err = s.ProductByName(ctx, "Sneaker")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))
	p := shirt("500")
	p.Description = "breathable cotton"
	require.NoError(t, s.AddProduct(ctx, "a@shop.test", p))

	hits, err := s.SearchProducts(ctx, "a@shop.test", "cotton")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Shirt", hits[0].Name)

	hits, err = s.SearchProducts(ctx, "a@shop.test", "denim")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	s, err := Open(path, []byte("pepper"))
	require.NoError(t, err)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))
	require.NoError(t, s.AddProduct(ctx, "a@shop.test", shirt("500")))

	reopened, err := Open(path, []byte("pepper"))
	require.NoError(t, err)

	owner, err := reopened.AuthenticateOwner(ctx, "a@shop.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner.Username)

	p, err := reopened.ProductByName(ctx, "Shirt")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("500").Equal(p.Price))
}

func TestConcurrentOwnerEditsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.RegisterOwner(ctx, "a@shop.test", "alice", "pw"))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := catalog.Product{
				Name:     "P" + string(rune('A'+n)),
				Price:    decimal.NewFromInt(int64(n + 1)),
				Category: "mens",
			}
			assert.NoError(t, s.AddProduct(ctx, "a@shop.test", p))
		}(i)
	}
	wg.Wait()

	all, err := s.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
