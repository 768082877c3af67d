package report_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpro/storefront/internal/domain/catalog"
	"github.com/taskpro/storefront/internal/domain/report"
	"github.com/taskpro/storefront/internal/storage/jsonfile"
)

type memRepo struct {
	rows map[string]report.Stats
}

func (m *memRepo) Upsert(_ context.Context, s report.Stats) error {
	m.rows[s.OwnerEmail] = s
	return nil
}

func (m *memRepo) List(_ context.Context) ([]report.Stats, error) {
	out := make([]report.Stats, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, ownerEmail string) error {
	delete(m.rows, ownerEmail)
	return nil
}

func TestCompute(t *testing.T) {
	oc := catalog.OwnerCatalog{
		Owner: catalog.Owner{Email: "shop@example.com", Username: "shop"},
		Products: []catalog.Product{
			{Name: "Shirt", Price: decimal.NewFromInt(500)},
			{Name: "Dress", Price: decimal.RequireFromString("899.50")},
		},
	}

	s := report.Compute(oc)
	assert.Equal(t, "shop@example.com", s.OwnerEmail)
	assert.Equal(t, "shop", s.OwnerName)
	assert.Equal(t, 2, s.ProductCount)
	assert.True(t, s.InventoryValue.Equal(decimal.RequireFromString("1399.50")))
}

func TestComputeEmptyCatalog(t *testing.T) {
	s := report.Compute(catalog.OwnerCatalog{
		Owner: catalog.Owner{Email: "new@example.com"},
	})
	assert.Equal(t, 0, s.ProductCount)
	assert.True(t, s.InventoryValue.IsZero())
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "data.json"), []byte("pepper"))
	require.NoError(t, err)
	require.NoError(t, store.RegisterOwner(ctx, "a@example.com", "a", "secret"))
	require.NoError(t, store.RegisterOwner(ctx, "b@example.com", "b", "secret"))
	require.NoError(t, store.AddProduct(ctx, "a@example.com", catalog.Product{
		Name: "Shirt", Price: decimal.NewFromInt(500), Category: "mens",
	}))

	repo := &memRepo{rows: make(map[string]report.Stats)}
	require.NoError(t, report.Refresh(ctx, store, repo))

	require.Len(t, repo.rows, 2)
	assert.Equal(t, 1, repo.rows["a@example.com"].ProductCount)
	assert.Equal(t, 0, repo.rows["b@example.com"].ProductCount)
	assert.True(t, repo.rows["a@example.com"].InventoryValue.Equal(decimal.NewFromInt(500)))
}
