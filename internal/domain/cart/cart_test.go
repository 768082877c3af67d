package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestAdd_SameProductTwice(t *testing.T) {
	c := New()
	c.Add("Shirt")
	c.Add("Shirt")

	require.Len(t, c, 1)
	assert.Equal(t, 2, c["Shirt"])
}

func TestDecrement_AtQuantityOneRemoves(t *testing.T) {
	c := New()
	c.Add("Shirt")

	c.Decrement("Shirt")
	_, ok := c["Shirt"]
	assert.False(t, ok)
}

func TestDecrement_AboveOne(t *testing.T) {
	c := New()
	c.Add("Shirt")
	c.Add("Shirt")
	c.Add("Shirt")

	c.Decrement("Shirt")
	assert.Equal(t, 2, c["Shirt"])
}

func TestIncrement_UnknownProductIgnored(t *testing.T) {
	c := New()
	c.Increment("Ghost")
	assert.Empty(t, c)
}

func TestRemove(t *testing.T) {
	c := New()
	c.Add("Shirt")
	c.Add("Shirt")
	c.Remove("Shirt")
	assert.Empty(t, c)
}

func TestCount(t *testing.T) {
	c := New()
	c.Add("Shirt")
	c.Add("Shirt")
	c.Add("Dress")
	assert.Equal(t, 3, c.Count())
}

func TestResolve_SkipsMissingProducts(t *testing.T) {
	c := New()
	c.Add("Shirt")
	c.Add("Gone")

	lines := Resolve(c, []catalog.Product{
		{Name: "Shirt", Price: d("500")},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "Shirt", lines[0].Name)
	assert.True(t, d("500").Equal(lines[0].Total))
}

func TestResolve_UsesLiveCatalogPrice(t *testing.T) {
	c := New()
	c.Add("Shirt")
	c.Add("Shirt")

	lines := Resolve(c, []catalog.Product{
		{Name: "Shirt", Price: d("500")},
		{Name: "Dress", Price: d("900")},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, d("1000").Equal(lines[0].Total))
	assert.True(t, d("1000").Equal(Subtotal(lines)))
}
