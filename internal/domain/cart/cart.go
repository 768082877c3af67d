// Package cart implements the session shopping cart.
package cart

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/taskpro/storefront/internal/domain/catalog"
)

// Cart maps product name to quantity. The zero value of New is ready to use.
// Quantities are always >= 1: any operation that would drop a quantity below
// one removes the entry instead.
type Cart map[string]int

// New returns an empty cart.
func New() Cart {
	return make(Cart)
}

// Add increments the product's quantity, inserting it at quantity 1 when
// absent. Repeated adds keep incrementing.
func (c Cart) Add(name string) {
	c[name]++
}

// Remove deletes the entry entirely regardless of quantity.
func (c Cart) Remove(name string) {
	delete(c, name)
}

// Increment raises the quantity by one. Unknown products are ignored.
func (c Cart) Increment(name string) {
	if _, ok := c[name]; ok {
		c[name]++
	}
}

// Decrement lowers the quantity by one, removing the entry when it would
// drop below one.
func (c Cart) Decrement(name string) {
	q, ok := c[name]
	if !ok {
		return
	}
	if q <= 1 {
		delete(c, name)
		return
	}
	c[name] = q - 1
}

// Count returns the total quantity across all entries.
func (c Cart) Count() int {
	total := 0
	for _, q := range c {
		total += q
	}
	return total
}

// Clear empties the cart in place.
func (c Cart) Clear() {
	for name := range c {
		delete(c, name)
	}
}

// Line is a cart entry priced against the live catalog.
type Line struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	ImagePath string          `json:"image_path,omitempty"`
}

// Resolve prices the cart against the given catalog products. Prices are read
// now, not frozen at add time. Entries whose product no longer exists in the
// catalog are silently skipped.
func Resolve(c Cart, products []catalog.Product) []Line {
	byName := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}

	lines := make([]Line, 0, len(c))
	for name, qty := range c {
		p, ok := byName[name]
		if !ok {
			continue
		}
		qd := decimal.NewFromInt(int64(qty))
		lines = append(lines, Line{
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
			Total:     p.Price.Mul(qd),
			ImagePath: p.ImagePath,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
	return lines
}

// Subtotal sums line totals.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total)
	}
	return sum
}
