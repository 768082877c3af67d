package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCoupon is returned when a coupon code does not match any active
// rule. Checkout treats it as "no discount" rather than a hard failure.
var ErrInvalidCoupon = errors.New("invalid coupon code")

// Rule is a percentage discount keyed by an exact-match code.
type Rule struct {
	Code        string
	Value       decimal.Decimal // percent of subtotal, e.g. 20
	Description string
	Active      bool
}

// Discount is the computed reduction for a cart subtotal.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// Repository provides lookup of active coupon rules by code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	ActiveCodes(ctx context.Context) ([]string, error)
}

var hundred = decimal.NewFromInt(100)

// Apply computes the rule's discount for the given subtotal: value percent of
// the subtotal, clamped to [0, subtotal] and rounded to 2 places.
func Apply(rule *Rule, subtotal decimal.Decimal) Discount {
	amount := subtotal.Mul(rule.Value).Div(hundred)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return Discount{
		Amount:      amount.Round(2),
		Description: rule.Description,
	}
}
