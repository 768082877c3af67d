package coupon

import (
	"context"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator validates a coupon code against a cart subtotal and returns the
// computed discount.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error)
}

const bloomFPR = 0.001

// RepoValidator implements Validator against a Repository. A Bloom filter of
// active codes, built at construction, rejects unknown codes without a
// lookup; false positives fall through to the repository and fail there.
type RepoValidator struct {
	repo   Repository
	filter *bloom.BloomFilter
}

// NewRepoValidator builds the Bloom prefilter from the repository's active
// codes and returns the validator.
func NewRepoValidator(ctx context.Context, repo Repository) (*RepoValidator, error) {
	codes, err := repo.ActiveCodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load active coupon codes")
	}

	n := uint(len(codes))
	if n == 0 {
		n = 1
	}
	filter := bloom.NewWithEstimates(n, bloomFPR)
	for _, code := range codes {
		filter.AddString(code)
	}

	return &RepoValidator{repo: repo, filter: filter}, nil
}

// Validate matches the code exactly against a stored rule and applies it to
// the subtotal. Unknown codes return ErrInvalidCoupon.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error) {
	if !v.filter.TestString(code) {
		return nil, ErrInvalidCoupon
	}

	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	d := Apply(rule, subtotal)
	return &d, nil
}
