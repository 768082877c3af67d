package coupon

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		rule       *Rule
		subtotal   decimal.Decimal
		wantAmount decimal.Decimal
	}{
		{
			name:       "20% off 1000",
			rule:       &Rule{Code: "DISCOUNT20", Value: d("20")},
			subtotal:   d("1000"),
			wantAmount: d("200"),
		},
		{
			name:       "rounded to 2 places",
			rule:       &Rule{Code: "DISCOUNT20", Value: d("20")},
			subtotal:   d("99.99"),
			wantAmount: d("20.00"),
		},
		{
			name:       "100% equals subtotal",
			rule:       &Rule{Code: "FREE", Value: d("100")},
			subtotal:   d("250"),
			wantAmount: d("250"),
		},
		{
			name:       "capped at subtotal",
			rule:       &Rule{Code: "HUGE", Value: d("150")},
			subtotal:   d("80"),
			wantAmount: d("80"),
		},
		{
			name:       "negative value clamped to zero",
			rule:       &Rule{Code: "BROKEN", Value: d("-10")},
			subtotal:   d("100"),
			wantAmount: d("0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.rule, tt.subtotal)
			assert.True(t, tt.wantAmount.Equal(got.Amount),
				"want %s, got %s", tt.wantAmount, got.Amount)
		})
	}
}

type mapRepo struct {
	rules map[string]*Rule
}

func (m *mapRepo) FindByCode(_ context.Context, code string) (*Rule, error) {
	r, ok := m.rules[code]
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return r, nil
}

func (m *mapRepo) ActiveCodes(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(m.rules))
	for c := range m.rules {
		codes = append(codes, c)
	}
	return codes, nil
}

func TestRepoValidator_RecognizedCode(t *testing.T) {
	ctx := context.Background()
	repo := &mapRepo{rules: map[string]*Rule{
		"DISCOUNT20": {Code: "DISCOUNT20", Value: d("20"), Description: "20% off"},
	}}

	v, err := NewRepoValidator(ctx, repo)
	require.NoError(t, err)

	got, err := v.Validate(ctx, "DISCOUNT20", d("1000"))
	require.NoError(t, err)
	assert.True(t, d("200").Equal(got.Amount))
	assert.Equal(t, "20% off", got.Description)
}

func TestRepoValidator_UnknownCode(t *testing.T) {
	ctx := context.Background()
	repo := &mapRepo{rules: map[string]*Rule{
		"DISCOUNT20": {Code: "DISCOUNT20", Value: d("20")},
	}}

	v, err := NewRepoValidator(ctx, repo)
	require.NoError(t, err)

	_, err = v.Validate(ctx, "NOPE", d("1000"))
	assert.ErrorIs(t, err, ErrInvalidCoupon)

	// Exact match only: lowercase variant is a different string.
	_, err = v.Validate(ctx, "discount20", d("1000"))
	assert.ErrorIs(t, err, ErrInvalidCoupon)
}

func TestRepoValidator_EmptyRepository(t *testing.T) {
	ctx := context.Background()
	v, err := NewRepoValidator(ctx, &mapRepo{rules: map[string]*Rule{}})
	require.NoError(t, err)

	_, err = v.Validate(ctx, "ANY", d("10"))
	assert.ErrorIs(t, err, ErrInvalidCoupon)
}
