package privacy

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalizerApply(t *testing.T) {
	n := NewNormalizer(0.3)

	assert.True(t, n.Apply(dec("1000.00")).Equal(dec("300.00")))
	assert.True(t, n.Apply(dec("-50")).Equal(dec("-15")), "sign is preserved")
	assert.True(t, n.Apply(dec("0.05")).Equal(dec("0.02")), "0.015 rounds half away from zero")
	assert.Equal(t, "300.00", n.Apply(dec("1000")).StringFixed(2))
}

func TestNormalizerPreservesAbsence(t *testing.T) {
	for _, f := range []Factor{0.2, 0.25, 0.3999} {
		got := NewNormalizer(f).ApplyNull(decimal.NullDecimal{})
		assert.False(t, got.Valid)
	}
}

func TestNormalizerLinearity(t *testing.T) {
	cent := dec("0.01")
	for _, f := range []Factor{0.2, 0.237, 0.31, 0.3999} {
		n := NewNormalizer(f)
		for _, x := range []string{"1", "13.37", "999.99", "12345.67"} {
			single := n.Apply(dec(x))
			double := n.Apply(dec(x).Mul(decimal.NewFromInt(2)))
			diff := double.Sub(single.Mul(decimal.NewFromInt(2)).Round(2)).Abs()
			assert.True(t, diff.LessThanOrEqual(cent), "f=%v x=%s diff=%s", f, x, diff)
		}
	}
}

func TestNormalizerKeepsOrdering(t *testing.T) {
	n := NewNormalizer(0.27)
	a, b := dec("120.40"), dec("99.99")
	assert.True(t, n.Apply(a).GreaterThan(n.Apply(b)))
}

func TestNormalizeString(t *testing.T) {
	f := Factor(0.3)

	got, err := NormalizeString("1,000.00", &f)
	require.NoError(t, err)
	require.True(t, got.Valid)
	assert.True(t, got.Decimal.Equal(dec("300")))

	got, err = NormalizeString("", &f)
	require.NoError(t, err)
	assert.False(t, got.Valid)

	_, err = NormalizeString("12abc", &f)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
}

func TestNormalizeStringDefaultsToToday(t *testing.T) {
	got, err := NormalizeString("100", nil)
	require.NoError(t, err)
	require.True(t, got.Valid)
	assert.True(t, got.Decimal.GreaterThanOrEqual(dec("20")))
	assert.True(t, got.Decimal.LessThanOrEqual(dec("40")))
}
