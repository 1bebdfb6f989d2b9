package privacy

import (
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// Places is the number of decimals kept in a normalized amount.
const Places = 2

// Normalizer scales amounts by one factor. Take one per response and use it
// for every amount in that response.
type Normalizer struct {
	factor Factor
	scale  decimal.Decimal
}

// NewNormalizer builds a Normalizer for f.
func NewNormalizer(f Factor) Normalizer {
	return Normalizer{factor: f, scale: decimal.NewFromFloat(float64(f))}
}

// Today returns a Normalizer using the factor of the current UTC date.
func Today() Normalizer {
	return NewNormalizer(DailyFactor(time.Now()))
}

// Factor returns the factor in use.
func (n Normalizer) Factor() Factor { return n.factor }

// Apply returns round(amount * factor, 2). Sign is preserved.
func (n Normalizer) Apply(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(n.scale).Round(Places)
}

// ApplyNull normalizes a nullable amount; absence stays absent.
func (n Normalizer) ApplyNull(amount decimal.NullDecimal) decimal.NullDecimal {
	if !amount.Valid {
		return amount
	}
	return decimal.NewNullDecimal(n.Apply(amount.Decimal))
}

// NormalizeString parses a textual amount and normalizes it. A blank string
// yields an invalid NullDecimal. A nil factor means today's factor.
// Malformed input returns core.ErrInvalidAmount.
func NormalizeString(s string, factor *Factor) (decimal.NullDecimal, error) {
	d, ok, err := core.ParseAmount(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if !ok {
		return decimal.NullDecimal{}, nil
	}
	n := Today()
	if factor != nil {
		n = NewNormalizer(*factor)
	}
	return decimal.NewNullDecimal(n.Apply(d)), nil
}
