// Package core holds the transaction model and amount parsing shared by
// every data source.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ThousandsSeparator is stripped from amounts before parsing.
const ThousandsSeparator = ","

// ParseAmount parses a decimal amount such as "1,234.50".
//
// ok is false when s is blank, so callers can tell absence from zero.
// Anything else that does not parse returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("1,234.50") -> 1234.50, true, nil
//	ParseAmount("")         -> 0, false, nil
//	ParseAmount("12x")      -> 0, false, ErrInvalidAmount
func ParseAmount(s string) (d decimal.Decimal, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false, nil
	}
	cleaned := strings.ReplaceAll(s, ThousandsSeparator, "")
	d, err = decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, true, nil
}

// ParseAmountOrZero is ParseAmount with blank values read as zero.
func ParseAmountOrZero(s string) (decimal.Decimal, error) {
	d, _, err := ParseAmount(s)
	return d, err
}

// String formats the amount with two decimals and its currency code.
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}
