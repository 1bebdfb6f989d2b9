package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in     string
		out    string
		ok     bool
		hasErr bool
	}{
		{"1", "1", true, false},
		{"1.23", "1.23", true, false},
		{"1,234.50", "1234.5", true, false},
		{"1,000,000", "1000000", true, false},
		{" -12.40 ", "-12.4", true, false},
		{"", "0", false, false},
		{"   ", "0", false, false},
		{"abc", "0", false, true},
		{"1.2.3", "0", false, true},
	}
	for _, tc := range cases {
		got, ok, err := ParseAmount(tc.in)
		if tc.hasErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error %v", tc.in, err)
		}
		if ok != tc.ok || !got.Equal(decimal.RequireFromString(tc.out)) {
			t.Fatalf("%q expected %s/%v, got %s/%v", tc.in, tc.out, tc.ok, got, ok)
		}
	}
}

func TestMoneyString(t *testing.T) {
	m := Money{Amount: decimal.RequireFromString("12.5"), Currency: "EUR"}
	if m.String() != "12.50 EUR" {
		t.Fatalf("got %q", m.String())
	}
}
