package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"03/15/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("%q: unexpected error state %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: got %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" food, ,travel ,food")
	want := []string{"food", "travel", "food"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if SplitTags("  ") != nil {
		t.Fatal("blank tags should be nil")
	}
}

func TestResolveMainCurrency(t *testing.T) {
	tx := Transaction{ExpenseAmount: decimal.NewFromInt(40)}
	tx.ResolveMainCurrency()
	if tx.Currency != DefaultCurrency || tx.MainCurrency != DefaultCurrency {
		t.Fatalf("currency defaults not applied: %+v", tx)
	}
	if !tx.InMainCurrency.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("in main currency = %s", tx.InMainCurrency)
	}

	foreign := Transaction{IncomeAmount: decimal.NewFromInt(100), Currency: "USD", MainCurrency: "EUR"}
	foreign.ResolveMainCurrency()
	if !foreign.InMainCurrency.IsZero() {
		t.Fatalf("foreign amount must not be copied: %s", foreign.InMainCurrency)
	}
}

func TestSumByName(t *testing.T) {
	got := SumByName([]CategoryAmount{
		{Name: "Other Income", Amount: decimal.NewFromInt(10)},
		{Name: "Freelance Work", Amount: decimal.NewFromInt(5)},
		{Name: "Other Income", Amount: decimal.NewFromInt(7)},
	})
	if len(got) != 2 || got[0].Name != "Other Income" || !got[0].Amount.Equal(decimal.NewFromInt(17)) {
		t.Fatalf("unexpected merge %+v", got)
	}
}
