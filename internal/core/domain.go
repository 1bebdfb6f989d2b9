package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the month/day/year layout used by the exported CSV files.
	DateLayout = "01/02/06"
	// DefaultCurrency is used when a record or dataset carries no currency.
	DefaultCurrency = "EUR"
)

// Alternative layouts accepted when reading dates from other sources.
var dateLayouts = []string{DateLayout, "2006-01-02", "01/02/2006", time.RFC3339}

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

type (
	// Money is a signed amount in a currency.
	Money struct {
		Amount   decimal.Decimal
		Currency string
	}

	// Transaction is one row of the finance export. A row is an expense when
	// ExpenseAmount is positive and income when IncomeAmount is positive.
	Transaction struct {
		ID             int64
		Date           time.Time // zero when the source date is missing or unparsable
		Account        string
		Category       string
		Tags           string // comma separated
		ExpenseAmount  decimal.Decimal
		IncomeAmount   decimal.Decimal
		Currency       string
		MainCurrency   string
		InMainCurrency decimal.Decimal
		Description    string
	}
)

// IsExpense reports whether the row is an expense.
func (t Transaction) IsExpense() bool { return t.ExpenseAmount.IsPositive() }

// IsIncome reports whether the row is income.
func (t Transaction) IsIncome() bool { return t.IncomeAmount.IsPositive() }

// HasDate reports whether the row carries a usable date.
func (t Transaction) HasDate() bool { return !t.Date.IsZero() }

// Value is the row amount converted to the main currency.
func (t Transaction) Value() Money {
	return Money{Amount: t.InMainCurrency, Currency: t.MainCurrency}
}

// TagList splits Tags on commas, trimming blanks.
func (t Transaction) TagList() []string {
	return SplitTags(t.Tags)
}

// SplitTags splits a comma separated tag string, dropping empty entries.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseDate reads a date in any supported layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ResolveMainCurrency fills currency defaults and derives the main-currency
// amount when the source left it blank and both currencies agree.
func (t *Transaction) ResolveMainCurrency() {
	if t.Currency == "" {
		t.Currency = DefaultCurrency
	}
	if t.MainCurrency == "" {
		t.MainCurrency = t.Currency
	}
	if !t.InMainCurrency.IsZero() || t.Currency != t.MainCurrency {
		return
	}
	if t.IsExpense() {
		t.InMainCurrency = t.ExpenseAmount
	} else if t.IsIncome() {
		t.InMainCurrency = t.IncomeAmount
	}
}
