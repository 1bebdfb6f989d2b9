package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by a label (category or tag).
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// PeriodTotals is the expense/income balance of a month ("2024-03") or year ("2024").
type PeriodTotals struct {
	Period   string
	Expenses decimal.Decimal
	Income   decimal.Decimal
}

// Net is income minus expenses.
func (p PeriodTotals) Net() decimal.Decimal {
	return p.Income.Sub(p.Expenses)
}

// SortByAmountDesc orders amounts largest first, ties broken by name.
func SortByAmountDesc(items []CategoryAmount) {
	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].Amount.Cmp(items[j].Amount); c != 0 {
			return c > 0
		}
		return items[i].Name < items[j].Name
	})
}

// SumByName groups amounts by label keeping the result sorted largest first.
func SumByName(items []CategoryAmount) []CategoryAmount {
	index := make(map[string]int, len(items))
	out := make([]CategoryAmount, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.Name]; ok {
			out[i].Amount = out[i].Amount.Add(it.Amount)
			continue
		}
		index[it.Name] = len(out)
		out = append(out, it)
	}
	SortByAmountDesc(out)
	return out
}
