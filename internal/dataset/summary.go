package dataset

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// TopTagLimit caps Summary.TopTags.
const TopTagLimit = 20

// Period is the balance of one month ("2024-03") or year ("2024").
type Period struct {
	Period   string
	Expenses decimal.Decimal
	Income   decimal.Decimal
	Net      decimal.Decimal
}

// Summary aggregates a dataset. Amounts use the main-currency column.
type Summary struct {
	TotalExpenses     decimal.Decimal
	TotalIncome       decimal.Decimal
	Net               decimal.Decimal
	CategoryBreakdown []core.CategoryAmount
	IncomeBreakdown   []core.CategoryAmount
	Monthly           []Period
	Yearly            []Period
	TopTags           []core.CategoryAmount
	Currency          string
	Start             *time.Time
	End               *time.Time
	IncomeCount       int
	ExpenseCount      int
}

// Summarize computes the dashboard summary of txs with real amounts.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{Currency: mainCurrency(txs)}

	var expenses, income, tags []core.CategoryAmount
	monthly := map[string]*core.PeriodTotals{}
	yearly := map[string]*core.PeriodTotals{}

	for _, tx := range txs {
		if tx.HasDate() {
			d := tx.Date
			if s.Start == nil || d.Before(*s.Start) {
				s.Start = &d
			}
			if s.End == nil || d.After(*s.End) {
				s.End = &d
			}
		}

		amount := tx.InMainCurrency
		if tx.IsExpense() {
			s.ExpenseCount++
			s.TotalExpenses = s.TotalExpenses.Add(amount)
			expenses = append(expenses, core.CategoryAmount{Name: tx.Category, Amount: amount})
			for _, tag := range tx.TagList() {
				tags = append(tags, core.CategoryAmount{Name: tag, Amount: amount})
			}
		}
		if tx.IsIncome() {
			s.IncomeCount++
			s.TotalIncome = s.TotalIncome.Add(amount)
			income = append(income, core.CategoryAmount{Name: tx.Category, Amount: amount})
		}
		if tx.HasDate() {
			addPeriod(monthly, tx.Date.Format("2006-01"), tx)
			addPeriod(yearly, strconv.Itoa(tx.Date.Year()), tx)
		}
	}

	s.Net = s.TotalIncome.Sub(s.TotalExpenses)
	s.CategoryBreakdown = nonNil(core.SumByName(expenses))
	s.IncomeBreakdown = nonNil(core.SumByName(income))
	s.TopTags = nonNil(core.SumByName(tags))
	if len(s.TopTags) > TopTagLimit {
		s.TopTags = s.TopTags[:TopTagLimit]
	}
	s.Monthly = sortedPeriods(monthly)
	s.Yearly = sortedPeriods(yearly)
	return s
}

func addPeriod(m map[string]*core.PeriodTotals, key string, tx core.Transaction) {
	p, ok := m[key]
	if !ok {
		p = &core.PeriodTotals{Period: key}
		m[key] = p
	}
	if tx.IsExpense() {
		p.Expenses = p.Expenses.Add(tx.InMainCurrency)
	}
	if tx.IsIncome() {
		p.Income = p.Income.Add(tx.InMainCurrency)
	}
}

func sortedPeriods(m map[string]*core.PeriodTotals) []Period {
	out := make([]Period, 0, len(m))
	for _, p := range m {
		out = append(out, Period{Period: p.Period, Expenses: p.Expenses, Income: p.Income, Net: p.Net()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// mainCurrency is the most frequent main currency, ties broken
// alphabetically; DefaultCurrency for an empty set.
func mainCurrency(txs []core.Transaction) string {
	counts := map[string]int{}
	for _, tx := range txs {
		if tx.MainCurrency != "" {
			counts[tx.MainCurrency]++
		}
	}
	best, n := core.DefaultCurrency, 0
	for c, k := range counts {
		if k > n || (k == n && c < best) {
			best, n = c, k
		}
	}
	return best
}

func nonNil(items []core.CategoryAmount) []core.CategoryAmount {
	if items == nil {
		return []core.CategoryAmount{}
	}
	return items
}

// present returns the summary as v shows it.
func (s Summary) present(v View) Summary {
	if !v.Normalized() {
		return s
	}
	s.TotalExpenses = v.Amount(s.TotalExpenses)
	s.TotalIncome = v.Amount(s.TotalIncome)
	s.Net = v.Amount(s.Net)
	s.CategoryBreakdown = v.amounts(s.CategoryBreakdown)
	s.IncomeBreakdown = v.amounts(s.IncomeBreakdown)
	s.TopTags = v.amounts(s.TopTags)
	s.Monthly = v.periods(s.Monthly)
	s.Yearly = v.periods(s.Yearly)
	return s
}
