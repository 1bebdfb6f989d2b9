package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/core"
	"findash/internal/dataset"
)

// DefaultQuery is asked when the caller sends none.
const DefaultQuery = "Analyze my spending and income patterns and provide advice on how to optimize my finances."

const (
	topCategories       = 10
	topIncomeCategories = 5
	topTags             = 10
)

// BuildPrompt renders the summary and question into the model prompt.
func BuildPrompt(s dataset.Summary, query string) string {
	var b strings.Builder
	cur := s.Currency

	b.WriteString("You are a financial advisor analyzing expense data. Here's the summary:\n\n")
	fmt.Fprintf(&b, "Total Expenses: %s %s\n", money(s.TotalExpenses), cur)
	fmt.Fprintf(&b, "Total Income: %s %s\n", money(s.TotalIncome), cur)
	fmt.Fprintf(&b, "Net Balance: %s %s\n", money(s.Net), cur)
	fmt.Fprintf(&b, "Date Range: %s to %s\n", date(s.Start), date(s.End))

	section(&b, "Top Spending Categories", s.CategoryBreakdown, topCategories, cur)
	section(&b, "Income by Category", s.IncomeBreakdown, topIncomeCategories, cur)
	section(&b, "Top Expense Tags", s.TopTags, topTags, cur)

	fmt.Fprintf(&b, "\nQuestion: %s\n\n", query)
	b.WriteString("Provide specific, actionable financial advice based on this data.")
	return b.String()
}

func section(b *strings.Builder, title string, items []core.CategoryAmount, limit int, cur string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(items) > limit {
		items = items[:limit]
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s: %s %s\n", it.Name, money(it.Amount), cur)
	}
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func date(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Format("2006-01-02")
}
