package dataset

import (
	"github.com/shopspring/decimal"

	"findash/internal/core"
	"findash/internal/privacy"
)

// View decides how rows and amounts are presented to one request. The zero
// value is the trusted view: real labels and real amounts.
type View struct {
	normalizer *privacy.Normalizer
}

// TrustedView shows real data.
func TrustedView() View { return View{} }

// GuestView anonymizes income labels and scales every amount with n.
func GuestView(n privacy.Normalizer) View { return View{normalizer: &n} }

// Normalized reports whether amounts are obfuscated.
func (v View) Normalized() bool { return v.normalizer != nil }

// Amount presents a single amount.
func (v View) Amount(d decimal.Decimal) decimal.Decimal {
	if v.normalizer == nil {
		return d
	}
	return v.normalizer.Apply(d)
}

// project applies the guest text projection; amounts stay real so that
// aggregates are computed before rounding.
func (v View) project(txs []core.Transaction) []core.Transaction {
	if v.normalizer == nil {
		return txs
	}
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = privacy.GuestRow(tx)
	}
	return out
}

// rows presents the amounts of already projected rows.
func (v View) rows(txs []core.Transaction) []core.Transaction {
	if v.normalizer == nil {
		return txs
	}
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = privacy.NormalizeEntry(tx, *v.normalizer)
	}
	return out
}

func (v View) amounts(items []core.CategoryAmount) []core.CategoryAmount {
	if v.normalizer == nil {
		return items
	}
	out := make([]core.CategoryAmount, len(items))
	for i, it := range items {
		out[i] = core.CategoryAmount{Name: it.Name, Amount: v.Amount(it.Amount)}
	}
	return out
}

func (v View) periods(items []Period) []Period {
	if v.normalizer == nil {
		return items
	}
	out := make([]Period, len(items))
	for i, p := range items {
		out[i] = Period{
			Period:   p.Period,
			Expenses: v.Amount(p.Expenses),
			Income:   v.Amount(p.Income),
			Net:      v.Amount(p.Net),
		}
	}
	return out
}
