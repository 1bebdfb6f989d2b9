package dataset

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

const (
	MaxLimit           = 10000
	DefaultSearchLimit = 50
)

// Filter narrows a row list. Text filters are case-insensitive substring
// matches; date bounds are inclusive and exclude undated rows.
type Filter struct {
	Category  string
	Tag       string
	Search    string
	Start     *time.Time
	End       *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Limit     int
	Offset    int
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// matchesText reports whether q occurs in the category, tags or description.
func matchesText(tx core.Transaction, q string) bool {
	return containsFold(tx.Category, q) || containsFold(tx.Tags, q) || containsFold(tx.Description, q)
}

func (f Filter) matchDates(tx core.Transaction) bool {
	if f.Start == nil && f.End == nil {
		return true
	}
	if !tx.HasDate() {
		return false
	}
	if f.Start != nil && tx.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && tx.Date.After(*f.End) {
		return false
	}
	return true
}

// match runs every filter against a projected row. Amount bounds compare
// against the amount as the view presents it.
func (f Filter) match(tx core.Transaction, v View) bool {
	if f.Category != "" && !containsFold(tx.Category, f.Category) {
		return false
	}
	if f.Tag != "" && !containsFold(tx.Tags, f.Tag) {
		return false
	}
	if f.Search != "" && !matchesText(tx, f.Search) {
		return false
	}
	if !f.matchDates(tx) {
		return false
	}
	if f.MinAmount != nil || f.MaxAmount != nil {
		amount := v.Amount(tx.InMainCurrency)
		if f.MinAmount != nil && amount.LessThan(*f.MinAmount) {
			return false
		}
		if f.MaxAmount != nil && amount.GreaterThan(*f.MaxAmount) {
			return false
		}
	}
	return true
}

// page slices rows by offset and limit. A zero limit means MaxLimit.
func page(txs []core.Transaction, offset, limit int) []core.Transaction {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(txs) {
		return []core.Transaction{}
	}
	end := offset + limit
	if end > len(txs) {
		end = len(txs)
	}
	return txs[offset:end]
}
