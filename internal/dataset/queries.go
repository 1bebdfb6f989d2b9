package dataset

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// Page is one slice of a filtered row list. Total counts every match.
type Page struct {
	Total  int
	Rows   []core.Transaction
	Limit  int
	Offset int
}

// SearchResult holds the rows matching a free-text query.
type SearchResult struct {
	Query       string
	TotalAmount decimal.Decimal
	TotalIncome decimal.Decimal
	Count       int
	Rows        []core.Transaction
}

// Expenses lists rows matching f, newest first.
func (s *Service) Expenses(ctx context.Context, v View, f Filter) (Page, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return Page{}, err
	}
	var matched []core.Transaction
	for _, tx := range v.project(txs) {
		if f.match(tx, v) {
			matched = append(matched, tx)
		}
	}
	return newPage(matched, f, v), nil
}

// Income lists income rows inside the date bounds of f.
func (s *Service) Income(ctx context.Context, v View, f Filter) (Page, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return Page{}, err
	}
	var matched []core.Transaction
	for _, tx := range txs {
		if tx.IsIncome() && f.matchDates(tx) {
			matched = append(matched, tx)
		}
	}
	return newPage(v.project(matched), f, v), nil
}

func newPage(matched []core.Transaction, f Filter, v View) Page {
	limit := f.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{
		Total:  len(matched),
		Rows:   v.rows(page(matched, f.Offset, limit)),
		Limit:  limit,
		Offset: f.Offset,
	}
}

// Search matches q against category, tags and description. Totals cover
// every match; Rows holds at most limit of them.
func (s *Service) Search(ctx context.Context, v View, q string, limit int) (SearchResult, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	res := SearchResult{Query: q}
	var matched []core.Transaction
	for _, tx := range v.project(txs) {
		if !matchesText(tx, q) {
			continue
		}
		matched = append(matched, tx)
		if tx.IsExpense() {
			res.TotalAmount = res.TotalAmount.Add(tx.InMainCurrency)
		}
		if tx.IsIncome() {
			res.TotalIncome = res.TotalIncome.Add(tx.InMainCurrency)
		}
	}
	res.Count = len(matched)
	res.TotalAmount = v.Amount(res.TotalAmount)
	res.TotalIncome = v.Amount(res.TotalIncome)
	res.Rows = v.rows(page(matched, 0, limit))
	return res, nil
}

// Summary aggregates the whole dataset as v presents it.
func (s *Service) Summary(ctx context.Context, v View) (Summary, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(v.project(txs)).present(v), nil
}

// TimePeriod limits the rows an insight request looks at.
type TimePeriod string

const (
	PeriodAll   TimePeriod = "all"
	PeriodYear  TimePeriod = "year"
	PeriodMonth TimePeriod = "month"
)

// Since returns the start of p relative to now, or nil for all time.
func (p TimePeriod) Since(now time.Time) *time.Time {
	var t time.Time
	switch p {
	case PeriodYear:
		t = now.AddDate(-1, 0, 0)
	case PeriodMonth:
		t = now.AddDate(0, -1, 0)
	default:
		return nil
	}
	return &t
}

// RealSummary summarizes the real dataset, optionally limited to rows dated
// on or after since. It never obfuscates and is meant for trusted callers.
func (s *Service) RealSummary(ctx context.Context, since *time.Time) (Summary, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	if since != nil {
		f := Filter{Start: since}
		var scoped []core.Transaction
		for _, tx := range txs {
			if f.matchDates(tx) {
				scoped = append(scoped, tx)
			}
		}
		txs = scoped
	}
	return Summarize(txs), nil
}

// Categories returns the sorted distinct categories as v presents them.
func (s *Service) Categories(ctx context.Context, v View) ([]string, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	set := map[string]struct{}{}
	for _, tx := range v.project(txs) {
		if c := strings.TrimSpace(tx.Category); c != "" {
			set[c] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

// Tags returns the sorted distinct tags as v presents them.
func (s *Service) Tags(ctx context.Context, v View) ([]string, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	set := map[string]struct{}{}
	for _, tx := range v.project(txs) {
		for _, tag := range tx.TagList() {
			set[tag] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
