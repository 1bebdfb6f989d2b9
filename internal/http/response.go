package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"findash/internal/core"
	"findash/internal/dataset"
)

const (
	StatusError   = "Error"
	StatusSuccess = "success"

	isoLayout = "2006-01-02T15:04:05"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func errorBody(msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: msg}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorBody(msg))
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", e.Field()))
		case "numeric":
			msgs = append(msgs, fmt.Sprintf("field %s must be a number", e.Field()))
		case "isodate":
			msgs = append(msgs, fmt.Sprintf("field %s must be a date in format YYYY-MM-DD", e.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", e.Field(), e.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", e.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}

// Amount renders a decimal as a JSON number with two decimals.
type Amount decimal.Decimal

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(2)), nil
}

// isoDate renders a date the way the dashboard expects, null when unknown.
type isoDate struct{ t *time.Time }

func (d isoDate) MarshalJSON() ([]byte, error) {
	if d.t == nil || d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(isoLayout))
}

// amountMap is an ordered JSON object of label to amount.
type amountMap []core.CategoryAmount

func (m amountMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(it.Amount.StringFixed(2))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type periodTotals struct {
	Expenses Amount `json:"expenses"`
	Income   Amount `json:"income"`
	Net      Amount `json:"net"`
}

// periodMap is an ordered JSON object of period to totals.
type periodMap []dataset.Period

func (m periodMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Period)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(periodTotals{Expenses: Amount(p.Expenses), Income: Amount(p.Income), Net: Amount(p.Net)})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TransactionRecord is one row as served to the dashboard. Keys follow the
// export's column headers.
type TransactionRecord struct {
	ID             int64   `json:"id,omitempty"`
	Date           isoDate `json:"Date"`
	Account        string  `json:"Account"`
	Category       string  `json:"Category"`
	Tags           string  `json:"Tags"`
	ExpenseAmount  Amount  `json:"Expense amount"`
	IncomeAmount   Amount  `json:"Income amount"`
	Currency       string  `json:"Currency"`
	MainCurrency   string  `json:"Main currency"`
	InMainCurrency Amount  `json:"In main currency"`
	Description    string  `json:"Description"`
}

func newRecord(tx core.Transaction) TransactionRecord {
	rec := TransactionRecord{
		ID:             tx.ID,
		Account:        tx.Account,
		Category:       tx.Category,
		Tags:           tx.Tags,
		ExpenseAmount:  Amount(tx.ExpenseAmount),
		IncomeAmount:   Amount(tx.IncomeAmount),
		Currency:       tx.Currency,
		MainCurrency:   tx.MainCurrency,
		InMainCurrency: Amount(tx.InMainCurrency),
		Description:    tx.Description,
	}
	if tx.HasDate() {
		d := tx.Date
		rec.Date = isoDate{&d}
	}
	return rec
}

func newRecords(txs []core.Transaction) []TransactionRecord {
	out := make([]TransactionRecord, len(txs))
	for i, tx := range txs {
		out[i] = newRecord(tx)
	}
	return out
}

type dateRange struct {
	Start isoDate `json:"start"`
	End   isoDate `json:"end"`
}

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	TotalExpenses     Amount    `json:"total_expenses"`
	TotalIncome       Amount    `json:"total_income"`
	Net               Amount    `json:"net"`
	CategoryBreakdown amountMap `json:"category_breakdown"`
	IncomeBreakdown   amountMap `json:"income_breakdown"`
	MonthlySummary    periodMap `json:"monthly_summary"`
	YearlySummary     periodMap `json:"yearly_summary"`
	TopTags           amountMap `json:"top_tags"`
	Currency          string    `json:"currency"`
	DateRange         dateRange `json:"date_range"`
	IncomeCount       int       `json:"income_count"`
	ExpenseCount      int       `json:"expense_count"`
	IsNormalized      bool      `json:"is_normalized"`
}

func newSummaryResponse(s dataset.Summary, normalized bool) SummaryResponse {
	return SummaryResponse{
		TotalExpenses:     Amount(s.TotalExpenses),
		TotalIncome:       Amount(s.TotalIncome),
		Net:               Amount(s.Net),
		CategoryBreakdown: amountMap(s.CategoryBreakdown),
		IncomeBreakdown:   amountMap(s.IncomeBreakdown),
		MonthlySummary:    periodMap(s.Monthly),
		YearlySummary:     periodMap(s.Yearly),
		TopTags:           amountMap(s.TopTags),
		Currency:          s.Currency,
		DateRange:         dateRange{Start: isoDate{s.Start}, End: isoDate{s.End}},
		IncomeCount:       s.IncomeCount,
		ExpenseCount:      s.ExpenseCount,
		IsNormalized:      normalized,
	}
}

// ExpensesResponse is the body of GET /api/expenses.
type ExpensesResponse struct {
	Total        int                 `json:"total"`
	Expenses     []TransactionRecord `json:"expenses"`
	Limit        int                 `json:"limit"`
	Offset       int                 `json:"offset"`
	IsNormalized bool                `json:"is_normalized"`
}

// IncomeResponse is the body of GET /api/income.
type IncomeResponse struct {
	Total        int                 `json:"total"`
	Income       []TransactionRecord `json:"income"`
	Limit        int                 `json:"limit"`
	Offset       int                 `json:"offset"`
	IsNormalized bool                `json:"is_normalized"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query        string              `json:"query"`
	TotalAmount  Amount              `json:"total_amount"`
	TotalIncome  Amount              `json:"total_income"`
	Count        int                 `json:"count"`
	Results      []TransactionRecord `json:"results"`
	IsNormalized bool                `json:"is_normalized"`
}

// AuthResponse is the body of the login, logout and status endpoints.
type AuthResponse struct {
	Success       *bool  `json:"success,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Mode          string `json:"mode"`
	Message       string `json:"message"`
}

type HealthResponse struct {
	Message  string `json:"message"`
	Status   string `json:"status"`
	Database string `json:"database"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

type InsightsResponse struct {
	Insights string `json:"insights"`
	Query    string `json:"query"`
}

// AdminResponse reports an administrative operation.
type AdminResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	TotalCount *int   `json:"total_count,omitempty"`
}
