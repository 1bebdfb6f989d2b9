package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"findash/internal/dataset"
)

const (
	queryDateLayout = "2006-01-02"
	maxJSONBody     = 64 << 10
)

// newValidator reports fields by their json/query names and knows the
// isodate tag (YYYY-MM-DD).
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(queryDateLayout, fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ExpenseQuery holds the /api/expenses query string.
type ExpenseQuery struct {
	Category  string `json:"category" validate:"max=200"`
	Tag       string `json:"tag" validate:"max=200"`
	Search    string `json:"search" validate:"max=200"`
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
	MinAmount string `json:"min_amount" validate:"omitempty,numeric"`
	MaxAmount string `json:"max_amount" validate:"omitempty,numeric"`
	Limit     int    `json:"limit" validate:"min=1,max=10000"`
	Offset    int    `json:"offset" validate:"min=0"`
}

// SearchQuery holds the /api/search query string.
type SearchQuery struct {
	Q     string `json:"q" validate:"required,max=200"`
	Limit int    `json:"limit" validate:"min=1,max=10000"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}

// InsightRequest is the body of POST /api/insights.
type InsightRequest struct {
	Query      string `json:"query" validate:"max=2000"`
	TimePeriod string `json:"time_period" validate:"omitempty,oneof=all year month"`
}

// intParam reads an optional integer query parameter.
func intParam(q url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("field %s must be an integer", name)
	}
	return n, nil
}

func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// ParseExpenseQuery reads and validates the expense filters.
func ParseExpenseQuery(v *validator.Validate, q url.Values) (ExpenseQuery, error) {
	eq := ExpenseQuery{
		Category:  sanitizeInput(q.Get("category")),
		Tag:       sanitizeInput(q.Get("tag")),
		Search:    sanitizeInput(q.Get("search")),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
		MinAmount: strings.TrimSpace(q.Get("min_amount")),
		MaxAmount: strings.TrimSpace(q.Get("max_amount")),
	}
	var err error
	if eq.Limit, err = intParam(q, "limit", dataset.MaxLimit); err != nil {
		return eq, err
	}
	if eq.Offset, err = intParam(q, "offset", 0); err != nil {
		return eq, err
	}
	if err := v.Struct(eq); err != nil {
		return eq, errors.New(validationMessage(err))
	}
	return eq, nil
}

// Filter converts the validated query into a dataset filter.
func (eq ExpenseQuery) Filter() dataset.Filter {
	f := dataset.Filter{
		Category:  eq.Category,
		Tag:       eq.Tag,
		Search:    eq.Search,
		Start:     parseQueryDate(eq.StartDate),
		End:       parseQueryDate(eq.EndDate),
		MinAmount: parseQueryAmount(eq.MinAmount),
		MaxAmount: parseQueryAmount(eq.MaxAmount),
		Limit:     eq.Limit,
		Offset:    eq.Offset,
	}
	return f
}

// ParseSearchQuery reads and validates the search parameters.
func ParseSearchQuery(v *validator.Validate, q url.Values) (SearchQuery, error) {
	sq := SearchQuery{Q: sanitizeInput(q.Get("q"))}
	var err error
	if sq.Limit, err = intParam(q, "limit", dataset.DefaultSearchLimit); err != nil {
		return sq, err
	}
	if err := v.Struct(sq); err != nil {
		return sq, errors.New(validationMessage(err))
	}
	return sq, nil
}

// parseQueryDate reads an already validated YYYY-MM-DD value.
func parseQueryDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(queryDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseQueryAmount(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid request body")
	}
	if err := v.Struct(dst); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}
