package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/dataset"
)

func TestParseExpenseQuery(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		query   string
		wantErr string
		check   func(t *testing.T, q ExpenseQuery)
	}{
		{
			name:  "defaults",
			query: "",
			check: func(t *testing.T, q ExpenseQuery) {
				assert.Equal(t, dataset.MaxLimit, q.Limit)
				assert.Zero(t, q.Offset)
			},
		},
		{
			name:  "all filters",
			query: "category=Food&tag=weekly&search=%20milk%20&start_date=2024-01-01&end_date=2024-12-31&min_amount=10.5&max_amount=200&limit=20&offset=40",
			check: func(t *testing.T, q ExpenseQuery) {
				f := q.Filter()
				assert.Equal(t, "Food", f.Category)
				assert.Equal(t, "milk", f.Search)
				require.NotNil(t, f.Start)
				assert.Equal(t, "2024-01-01", f.Start.Format(queryDateLayout))
				require.NotNil(t, f.MinAmount)
				assert.Equal(t, "10.5", f.MinAmount.String())
				assert.Equal(t, 20, f.Limit)
				assert.Equal(t, 40, f.Offset)
			},
		},
		{name: "bad date", query: "start_date=2024/01/01", wantErr: "start_date must be a date in format YYYY-MM-DD"},
		{name: "bad amount", query: "min_amount=ten", wantErr: "min_amount must be a number"},
		{name: "limit too large", query: "limit=10001", wantErr: "limit must be at most 10000"},
		{name: "negative offset", query: "offset=-1", wantErr: "offset must be at least 0"},
		{name: "non numeric limit", query: "limit=many", wantErr: "limit must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			q, err := ParseExpenseQuery(v, values)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, q)
		})
	}
}

func TestParseSearchQuery(t *testing.T) {
	v := newValidator()

	q, err := ParseSearchQuery(v, url.Values{"q": {"  coffee\x00 "}})
	require.NoError(t, err)
	assert.Equal(t, "coffee", q.Q)
	assert.Equal(t, dataset.DefaultSearchLimit, q.Limit)

	_, err = ParseSearchQuery(v, url.Values{"q": {"   "}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q is a required field")
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb", sanitizeInput(" a\tb\r\n"))
	assert.Equal(t, "", sanitizeInput("\x01\x02"))
}
