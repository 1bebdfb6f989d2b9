package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/core"
	"findash/internal/dataset"
)

func TestAmountMarshalsTwoDecimals(t *testing.T) {
	b, err := json.Marshal(struct {
		A Amount `json:"a"`
	}{A: Amount(decimal.RequireFromString("1234.5"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1234.50}`, string(b))
	assert.Contains(t, string(b), "1234.50")
}

func TestOrderedMapsKeepOrder(t *testing.T) {
	m := amountMap{
		{Name: "Rent", Amount: decimal.NewFromInt(900)},
		{Name: "Food", Amount: decimal.RequireFromString("120.5")},
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"Rent":900.00,"Food":120.50}`, string(b))

	p := periodMap{{
		Period:   "2024-01",
		Expenses: decimal.NewFromInt(10),
		Income:   decimal.NewFromInt(30),
		Net:      decimal.NewFromInt(20),
	}}
	b, err = json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"2024-01":{"expenses":10.00,"income":30.00,"net":20.00}}`, string(b))

	b, err = json.Marshal(amountMap{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestTransactionRecordKeys(t *testing.T) {
	rec := newRecord(core.Transaction{
		Date:           time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Category:       "Books",
		ExpenseAmount:  decimal.NewFromInt(12),
		InMainCurrency: decimal.NewFromInt(12),
		Currency:       "EUR",
		MainCurrency:   "EUR",
	})
	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "2024-05-01T00:00:00", out["Date"])
	assert.Equal(t, 12.0, out["Expense amount"])
	assert.Equal(t, 0.0, out["Income amount"])
	assert.Equal(t, "Books", out["Category"])

	undated, err := json.Marshal(newRecord(core.Transaction{Category: "Misc"}))
	require.NoError(t, err)
	assert.Contains(t, string(undated), `"Date":null`)
	assert.Contains(t, string(undated), `"Expense amount":0.00`)
}

func TestSummaryResponseShape(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := newSummaryResponse(dataset.Summary{
		TotalExpenses: decimal.NewFromInt(5),
		Currency:      "EUR",
		Start:         &start,
	}, true)
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, true, out["is_normalized"])
	assert.Equal(t, map[string]any{"start": "2024-01-01T00:00:00", "end": nil}, out["date_range"])
	assert.Equal(t, map[string]any{}, out["category_breakdown"])
}
