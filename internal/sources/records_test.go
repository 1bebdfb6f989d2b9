package sources

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/core"
)

const sampleCSV = `Date,Account,Category,Tags,Expense amount,Income amount,Currency,Main currency,In main currency,Description
03/01/24,Checking,Groceries,"food, weekly","1,234.50",0,EUR,EUR,"1,234.50",Supermarket
03/02/24,Checking,Salary payment,monthly,0,2500,EUR,EUR,2500,March salary
bad-date,Card,Travel,,20,0,USD,EUR,18.40,Taxi
,,,,,,,,,
`

func TestReadCSV(t *testing.T) {
	txs, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	g := txs[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), g.Date)
	assert.Equal(t, "Groceries", g.Category)
	assert.Equal(t, "food, weekly", g.Tags)
	assert.True(t, g.ExpenseAmount.Equal(decimal.RequireFromString("1234.50")))
	assert.True(t, g.IsExpense())

	assert.True(t, txs[1].IsIncome())
	assert.False(t, txs[2].HasDate(), "unparsable date keeps the row without a date")
	assert.True(t, txs[2].InMainCurrency.Equal(decimal.RequireFromString("18.40")))
}

func TestReadCSVMalformedAmount(t *testing.T) {
	in := "Date,Category,Expense amount,Income amount\n03/01/24,Food,12x,0\n"
	_, err := ReadCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Date,Category\n03/01/24,Food\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestReadCSVFillsMainCurrency(t *testing.T) {
	in := "Date,Category,Expense amount,Income amount\n03/01/24,Food,12.30,\n"
	txs, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, core.DefaultCurrency, txs[0].MainCurrency)
	assert.True(t, txs[0].InMainCurrency.Equal(decimal.RequireFromString("12.30")))
}

func TestReadCSVBlankAmountsAreZero(t *testing.T) {
	in := "Date,Category,Expense amount,Income amount,In main currency\n03/05/24,Salary,,2500,2500\n"
	txs, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].ExpenseAmount.IsZero())
	assert.True(t, txs[0].IsIncome())
}

func TestWriteCSVReadsBack(t *testing.T) {
	txs, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))

	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(txs))
	assert.Equal(t, txs[1].Description, again[1].Description)
	assert.True(t, txs[0].ExpenseAmount.Equal(again[0].ExpenseAmount))
}
