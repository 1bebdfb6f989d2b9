package google

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValues struct {
	values [][]interface{}
	err    error
	gotID  string
	gotRng string
}

func (f *fakeValues) Values(_ context.Context, id, rng string) ([][]interface{}, error) {
	f.gotID, f.gotRng = id, rng
	return f.values, f.err
}

func TestClientTransactions(t *testing.T) {
	fv := &fakeValues{values: [][]interface{}{
		{"Date", "Account", "Category", "Tags", "Expense amount", "Income amount", "Currency", "Main currency", "In main currency", "Description"},
		{"04/01/24", "Checking", "Rent", "home", "1,100.00", "", "EUR", "EUR", "1,100.00", "April rent"},
		{"04/25/24", "Checking", "Salary", "", "", 3200, "EUR", "EUR", 3200, nil},
		// short rows are common when trailing cells are empty
		{"04/26/24", "Cash", "Coffee", "", "3.5"},
	}}

	c := NewWithGetter(fv, "sheet-id", "Transactions!A:J")
	txs, err := c.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, "sheet-id", fv.gotID)
	assert.Equal(t, "Transactions!A:J", fv.gotRng)
	assert.True(t, txs[0].ExpenseAmount.Equal(decimal.NewFromInt(1100)))
	assert.True(t, txs[1].IncomeAmount.Equal(decimal.NewFromInt(3200)))
	assert.True(t, txs[2].InMainCurrency.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, "sheets", c.Name())
}

func TestClientTransactionsError(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := NewWithGetter(&fakeValues{err: boom}, "id", "A:J").Transactions(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestNewRequiresSpreadsheet(t *testing.T) {
	_, err := New(context.Background(), Options{}, nil)
	assert.Error(t, err)
}
