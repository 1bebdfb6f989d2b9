package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/core"
)

func openTestSQLite(t *testing.T) *Repository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "findash.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleTransactions(n int) []core.Transaction {
	out := make([]core.Transaction, 0, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out = append(out, core.Transaction{
			Date:           start.AddDate(0, 0, i),
			Account:        "Checking",
			Category:       "Groceries",
			Tags:           "food",
			ExpenseAmount:  decimal.NewFromFloat(12.5),
			Currency:       "EUR",
			MainCurrency:   "EUR",
			InMainCurrency: decimal.NewFromFloat(12.5),
			Description:    "market",
		})
	}
	return out
}

func TestSQLiteImportAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	txs := sampleTransactions(5)
	txs = append(txs, core.Transaction{
		Category:       "Salary",
		IncomeAmount:   decimal.RequireFromString("2500.00"),
		InMainCurrency: decimal.RequireFromString("2500.00"),
		Currency:       "EUR",
		MainCurrency:   "EUR",
	})

	n, err := repo.Import(ctx, txs, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	got, err := repo.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.True(t, got[0].ExpenseAmount.Equal(decimal.RequireFromString("12.50")))
	assert.False(t, got[5].HasDate(), "rows without date sort last")
	assert.True(t, got[5].IncomeAmount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "sqlite", repo.Name())
}

func TestSQLiteReset(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	_, err := repo.Import(ctx, sampleTransactions(3), 1000)
	require.NoError(t, err)
	require.NoError(t, repo.Reset(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// schema is usable again
	_, err = repo.Import(ctx, sampleTransactions(1), 1000)
	require.NoError(t, err)
}

func TestRebind(t *testing.T) {
	pg := &Repository{dialect: DialectPostgres}
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.rebind("VALUES (?, ?, ?)"))

	lite := &Repository{dialect: DialectSQLite}
	assert.Equal(t, "VALUES (?, ?)", lite.rebind("VALUES (?, ?)"))
	assert.Equal(t, 10, strings.Count(pg.rebind(insertQuery), "$"))
}
