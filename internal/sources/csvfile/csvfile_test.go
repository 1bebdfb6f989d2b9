package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Date,Account,Category,Tags,Expense amount,Income amount,Currency,Main currency,In main currency,Description\n"

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestSourceReadsFirstCSVInDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.csv", header+"01/02/24,Cash,Later,,1,0,EUR,EUR,1,\n")
	write(t, dir, "a.csv", header+"01/01/24,Cash,First,,5,0,EUR,EUR,5,\n")
	write(t, dir, "notes.txt", "ignored")

	txs, err := New(dir).Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "First", txs[0].Category)
}

func TestSourceReadsFile(t *testing.T) {
	p := write(t, t.TempDir(), "export.csv", header+"01/01/24,Cash,Food,,5,0,EUR,EUR,5,\n")
	txs, err := New(p).Transactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestSourceEmptyDirectory(t *testing.T) {
	_, err := New(t.TempDir()).Transactions(context.Background())
	assert.ErrorIs(t, err, ErrNoCSV)
}

func TestSourceMissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing")).Transactions(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
