// Package csvfile reads the finance export from the local filesystem.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"findash/internal/core"
	"findash/internal/sources"
)

// ErrNoCSV is returned when a directory holds no .csv file.
var ErrNoCSV = errors.New("no CSV file found")

// Source reads a CSV file, or the first *.csv by name in a directory.
type Source struct {
	path string
}

var _ sources.Reader = (*Source)(nil)

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Name() string { return "csv" }

// Transactions reads and parses the file on every call.
func (s *Source) Transactions(ctx context.Context) ([]core.Transaction, error) {
	file, err := Resolve(s.path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	txs, err := sources.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
	}
	return txs, nil
}

// Resolve returns path itself for a file, or the first CSV in a directory.
func Resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("data path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("read data dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoCSV, path)
	}
	sort.Strings(names)
	return filepath.Join(path, names[0]), nil
}
