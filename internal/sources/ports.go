// Package sources defines where transactions come from and the record
// layout shared by the CSV, S3 and Google Sheets readers.
package sources

import (
	"context"
	"errors"

	"findash/internal/core"
)

// ErrReadOnly is returned when an import or reset targets a source that
// cannot be written.
var ErrReadOnly = errors.New("data source is read-only")

// Ports for data backends.
type (
	// Reader returns the full transaction set.
	Reader interface {
		Transactions(ctx context.Context) ([]core.Transaction, error)
		// Name identifies the backend in health output and metrics.
		Name() string
	}

	// Writer is implemented by backends that accept imports.
	Writer interface {
		// Count returns the number of stored transactions.
		Count(ctx context.Context) (int, error)
		// Import appends transactions in batches and returns how many were stored.
		Import(ctx context.Context, txs []core.Transaction, batchSize int) (int, error)
		// Reset drops and recreates the stored data.
		Reset(ctx context.Context) error
	}

	// Store is a backend that can be both read and written.
	Store interface {
		Reader
		Writer
	}
)

// DefaultBatchSize is the number of rows written per transaction on import.
const DefaultBatchSize = 1000
