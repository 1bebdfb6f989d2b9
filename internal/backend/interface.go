package backend

import (
	"context"

	"findash/internal/sources"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result is the selected data source. Writer is nil for read-only sources.
type Result struct {
	Reader  sources.Reader
	Writer  sources.Writer
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// csv and memory seed: local path, directory or s3://bucket/key
	DataPath    string
	AWSRegion   string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	SQLiteDBPath string
	DatabaseURL  string

	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend      BackendType = "csv"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, PostgresBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
