package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"findash/internal/log"
	"findash/internal/sources"
	"findash/internal/sources/csvfile"
	gsheet "findash/internal/sources/google"
	"findash/internal/sources/memory"
	"findash/internal/sources/s3csv"
	"findash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(ctx, config)
	case SQLiteBackend:
		repo, err := storage.OpenSQLite(ctx, config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{Reader: repo, Writer: repo, Cleanup: repo.Close}, nil
	case PostgresBackend:
		repo, err := storage.OpenPostgres(ctx, config.DatabaseURL, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
		}
		f.logger.Info("Initialized PostgreSQL backend")
		return &Result{Reader: repo, Writer: repo, Cleanup: repo.Close}, nil
	case SheetsBackend:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			Range:              config.GoogleSheetRange,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
			ServiceAccountFile: config.GoogleServiceAccountFile,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "range", config.GoogleSheetRange)
		return &Result{Reader: cli}, nil
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) csvReader(ctx context.Context, config Config) (sources.Reader, error) {
	if s3csv.IsS3URL(config.DataPath) {
		return s3csv.New(ctx, config.DataPath, s3csv.Options{
			Region:    config.AWSRegion,
			Endpoint:  config.S3Endpoint,
			AccessKey: config.S3AccessKey,
			SecretKey: config.S3SecretKey,
		})
	}
	return csvfile.New(config.DataPath), nil
}

func (f *DefaultFactory) createCSVBackend(ctx context.Context, config Config) (*Result, error) {
	reader, err := f.csvReader(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize CSV source: %w", err)
	}
	f.logger.Info("Initialized CSV backend", "data_path", config.DataPath, "source", reader.Name())
	return &Result{Reader: reader}, nil
}

// createMemoryBackend seeds the store from DATA_PATH when it holds a CSV.
func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*Result, error) {
	store := memory.New()
	if config.DataPath == "" {
		return &Result{Reader: store, Writer: store}, nil
	}

	reader, err := f.csvReader(ctx, config)
	if err != nil {
		return nil, err
	}
	txs, err := reader.Transactions(ctx)
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, csvfile.ErrNoCSV):
		f.logger.Info("Initialized empty memory backend", "data_path", config.DataPath)
	case err != nil:
		return nil, fmt.Errorf("seed memory backend: %w", err)
	default:
		if _, err := store.Import(ctx, txs, sources.DefaultBatchSize); err != nil {
			return nil, err
		}
		f.logger.Info("Initialized memory backend", "data_path", config.DataPath, log.FieldRows, len(txs))
	}
	return &Result{Reader: store, Writer: store}, nil
}
