package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"findash/internal/amqp"
	"findash/internal/log"
	"findash/internal/sources"
)

// ErrDataExists is returned when an import targets a store that already
// holds transactions.
var ErrDataExists = errors.New("database already contains transactions")

// ErrInvalidCSV is returned when an uploaded export cannot be parsed.
var ErrInvalidCSV = errors.New("invalid csv")

// Invalidator drops cached dataset snapshots.
type Invalidator interface {
	Invalidate()
}

// Publisher announces dataset changes to other instances.
type Publisher interface {
	PublishDatasetChanged(ctx context.Context, reason string, rows int) error
}

// ImportResult reports a completed import.
type ImportResult struct {
	Inserted   int
	TotalCount int
}

// AdminService runs the destructive dataset operations: it writes to the
// store first, then drops the local cache and notifies other instances.
type AdminService struct {
	store     sources.Writer
	cache     Invalidator
	publisher Publisher
	logger    *log.Logger
	batchSize int
}

// NewAdminService wires the writer; store may be nil for read-only backends
// and publisher may be nil when no broker is configured.
func NewAdminService(store sources.Writer, cache Invalidator, publisher Publisher, logger *log.Logger) *AdminService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AdminService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentStorage),
		batchSize: sources.DefaultBatchSize,
	}
}

// Writable reports whether the configured backend accepts writes.
func (s *AdminService) Writable() bool { return s.store != nil }

// Count returns the number of stored rows.
func (s *AdminService) Count(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, sources.ErrReadOnly
	}
	return s.store.Count(ctx)
}

// ImportCSV parses r and stores its rows. The store must be empty unless
// replace is set, in which case it is reset first.
func (s *AdminService) ImportCSV(ctx context.Context, r io.Reader, replace bool) (ImportResult, error) {
	if s.store == nil {
		return ImportResult{}, sources.ErrReadOnly
	}

	txs, err := sources.ReadCSV(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}

	if replace {
		if err := s.store.Reset(ctx); err != nil {
			return ImportResult{}, fmt.Errorf("reset before import: %w", err)
		}
	} else {
		existing, err := s.store.Count(ctx)
		if err != nil {
			return ImportResult{}, fmt.Errorf("count existing rows: %w", err)
		}
		if existing > 0 {
			return ImportResult{}, fmt.Errorf("%w: %d rows present", ErrDataExists, existing)
		}
	}

	inserted, err := s.store.Import(ctx, txs, s.batchSize)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import transactions: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("count imported rows: %w", err)
	}

	s.logger.InfoContext(ctx, "Imported transactions",
		log.FieldOperation, log.OpImport, log.FieldRows, inserted, "total", total)
	s.changed(ctx, amqp.ReasonImport, inserted)
	return ImportResult{Inserted: inserted, TotalCount: total}, nil
}

// Reset drops every stored row and recreates the schema.
func (s *AdminService) Reset(ctx context.Context) error {
	if s.store == nil {
		return sources.ErrReadOnly
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	s.changed(ctx, amqp.ReasonReset, 0)
	return nil
}

func (s *AdminService) changed(ctx context.Context, reason string, rows int) {
	if s.cache != nil {
		s.cache.Invalidate()
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No AMQP publisher, skipping dataset event")
		return
	}
	// The write already succeeded; a broker outage only delays other replicas
	// until their cache expires.
	if err := s.publisher.PublishDatasetChanged(ctx, reason, rows); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish dataset event",
			log.FieldOperation, log.OpPublish, log.Err(err))
	}
}

// Close closes the publisher when it can be closed.
func (s *AdminService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
