// Package dataset loads the transaction dataset once per cache period and
// answers the dashboard queries over it, projecting rows for guests.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"findash/internal/cache"
	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/metrics"
	"findash/internal/sources"
)

// ErrNoData is returned when the configured source holds no rows.
var ErrNoData = errors.New("no financial data available")

const snapshotKey = "transactions"

// DefaultTTL is how long a loaded snapshot is served before reloading.
const DefaultTTL = time.Minute

// Service caches the dataset of a single source.
type Service struct {
	reader  sources.Reader
	cache   *cache.LRUCache[[]core.Transaction]
	group   singleflight.Group
	logger  *log.Logger
	metrics *metrics.Metrics
}

type Options struct {
	TTL     time.Duration
	Logger  *log.Logger
	Metrics *metrics.Metrics
}

func NewService(reader sources.Reader, opts Options) *Service {
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Service{
		reader:  reader,
		cache:   cache.NewLRUCache[[]core.Transaction](1, opts.TTL),
		logger:  opts.Logger.WithComponent(log.ComponentDataset),
		metrics: opts.Metrics,
	}
}

// Cache exposes the snapshot cache so a cache.Manager can sweep it.
func (s *Service) Cache() cache.Cleaner { return s.cache }

// Source names the backing reader.
func (s *Service) Source() string { return s.reader.Name() }

// Load returns the dataset sorted newest first; rows without a date come
// last. Concurrent callers share one read, which is not cancelled when the
// caller that started it goes away. The slice is shared: callers must not
// modify it.
func (s *Service) Load(ctx context.Context) ([]core.Transaction, error) {
	if txs, ok := s.cache.Get(snapshotKey); ok {
		return txs, nil
	}

	v, err, _ := s.group.Do(snapshotKey, func() (any, error) {
		if txs, ok := s.cache.Get(snapshotKey); ok {
			return txs, nil
		}
		ctx := context.WithoutCancel(ctx)
		start := time.Now()
		txs, err := s.reader.Transactions(ctx)
		if err == nil && len(txs) == 0 {
			err = fmt.Errorf("%w in %s source", ErrNoData, s.reader.Name())
		}
		s.metrics.ObserveDatasetLoad(s.reader.Name(), err)
		if err != nil {
			s.logger.WarnContext(ctx, "Dataset load failed",
				log.FieldBackend, s.reader.Name(), log.Err(err))
			return nil, err
		}
		sortNewestFirst(txs)
		s.cache.Set(snapshotKey, txs)
		s.logger.InfoContext(ctx, "Dataset loaded",
			log.FieldBackend, s.reader.Name(),
			log.FieldRows, len(txs),
			log.FieldDuration, time.Since(start).Milliseconds())
		return txs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Transaction), nil
}

// Invalidate drops the cached snapshot; the next Load reads the source.
func (s *Service) Invalidate() {
	s.cache.Purge()
	s.logger.Debug("Dataset cache invalidated")
}

func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		return a.Date.After(b.Date)
	})
}
