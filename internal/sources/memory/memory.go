// Package memory is an in-process transaction store used for demos and tests.
package memory

import (
	"context"
	"sync"

	"findash/internal/core"
	"findash/internal/sources"
)

type Store struct {
	mu     sync.RWMutex
	items  []core.Transaction
	nextID int64
}

var _ sources.Store = (*Store)(nil)

// New returns a store seeded with txs.
func New(txs ...core.Transaction) *Store {
	s := &Store{}
	s.append(txs)
	return s
}

func (s *Store) Name() string { return "memory" }

// Transactions returns a copy of the stored rows.
func (s *Store) Transactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// Import appends all rows; batching has no meaning in memory.
func (s *Store) Import(ctx context.Context, txs []core.Transaction, _ int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(txs)
	return len(txs), nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.nextID = 0
	return nil
}

func (s *Store) append(txs []core.Transaction) {
	for _, tx := range txs {
		s.nextID++
		tx.ID = s.nextID
		s.items = append(s.items, tx)
	}
}
