package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
	"github.com/cognicore/commentprep/pkg/commentprep/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of r.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a copy of the stored run.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	s.mu.RLock()
	out := make([]store.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r.Summary())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RowErrors returns the run's row errors in row order.
func (s *Store) RowErrors(ctx context.Context, id string) ([]store.RowError, error) {
	r, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Errors, nil
}

// TopKeywords returns the first k keywords of the run's ranking.
func (s *Store) TopKeywords(ctx context.Context, id string, k int) ([]keywords.Keyword, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top keywords %d: %w", k, internalerr.ErrInvalidArgument)
	}
	r, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(r.Keywords) > k {
		return r.Keywords[:k], nil
	}
	return r.Keywords, nil
}

func copyRun(r store.Run) store.Run {
	r.Rows = append([]record.Record(nil), r.Rows...)
	r.Errors = append([]store.RowError(nil), r.Errors...)
	r.Keywords = append([]keywords.Keyword(nil), r.Keywords...)
	return r
}
