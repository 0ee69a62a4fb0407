package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/termrel/pkg/termrel/relation"
	"github.com/cognicore/termrel/pkg/termrel/store"
)

func init() {
	store.Register("memory", func(ctx context.Context, path string) (store.Store, error) {
		return New(), nil
	})
}

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu        sync.RWMutex
	relations relation.DB
	counts    map[string]map[string]int
	runs      map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		relations: relation.NewDB(),
		counts:    make(map[string]map[string]int),
		runs:      make(map[string]store.Run),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRelations replaces the stored relation DB with a copy of db.
func (s *Store) SaveRelations(ctx context.Context, db relation.DB) error {
	cp := relation.NewDB()
	relation.Merge(cp, db)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations = cp
	return nil
}

// LoadRelations returns a copy of the stored relation DB.
func (s *Store) LoadRelations(ctx context.Context) (relation.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := relation.NewDB()
	relation.Merge(cp, s.relations)
	return cp, nil
}

// AddTermCounts adds counts to the totals of corpus.
func (s *Store) AddTermCounts(ctx context.Context, corpus string, counts map[string]int) error {
	if err := store.ValidateCorpus(corpus); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	totals, ok := s.counts[corpus]
	if !ok {
		totals = make(map[string]int)
		s.counts[corpus] = totals
	}
	for term, n := range counts {
		totals[term] += n
	}
	return nil
}

// TermCounts returns the totals of corpus. Unknown corpora have no counts.
func (s *Store) TermCounts(ctx context.Context, corpus string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.counts[corpus]))
	for term, n := range s.counts[corpus] {
		out[term] = n
	}
	return out, nil
}

// RecordRun inserts or replaces a run, keyed by ID.
func (s *Store) RecordRun(ctx context.Context, r store.Run) error {
	if err := store.ValidateRun(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

// Runs returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
