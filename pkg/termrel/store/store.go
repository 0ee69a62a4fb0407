package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/relation"
)

// Store persists relation databases, corpus term counts and run records.
type Store interface {
	Close() error

	// Relations
	SaveRelations(ctx context.Context, db relation.DB) error
	LoadRelations(ctx context.Context) (relation.DB, error)

	// Term counts, per corpus name
	AddTermCounts(ctx context.Context, corpus string, counts map[string]int) error
	TermCounts(ctx context.Context, corpus string) (map[string]int, error)

	// Runs
	RecordRun(ctx context.Context, r Run) error
	Runs(ctx context.Context, limit int) ([]Run, error)
}

// Run describes one corpus tagging job.
type Run struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sentences int       `json:"sentences"`
	Skipped   int       `json:"skipped"`
	Terms     int       `json:"terms"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
}

// Opener opens a store backend at path.
type Opener func(ctx context.Context, path string) (Store, error)

var (
	enginesMu sync.RWMutex
	engines   = map[string]Opener{}
)

// Register makes a backend available to Open under name.
func Register(name string, fn Opener) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[name] = fn
}

// Engines returns the registered backend names, sorted.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	out := make([]string, 0, len(engines))
	for name := range engines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open opens the named backend.
func Open(ctx context.Context, engine, path string) (Store, error) {
	enginesMu.RLock()
	fn, ok := engines[engine]
	enginesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported store engine %q: %w", engine, internalerr.ErrInvalidConfig)
	}
	return fn(ctx, path)
}

// ValidateRun checks the fields every backend keys on.
func ValidateRun(r Run) error {
	if r.ID == "" {
		return fmt.Errorf("run has no id: %w", internalerr.ErrInvalidInput)
	}
	return nil
}

// ValidateCorpus checks a corpus name used as a count namespace.
func ValidateCorpus(corpus string) error {
	if corpus == "" {
		return fmt.Errorf("empty corpus name: %w", internalerr.ErrInvalidInput)
	}
	return nil
}
