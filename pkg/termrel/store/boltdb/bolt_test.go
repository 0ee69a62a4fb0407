package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cognicore/termrel/pkg/termrel/store"
	"github.com/cognicore/termrel/pkg/termrel/store/storetest"
)

func TestBoltStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(filepath.Join(t.TempDir(), "termrel.bolt"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return s
	})
}

func TestBoltReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "termrel.bolt")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveRelations(ctx, storetest.Relations()); err != nil {
		t.Fatalf("SaveRelations: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer s.Close()

	db, err := s.LoadRelations(ctx)
	if err != nil {
		t.Fatalf("LoadRelations: %v", err)
	}
	if len(db.Pairs("taxonomy")) != 1 {
		t.Errorf("Relations should survive reopen, got %v", db.Pairs("taxonomy"))
	}
}

func TestCountEncoding(t *testing.T) {
	if got := decodeCount(encodeCount(1 << 40)); got != 1<<40 {
		t.Errorf("Expected %d, got %d", uint64(1<<40), got)
	}
	if got := decodeCount(nil); got != 0 {
		t.Errorf("Missing count should decode to 0, got %d", got)
	}
}
