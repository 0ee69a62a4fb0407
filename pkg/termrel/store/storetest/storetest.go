// Package storetest checks a store.Store backend against the behavior every
// backend shares.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/relation"
	"github.com/cognicore/termrel/pkg/termrel/store"
)

// Relations is a small DB with a labeled pair, an empty relation and a
// negative example.
func Relations() relation.DB {
	db := relation.NewDB("taxonomy", "part-of")
	e := db.GetOrInsert("taxonomy", relation.PairKey("cell wall", "cell"))
	e.Sentences = [][]string{
		{"a", "<e1>", "cell", "wall", "</e1>", "of", "the", "<e2>", "cell", "</e2>"},
		{"<e2>", "cell", "</e2>", "and", "<e1>", "cell", "walls", "</e1>"},
	}
	e.E1Representations = []string{"cell wall", "cell walls"}
	e.E2Representations = []string{"cell"}

	n := db.GetOrInsert(relation.NoRelation, relation.PairKey("biologist", "cell"))
	n.Sentences = [][]string{{"a", "<e1>", "biologist", "</e1>", "sees", "a", "<e2>", "cell", "</e2>"}}
	n.E1Representations = []string{"biologist"}
	n.E2Representations = []string{"cell"}

	db.GetOrInsert("part-of", relation.PairKey("nucleus", "cell"))
	return db
}

// Run exercises every operation of the backend returned by open. Each
// subtest gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("relations round trip", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		want := Relations()
		if err := s.SaveRelations(ctx, want); err != nil {
			t.Fatalf("SaveRelations: %v", err)
		}
		got, err := s.LoadRelations(ctx)
		if err != nil {
			t.Fatalf("LoadRelations: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Round trip mismatch:\n got %#v\nwant %#v", got, want)
		}
	})

	t.Run("relations save replaces", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		if err := s.SaveRelations(ctx, Relations()); err != nil {
			t.Fatalf("SaveRelations: %v", err)
		}
		if err := s.SaveRelations(ctx, relation.NewDB("causes")); err != nil {
			t.Fatalf("SaveRelations: %v", err)
		}
		got, err := s.LoadRelations(ctx)
		if err != nil {
			t.Fatalf("LoadRelations: %v", err)
		}
		if !reflect.DeepEqual(got, relation.NewDB("causes")) {
			t.Errorf("Second save should replace the first, got %#v", got)
		}
	})

	t.Run("relations empty store", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		got, err := s.LoadRelations(context.Background())
		if err != nil {
			t.Fatalf("LoadRelations: %v", err)
		}
		if !reflect.DeepEqual(got, relation.NewDB()) {
			t.Errorf("Empty store should load only the no-relation bucket, got %#v", got)
		}
	})

	t.Run("term counts accumulate", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		if err := s.AddTermCounts(ctx, "biology", map[string]int{"cell": 2, "cell wall": 1}); err != nil {
			t.Fatalf("AddTermCounts: %v", err)
		}
		if err := s.AddTermCounts(ctx, "biology", map[string]int{"cell": 3, "nucleus": 1}); err != nil {
			t.Fatalf("AddTermCounts: %v", err)
		}
		if err := s.AddTermCounts(ctx, "physics", map[string]int{"gas": 4}); err != nil {
			t.Fatalf("AddTermCounts: %v", err)
		}

		got, err := s.TermCounts(ctx, "biology")
		if err != nil {
			t.Fatalf("TermCounts: %v", err)
		}
		want := map[string]int{"cell": 5, "cell wall": 1, "nucleus": 1}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}

		got, err = s.TermCounts(ctx, "chemistry")
		if err != nil {
			t.Fatalf("TermCounts: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Unknown corpus should have no counts, got %v", got)
		}

		if err := s.AddTermCounts(ctx, "", map[string]int{"x": 1}); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("Empty corpus should be ErrInvalidInput, got %v", err)
		}
	})

	t.Run("runs newest first", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		ctx := context.Background()

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		runs := []store.Run{
			{ID: "01HZ0000000000000000000001", Name: "biology", Sentences: 10, Skipped: 1, Terms: 4, Started: base, Finished: base.Add(time.Minute)},
			{ID: "01HZ0000000000000000000002", Name: "physics", Sentences: 3, Terms: 2, Started: base.Add(time.Hour), Finished: base.Add(time.Hour + time.Second)},
			{ID: "01HZ0000000000000000000003", Name: "chemistry", Sentences: 7, Terms: 5, Started: base.Add(2 * time.Hour), Finished: base.Add(3 * time.Hour)},
		}
		for _, r := range runs {
			if err := s.RecordRun(ctx, r); err != nil {
				t.Fatalf("RecordRun: %v", err)
			}
		}

		got, err := s.Runs(ctx, 2)
		if err != nil {
			t.Fatalf("Runs: %v", err)
		}
		want := []store.Run{runs[2], runs[1]}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}

		all, err := s.Runs(ctx, 0)
		if err != nil {
			t.Fatalf("Runs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Expected 3 runs, got %d", len(all))
		}

		if err := s.RecordRun(ctx, store.Run{}); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("Run without ID should be ErrInvalidInput, got %v", err)
		}
	})
}
