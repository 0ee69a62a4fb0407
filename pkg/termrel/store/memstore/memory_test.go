package memstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/store"
	"github.com/cognicore/termrel/pkg/termrel/store/storetest"
)

func TestMemStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}

func TestLoadRelationsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.SaveRelations(ctx, storetest.Relations()); err != nil {
		t.Fatalf("SaveRelations: %v", err)
	}
	db, _ := s.LoadRelations(ctx)
	db.GetOrInsert("taxonomy", "x -> y")

	again, _ := s.LoadRelations(ctx)
	if !reflect.DeepEqual(again, storetest.Relations()) {
		t.Error("Mutating a loaded DB should not change the store")
	}
}

func TestOpenUnknownEngine(t *testing.T) {
	if _, err := store.Open(context.Background(), "nope", ""); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Unknown engine should be ErrInvalidConfig, got %v", err)
	}
	if _, err := store.Open(context.Background(), "memory", ""); err != nil {
		t.Errorf("memory engine should be registered: %v", err)
	}
}
