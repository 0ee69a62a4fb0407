// Package boltdb is a single-file key/value store backend built on bolt.
//
// Layout: the "relations" bucket holds one nested bucket per relation, keyed
// by pair key with a JSON entry as value; "counts" holds one nested bucket
// per corpus with big-endian uint64 counts; "runs" maps run ID to JSON.
package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"

	"github.com/cognicore/termrel/pkg/termrel/relation"
	"github.com/cognicore/termrel/pkg/termrel/store"
)

func init() {
	store.Register("bolt", func(ctx context.Context, path string) (store.Store, error) {
		return Open(path)
	})
}

var (
	relationsBucket = []byte("relations")
	countsBucket    = []byte("counts")
	runsBucket      = []byte("runs")
)

// Store implements store.Store on a bolt file.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the bolt file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{relationsBucket, countsBucket, runsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRelations replaces the stored relation DB with db.
func (s *Store) SaveRelations(ctx context.Context, db relation.DB) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(relationsBucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		root, err := tx.CreateBucket(relationsBucket)
		if err != nil {
			return err
		}
		for rel, bucket := range db {
			b, err := root.CreateBucketIfNotExists([]byte(rel))
			if err != nil {
				return err
			}
			for pair, e := range bucket {
				data, err := json.Marshal(e)
				if err != nil {
					return err
				}
				if err := b.Put([]byte(pair), data); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadRelations reads the stored relation DB.
func (s *Store) LoadRelations(ctx context.Context) (relation.DB, error) {
	db := relation.NewDB()
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(relationsBucket)
		return root.ForEach(func(name, _ []byte) error {
			rel := string(name)
			if _, ok := db[rel]; !ok {
				db[rel] = map[string]*relation.Entry{}
			}
			b := root.Bucket(name)
			if b == nil {
				return nil
			}
			return b.ForEach(func(k, v []byte) error {
				e := &relation.Entry{}
				if err := json.Unmarshal(v, e); err != nil {
					return err
				}
				db[rel][string(k)] = e
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// AddTermCounts adds counts to the totals of corpus.
func (s *Store) AddTermCounts(ctx context.Context, corpus string, counts map[string]int) error {
	if err := store.ValidateCorpus(corpus); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(countsBucket).CreateBucketIfNotExists([]byte(corpus))
		if err != nil {
			return err
		}
		for term, n := range counts {
			total := decodeCount(b.Get([]byte(term))) + uint64(n)
			if err := b.Put([]byte(term), encodeCount(total)); err != nil {
				return err
			}
		}
		return nil
	})
}

// TermCounts returns the totals of corpus.
func (s *Store) TermCounts(ctx context.Context, corpus string) (map[string]int, error) {
	out := make(map[string]int)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(countsBucket).Bucket([]byte(corpus))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = int(decodeCount(v))
			return nil
		})
	})
	return out, err
}

// RecordRun inserts or replaces a run, keyed by ID.
func (s *Store) RecordRun(ctx context.Context, r store.Run) error {
	if err := store.ValidateRun(r); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put([]byte(r.ID), data)
	})
}

// Runs returns up to limit runs, newest first. Run IDs are ULIDs, so key
// order is creation order. A limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	var out []store.Run
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r store.Run
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func encodeCount(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func decodeCount(v []byte) uint64 {
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}
