package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/termrel/pkg/termrel/relation"
	"github.com/cognicore/termrel/pkg/termrel/store"
)

func init() {
	store.Register("sqlite", OpenSQLite)
}

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS relations (
	name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS relation_pairs (
	relation TEXT NOT NULL,
	pair TEXT NOT NULL,
	e1_reps TEXT NOT NULL,
	e2_reps TEXT NOT NULL,
	PRIMARY KEY(relation, pair),
	FOREIGN KEY(relation) REFERENCES relations(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS relation_sentences (
	relation TEXT NOT NULL,
	pair TEXT NOT NULL,
	seq INTEGER NOT NULL,
	tokens TEXT NOT NULL,
	PRIMARY KEY(relation, pair, seq),
	FOREIGN KEY(relation, pair) REFERENCES relation_pairs(relation, pair) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS term_counts (
	corpus TEXT NOT NULL,
	term TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(corpus, term)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	name TEXT,
	sentences INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	terms INTEGER NOT NULL,
	started_at TEXT,
	finished_at TEXT
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRelations replaces the stored relation DB with db in one transaction.
func (s *sqliteStore) SaveRelations(ctx context.Context, db relation.DB) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"relation_sentences", "relation_pairs", "relations"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for rel, bucket := range db {
		if _, err := tx.ExecContext(ctx, `INSERT INTO relations (name) VALUES (?)`, rel); err != nil {
			return err
		}
		for pair, e := range bucket {
			e1, err := json.Marshal(e.E1Representations)
			if err != nil {
				return err
			}
			e2, err := json.Marshal(e.E2Representations)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO relation_pairs (relation, pair, e1_reps, e2_reps) VALUES (?, ?, ?, ?)`,
				rel, pair, string(e1), string(e2)); err != nil {
				return err
			}
			for seq, sentence := range e.Sentences {
				data, err := json.Marshal(sentence)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
INSERT INTO relation_sentences (relation, pair, seq, tokens) VALUES (?, ?, ?, ?)`,
					rel, pair, seq, string(data)); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

// LoadRelations reads the stored relation DB. An empty store yields a DB
// with only the no-relation bucket.
func (s *sqliteStore) LoadRelations(ctx context.Context) (relation.DB, error) {
	db := relation.NewDB()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM relations`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		if _, ok := db[name]; !ok {
			db[name] = map[string]*relation.Entry{}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT relation, pair, e1_reps, e2_reps FROM relation_pairs`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var rel, pair, e1, e2 string
		if err := rows.Scan(&rel, &pair, &e1, &e2); err != nil {
			rows.Close()
			return nil, err
		}
		e := db.GetOrInsert(rel, pair)
		if err := json.Unmarshal([]byte(e1), &e.E1Representations); err != nil {
			rows.Close()
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}
		if err := json.Unmarshal([]byte(e2), &e.E2Representations); err != nil {
			rows.Close()
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
SELECT relation, pair, tokens FROM relation_sentences ORDER BY relation, pair, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rel, pair, data string
		if err := rows.Scan(&rel, &pair, &data); err != nil {
			return nil, err
		}
		var sentence []string
		if err := json.Unmarshal([]byte(data), &sentence); err != nil {
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}
		e := db.GetOrInsert(rel, pair)
		e.Sentences = append(e.Sentences, sentence)
	}
	return db, rows.Err()
}

// AddTermCounts adds counts to the totals of corpus
func (s *sqliteStore) AddTermCounts(ctx context.Context, corpus string, counts map[string]int) error {
	if err := store.ValidateCorpus(corpus); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for term, n := range counts {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO term_counts (corpus, term, count) VALUES (?, ?, ?)
ON CONFLICT(corpus, term) DO UPDATE SET count=count+excluded.count;
`, corpus, term, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// TermCounts returns the totals of corpus
func (s *sqliteStore) TermCounts(ctx context.Context, corpus string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT term, count FROM term_counts WHERE corpus=?`, corpus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var term string
		var n int
		if err := rows.Scan(&term, &n); err != nil {
			return nil, err
		}
		out[term] = n
	}
	return out, rows.Err()
}

// RecordRun inserts or replaces a run record
func (s *sqliteStore) RecordRun(ctx context.Context, r store.Run) error {
	if err := store.ValidateRun(r); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, name, sentences, skipped, terms, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name,
	sentences=excluded.sentences,
	skipped=excluded.skipped,
	terms=excluded.terms,
	started_at=excluded.started_at,
	finished_at=excluded.finished_at;
`, r.ID, r.Name, r.Sentences, r.Skipped, r.Terms,
		r.Started.UTC().Format(time.RFC3339Nano), r.Finished.UTC().Format(time.RFC3339Nano))
	return err
}

// Runs returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *sqliteStore) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	query := `SELECT id, name, sentences, skipped, terms, started_at, finished_at FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		var r store.Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Name, &r.Sentences, &r.Skipped, &r.Terms, &started, &finished); err != nil {
			return nil, err
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, started)
		r.Finished, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}
