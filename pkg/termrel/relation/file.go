package relation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a relation database from a YAML file. A missing file yields an
// empty database. The no-relation bucket is always present.
func Load(path string) (DB, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewDB(), nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a YAML relation database.
func Decode(data []byte) (DB, error) {
	db := DB{}
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("decode relations: %w", err)
	}
	if db == nil {
		db = DB{}
	}
	for rel, bucket := range db {
		if bucket == nil {
			db[rel] = map[string]*Entry{}
		}
		for key, e := range db[rel] {
			if e == nil {
				db[rel][key] = &Entry{}
			}
		}
	}
	if _, ok := db[NoRelation]; !ok {
		db[NoRelation] = map[string]*Entry{}
	}
	return db, nil
}

// Save writes db as YAML.
func Save(path string, db DB) error {
	data, err := yaml.Marshal(db)
	if err != nil {
		return fmt.Errorf("encode relations: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
