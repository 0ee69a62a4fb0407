// Package relation builds relation-labeled training sentences from pairs of
// terms found in the same sentence.
//
// The database maps a relation name to term-pair keys ("cell -> cell wall")
// and accumulates, per pair, the sentences with the two terms marked by
// <e1></e1> and <e2></e2>. Pairs with no known relation go to the
// "no-relation" bucket and serve as negative examples.
//
// A DB is not safe for concurrent mutation. Parallel workers should each fill
// a private DB and Merge them afterwards.
package relation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/match"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

// NoRelation is the reserved bucket for term pairs with no labeled relation.
const NoRelation = "no-relation"

// Entity boundary markers.
const (
	E1Open  = "<e1>"
	E1Close = "</e1>"
	E2Open  = "<e2>"
	E2Close = "</e2>"
)

// Entry aggregates the tagged sentences seen for one ordered term pair.
type Entry struct {
	Sentences         [][]string `yaml:"sentences" json:"sentences"`
	E1Representations []string   `yaml:"e1_representations" json:"e1_representations"`
	E2Representations []string   `yaml:"e2_representations" json:"e2_representations"`
}

// DB maps relation name -> pair key -> entry.
type DB map[string]map[string]*Entry

// NewDB creates a database with the no-relation bucket and the given
// relation buckets.
func NewDB(relations ...string) DB {
	db := DB{NoRelation: {}}
	for _, r := range relations {
		if _, ok := db[r]; !ok {
			db[r] = map[string]*Entry{}
		}
	}
	return db
}

// PairKey is the directional key of an ordered term pair.
func PairKey(first, second string) string {
	return first + " -> " + second
}

// SplitPairKey reverses PairKey.
func SplitPairKey(key string) (string, string, bool) {
	return strings.Cut(key, " -> ")
}

// GetOrInsert returns the entry for key under relation, creating the bucket
// and the entry when absent.
func (db DB) GetOrInsert(relation, key string) *Entry {
	bucket, ok := db[relation]
	if !ok {
		bucket = map[string]*Entry{}
		db[relation] = bucket
	}
	e, ok := bucket[key]
	if !ok {
		e = &Entry{}
		bucket[key] = e
	}
	return e
}

// Relations returns the relation names, sorted, excluding NoRelation.
func (db DB) Relations() []string {
	out := make([]string, 0, len(db))
	for r := range db {
		if r != NoRelation {
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out
}

// Pairs returns the pair keys of a relation, sorted.
func (db DB) Pairs(relation string) []string {
	bucket := db[relation]
	out := make([]string, 0, len(bucket))
	for k := range bucket {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Seed returns a DB with the same relations and labeled pairs as db but no
// sentences. A worker filling the seed classifies pairs like db would.
func (db DB) Seed() DB {
	out := NewDB()
	for rel, bucket := range db {
		if _, ok := out[rel]; !ok {
			out[rel] = map[string]*Entry{}
		}
		if rel == NoRelation {
			continue
		}
		for key := range bucket {
			out[rel][key] = &Entry{}
		}
	}
	return out
}

// add appends one tagged sentence and dedup-appends the representations.
func (e *Entry) add(sentence []string, e1, e2 string) {
	e.Sentences = append(e.Sentences, sentence)
	e.E1Representations = appendUnique(e.E1Representations, e1)
	e.E2Representations = appendUnique(e.E2Representations, e2)
}

// Add records the sentence tokens for the ordered pair (first, second),
// marking the closest occurrences of the two terms. The sentence goes to
// every bucket that already lists the pair, NoRelation included, or else
// to NoRelation.
// tokens is not modified.
func (db DB) Add(first, second string, found *match.FoundTerms, tokens []string) error {
	r1, ok := found.Get(first)
	if !ok {
		return fmt.Errorf("term %q not found: %w", first, internalerr.ErrNotFound)
	}
	r2, ok := found.Get(second)
	if !ok {
		return fmt.Errorf("term %q not found: %w", second, internalerr.ErrNotFound)
	}

	s1, s2, err := ClosestMatch(r1.Spans, r2.Spans)
	if err != nil {
		return fmt.Errorf("pair %s: %w", PairKey(first, second), err)
	}
	if s1.End > len(tokens) || s2.End > len(tokens) {
		return fmt.Errorf("spans %v %v outside %d tokens: %w", s1, s2, len(tokens), internalerr.ErrPrecondition)
	}

	e1Text := strings.Join(tokens[s1.Start:s1.End], " ")
	e2Text := strings.Join(tokens[s2.Start:s2.End], " ")
	tagged := InsertTags(tokens, s1, s2)
	key := PairKey(first, second)

	known := false
	for _, rel := range append(db.Relations(), NoRelation) {
		entry, ok := db[rel][key]
		if !ok {
			continue
		}
		known = true
		entry.add(copyTokens(tagged), e1Text, e2Text)
	}
	if !known {
		db.GetOrInsert(NoRelation, key).add(tagged, e1Text, e2Text)
	}
	return nil
}

// ClosestMatch picks one span from each list minimizing the distance between
// their start indices. Ties keep the first pair in a × b order.
//
//	ClosestMatch([(12,15) (5,6)], [(8,10)]) -> (5,6), (8,10)
func ClosestMatch(a, b []nlp.Span) (nlp.Span, nlp.Span, error) {
	if len(a) == 0 || len(b) == 0 {
		return nlp.Span{}, nlp.Span{}, fmt.Errorf("closest match of empty span list: %w", internalerr.ErrPrecondition)
	}
	if len(a) == 1 && len(b) == 1 {
		return a[0], b[0], nil
	}

	best1, best2 := a[0], b[0]
	minDist := abs(best1.Start - best2.Start)
	for _, s1 := range a {
		for _, s2 := range b {
			if d := abs(s1.Start - s2.Start); d < minDist {
				best1, best2, minDist = s1, s2, d
			}
		}
	}
	return best1, best2, nil
}

// InsertTags returns a copy of tokens with <e1></e1> around e1 and
// <e2></e2> around e2. Markers are inserted left to right by position, with
// an offset counter keeping later positions valid after each insertion.
func InsertTags(tokens []string, e1, e2 nlp.Span) []string {
	type insertion struct {
		at  int
		tag string
	}
	ins := []insertion{
		{e1.Start, E1Open},
		{e1.End, E1Close},
		{e2.Start, E2Open},
		{e2.End, E2Close},
	}
	// at a shared boundary the closing marker of the earlier term goes first
	sort.SliceStable(ins, func(i, j int) bool {
		if ins[i].at != ins[j].at {
			return ins[i].at < ins[j].at
		}
		return isClose(ins[i].tag) && !isClose(ins[j].tag)
	})

	out := make([]string, 0, len(tokens)+len(ins))
	out = append(out, tokens...)
	offset := 0
	for _, in := range ins {
		pos := in.at + offset
		out = append(out, "")
		copy(out[pos+1:], out[pos:])
		out[pos] = in.tag
		offset++
	}
	return out
}

// Merge folds src into dst: buckets are unioned, sentence lists
// concatenated and representation lists deduplicated.
func Merge(dst, src DB) {
	for rel, bucket := range src {
		if _, ok := dst[rel]; !ok {
			dst[rel] = map[string]*Entry{}
		}
		for key, e := range bucket {
			d := dst.GetOrInsert(rel, key)
			for _, s := range e.Sentences {
				d.Sentences = append(d.Sentences, copyTokens(s))
			}
			for _, r := range e.E1Representations {
				d.E1Representations = appendUnique(d.E1Representations, r)
			}
			for _, r := range e.E2Representations {
				d.E2Representations = appendUnique(d.E2Representations, r)
			}
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func copyTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out
}

func isClose(tag string) bool {
	return strings.HasPrefix(tag, "</")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
