package match

import "github.com/cognicore/termrel/pkg/termrel/nlp"

// Record aggregates every accepted occurrence of one term in a document.
// The slices are parallel: one entry per occurrence.
type Record struct {
	Text  []string   `json:"text" yaml:"text"`
	Spans []nlp.Span `json:"indices" yaml:"indices"`
	Tags  []string   `json:"tag" yaml:"tag"`
	// Types is filled only when term classification is enabled.
	Types []string `json:"type,omitempty" yaml:"type,omitempty"`
}

// FoundTerms maps a term's lemma key to its Record, preserving the order in
// which keys were first inserted.
type FoundTerms struct {
	keys    []string
	records map[string]*Record
}

// NewFoundTerms creates an empty index.
func NewFoundTerms() *FoundTerms {
	return &FoundTerms{records: make(map[string]*Record)}
}

// GetOrInsert returns the record for key, creating an empty one when absent.
func (f *FoundTerms) GetOrInsert(key string) *Record {
	if r, ok := f.records[key]; ok {
		return r
	}
	r := &Record{}
	f.records[key] = r
	f.keys = append(f.keys, key)
	return r
}

// Get returns the record for key.
func (f *FoundTerms) Get(key string) (*Record, bool) {
	r, ok := f.records[key]
	return r, ok
}

// Keys returns the term keys in insertion order.
func (f *FoundTerms) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of distinct terms found.
func (f *FoundTerms) Len() int {
	return len(f.keys)
}

// Counts returns the number of occurrences per term key.
func (f *FoundTerms) Counts() map[string]int {
	out := make(map[string]int, len(f.keys))
	for _, k := range f.keys {
		out[k] = len(f.records[k].Spans)
	}
	return out
}
