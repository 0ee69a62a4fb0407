// Package lexicon maps canonical term forms to their known variants:
// irregular plurals (mitochondrion / mitochondria), spelling variants
// (haemoglobin / hemoglobin) and acronyms (dna / deoxyribonucleic acid).
//
// Lookups are bidirectional and case-insensitive. Multi-word variants are
// stored as space-joined lemma strings.
package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
)

// Lexicon stores canonical -> variant groups and the reverse index.
type Lexicon struct {
	// canonical -> all variants, canonical first
	groups map[string][]string

	// variant -> canonical
	reverse map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:  make(map[string][]string),
		reverse: make(map[string]string),
	}
}

// LoadFromYAML loads variant groups from a YAML file.
//
// Expected format:
//
//	variants:
//	  - canonical: mitochondrion
//	    variants: [mitochondria]
//	  - canonical: dna
//	    variants: [deoxyribonucleic acid]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Variants []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"variants"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}

	lex := New()
	for i, entry := range config.Variants {
		if normalize(entry.Canonical) == "" {
			return nil, fmt.Errorf("%s: group %d has no canonical form: %w", path, i, internalerr.ErrInvalidConfig)
		}
		lex.AddGroup(entry.Canonical, entry.Variants)
	}
	return lex, nil
}

// AddGroup adds a variant group. The canonical form is always the first
// entry. Re-adding a canonical replaces its previous group.
func (l *Lexicon) AddGroup(canonical string, variants []string) {
	canonical = normalize(canonical)

	if old, ok := l.groups[canonical]; ok {
		for _, v := range old {
			delete(l.reverse, v)
		}
	}

	group := []string{canonical}
	seen := map[string]bool{canonical: true}
	for _, v := range variants {
		v = normalize(v)
		if v == "" || seen[v] {
			continue
		}
		group = append(group, v)
		seen[v] = true
	}

	l.groups[canonical] = group
	for _, v := range group {
		l.reverse[v] = canonical
	}
}

// Normalize returns the canonical form of a term, or the term itself when
// it is unknown.
func (l *Lexicon) Normalize(term string) string {
	term = normalize(term)
	if canonical, ok := l.reverse[term]; ok {
		return canonical
	}
	return term
}

// Variants returns every form of the group term belongs to, canonical
// first. An unknown term is its only variant.
func (l *Lexicon) Variants(term string) []string {
	term = normalize(term)
	canonical, ok := l.reverse[term]
	if !ok {
		return []string{term}
	}
	out := make([]string, len(l.groups[canonical]))
	copy(out, l.groups[canonical])
	return out
}

// Canonicals returns the canonical forms, sorted.
func (l *Lexicon) Canonicals() []string {
	out := make([]string, 0, len(l.groups))
	for c := range l.groups {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of groups.
func (l *Lexicon) Len() int {
	return len(l.groups)
}

// normalize lowercases and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
