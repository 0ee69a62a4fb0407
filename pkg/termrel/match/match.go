// Package match finds vocabulary terms in pre-tokenized documents.
//
// Terms are tried from longest to shortest, so a term that is part of a
// larger term phrase is ignored where the larger one matched ("cell wall"
// claims its tokens before "cell" is tried). Accepted spans never overlap.
package match

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/surgebase/porter2"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/termrel/pkg/termrel/bioes"
	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

// Options configures the matching policy.
type Options struct {
	// Heuristics enables the short-term skip, plural fallback and compound
	// splitting used by the term classification pipeline.
	Heuristics bool `yaml:"heuristics"`

	// MinTermChars: with Heuristics, terms whose lemma key has this many
	// characters or fewer are never matched (two-letter acronyms).
	MinTermChars int `yaml:"min_term_chars"`

	// HeuristicTokens are the joiners hyphenated compound lemmas are split on.
	HeuristicTokens []string `yaml:"heuristic_tokens"`

	// Stem adds a porter2 stem comparison as the last fallback.
	Stem bool `yaml:"stem"`

	// Lexicon, when set, adds the known variants of a term key as extra
	// lemma patterns. Multi-word variants are split on whitespace.
	Lexicon Variants `yaml:"-"`
}

// Variants lists the alternative forms of a term key, including the key.
type Variants interface {
	Variants(key string) []string
}

// DefaultOptions returns the literal matching policy.
func DefaultOptions() Options {
	return Options{
		MinTermChars:    2,
		HeuristicTokens: []string{"-"},
	}
}

type field int

const (
	lemmaField field = iota
	surfaceField
	stemField
)

// pattern is one way of recognizing a term: a token sequence compared
// against one view of the document.
type pattern struct {
	field field
	seq   []string
}

// Matcher matches documents against a term vocabulary.
type Matcher struct {
	stops nlp.StopWords
	opts  Options
}

// NewMatcher creates a matcher. A nil stops predicate means no stop words.
// Options are used as given, so callers start from DefaultOptions.
func NewMatcher(stops nlp.StopWords, opts Options) *Matcher {
	if stops == nil {
		stops = nlp.NoStopWords{}
	}
	return &Matcher{stops: stops, opts: opts}
}

// Options returns the effective options.
func (m *Matcher) Options() Options {
	return m.opts
}

// docView holds the document projections patterns are compared against.
type docView struct {
	lemmas  []string
	surface []string
	stems   []string
}

// Match tags every occurrence of terms in doc and returns the BIOES sequence
// with the index of found terms. The inputs are not retained or modified.
func (m *Matcher) Match(doc nlp.Doc, terms []nlp.Doc) (bioes.Sequence, *FoundTerms, error) {
	if err := doc.Validate(); err != nil {
		return nil, nil, fmt.Errorf("document: %w", err)
	}
	for i, term := range terms {
		if len(term) == 0 {
			return nil, nil, fmt.Errorf("term %d is empty: %w", i, internalerr.ErrPrecondition)
		}
		if err := term.Validate(); err != nil {
			return nil, nil, fmt.Errorf("term %d: %w", i, err)
		}
	}

	view := m.view(doc)
	tags := bioes.New(len(doc))
	found := NewFoundTerms()

	for _, term := range SortTerms(terms) {
		key := term.Key()
		if m.opts.Heuristics && utf8.RuneCountInString(key) <= m.opts.MinTermChars {
			continue
		}

		patterns := m.patterns(term, key)
		for ix := range doc {
			for _, p := range patterns {
				n := len(p.seq)
				if ix+n > len(doc) {
					continue
				}
				// sentence capitalization creates false positives on the first word
				if p.field == surfaceField && ix == 0 {
					continue
				}
				if !view.equal(p, ix) {
					continue
				}
				if !tags.Free(ix, n) {
					continue
				}

				window := doc[ix : ix+n]
				rec := found.GetOrInsert(key)
				rec.Text = append(rec.Text, window.Text())
				rec.Spans = append(rec.Spans, nlp.Span{Start: ix, End: ix + n})
				rec.Tags = append(rec.Tags, strings.Join(window.Tags(), " "))
				tags.Mark(ix, n)
				break
			}
		}
	}

	return tags, found, nil
}

// SortTerms orders terms longest first. Terms of equal length keep their
// vocabulary order.
func SortTerms(terms []nlp.Doc) []nlp.Doc {
	sorted := make([]nlp.Doc, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted
}

// patterns lists the ways term may be recognized, tried in order at each
// window. Longer heuristic forms come first so they win over the literal one.
func (m *Matcher) patterns(term nlp.Doc, key string) []pattern {
	lemmas := term.Lemmas()
	surface := normalizeAll(term.Texts())

	// stop words are matched on text to avoid over-generalizing common lemmas
	if m.stops.IsStop(key) {
		return []pattern{{field: surfaceField, seq: surface}}
	}

	var ps []pattern
	if m.opts.Heuristics {
		if split := m.splitCompound(lemmas); len(split) > len(lemmas) {
			ps = append(ps, pattern{field: lemmaField, seq: split})
		}
	}

	ps = append(ps,
		pattern{field: lemmaField, seq: lemmas},
		pattern{field: surfaceField, seq: surface},
	)
	ps = append(ps, m.lexiconPatterns(key)...)

	if m.opts.Heuristics {
		plural := make([]string, len(lemmas))
		copy(plural, lemmas)
		plural[len(plural)-1] += "s"
		ps = append(ps, pattern{field: lemmaField, seq: plural})
	}

	if m.opts.Stem {
		ps = append(ps, pattern{field: stemField, seq: stemAll(lemmas)})
	}

	return ps
}

// lexiconPatterns turns the lexicon variants of key into lemma patterns,
// longest first.
func (m *Matcher) lexiconPatterns(key string) []pattern {
	if m.opts.Lexicon == nil {
		return nil
	}
	var ps []pattern
	for _, v := range m.opts.Lexicon.Variants(key) {
		seq := strings.Fields(v)
		if len(seq) == 0 || strings.Join(seq, " ") == key {
			continue
		}
		ps = append(ps, pattern{field: lemmaField, seq: seq})
	}
	sort.SliceStable(ps, func(i, j int) bool { return len(ps[i].seq) > len(ps[j].seq) })
	return ps
}

// splitCompound fragments hyphenated lemmas ("x-ray") into parts
// interleaved with the joiner ("x", "-", "ray").
func (m *Matcher) splitCompound(lemmas []string) []string {
	out := make([]string, 0, len(lemmas))
	for _, lemma := range lemmas {
		out = append(out, m.splitLemma(lemma)...)
	}
	return out
}

func (m *Matcher) splitLemma(lemma string) []string {
	for _, joiner := range m.opts.HeuristicTokens {
		if joiner == "" || lemma == joiner || !strings.Contains(lemma, joiner) {
			continue
		}
		var parts []string
		for i, part := range strings.Split(lemma, joiner) {
			if i > 0 {
				parts = append(parts, joiner)
			}
			if part != "" {
				parts = append(parts, part)
			}
		}
		return parts
	}
	return []string{lemma}
}

func (m *Matcher) view(doc nlp.Doc) docView {
	v := docView{
		lemmas:  doc.Lemmas(),
		surface: normalizeAll(doc.Texts()),
	}
	if m.opts.Stem {
		v.stems = stemAll(v.lemmas)
	}
	return v
}

func (v docView) equal(p pattern, ix int) bool {
	var text []string
	switch p.field {
	case lemmaField:
		text = v.lemmas
	case surfaceField:
		text = v.surface
	case stemField:
		text = v.stems
	}
	for i, tok := range p.seq {
		if text[ix+i] != tok {
			return false
		}
	}
	return true
}

func normalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = norm.NFC.String(t)
	}
	return out
}

func stemAll(lemmas []string) []string {
	out := make([]string, len(lemmas))
	for i, l := range lemmas {
		out[i] = porter2.Stem(strings.ToLower(l))
	}
	return out
}
