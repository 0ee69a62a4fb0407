// Package nlp holds the token model produced by the external linguistic
// preprocessing collaborator and consumed by the tagging core.
package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
)

// Token represents a word of a sentence, with POS and lemma.
type Token struct {
	// The unmodified word
	Text string `json:"text"`

	// The lemma of the word
	Lemma string `json:"lemma"`

	// Coarse universal POS (NOUN, VERB, ...)
	Pos string `json:"pos"`

	// A string containing detailed POS data (NN, NNS, VBZ, ...)
	Tag string `json:"tag"`

	// Trailing whitespace, used to rebuild the original text
	Whitespace string `json:"ws,omitempty"`
}

// Doc is an ordered token sequence: one sentence or a term phrase.
type Doc []Token

// Span is a half-open token interval [Start, End).
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of tokens covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one token.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Pipeline is the external preprocessing collaborator. The core never builds
// one; callers inject it where raw strings must be turned into Docs.
type Pipeline interface {
	Process(ctx context.Context, text string) (Doc, error)
}

// StopWords is a membership predicate over lemma strings.
type StopWords interface {
	IsStop(lemma string) bool
}

// NoStopWords treats nothing as a stop word.
type NoStopWords struct{}

func (NoStopWords) IsStop(string) bool { return false }

// Texts returns the surface text of each token.
func (d Doc) Texts() []string {
	out := make([]string, len(d))
	for i, t := range d {
		out[i] = t.Text
	}
	return out
}

// Lemmas returns the lemma of each token.
func (d Doc) Lemmas() []string {
	out := make([]string, len(d))
	for i, t := range d {
		out[i] = t.Lemma
	}
	return out
}

// Tags returns the fine-grained POS tag of each token.
func (d Doc) Tags() []string {
	out := make([]string, len(d))
	for i, t := range d {
		out[i] = t.Tag
	}
	return out
}

// Key is the canonical lemma-joined key of a term.
func (d Doc) Key() string {
	return strings.Join(d.Lemmas(), " ")
}

// Text joins the surface text of the tokens with single spaces.
func (d Doc) Text() string {
	return strings.Join(d.Texts(), " ")
}

// Validate checks that every token carries text and lemma.
func (d Doc) Validate() error {
	for i, t := range d {
		if t.Text == "" {
			return fmt.Errorf("token %d has no text: %w", i, internalerr.ErrPrecondition)
		}
		if t.Lemma == "" {
			return fmt.Errorf("token %d (%q) has no lemma: %w", i, t.Text, internalerr.ErrPrecondition)
		}
	}
	return nil
}
