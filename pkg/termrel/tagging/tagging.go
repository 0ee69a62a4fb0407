// Package tagging coordinates term matching, BIOES tagging and optional term
// classification over one document.
package tagging

import (
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/bioes"
	"github.com/cognicore/termrel/pkg/termrel/classify"
	"github.com/cognicore/termrel/pkg/termrel/match"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

// Tagger orchestrates the matcher and, when configured, the classifier.
type Tagger struct {
	matcher    *match.Matcher
	classifier *classify.Classifier
}

// New creates a tagger. A nil classifier disables term-type annotation.
func New(matcher *match.Matcher, classifier *classify.Classifier) *Tagger {
	return &Tagger{matcher: matcher, classifier: classifier}
}

// Result is the outcome of tagging one document.
type Result struct {
	// Tokens is the plain token text, in document order.
	Tokens []string
	Tags   bioes.Sequence
	Found  *match.FoundTerms
	// Annotated is the original text with <entity>/<event> markers around
	// each found term. Empty when classification is disabled.
	Annotated string
}

// TagTerms finds every term of the vocabulary in doc.
func (t *Tagger) TagTerms(doc nlp.Doc, terms []nlp.Doc) (Result, error) {
	tags, found, err := t.matcher.Match(doc, terms)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Tokens: doc.Texts(),
		Tags:   tags,
		Found:  found,
	}
	if t.classifier == nil {
		return res, nil
	}

	for _, key := range found.Keys() {
		rec, _ := found.Get(key)
		rec.Types = rec.Types[:0]
		for _, sp := range rec.Spans {
			typ := t.classifier.Classify(doc[sp.Start:sp.End])
			rec.Types = append(rec.Types, string(typ))
		}
	}
	res.Annotated = Annotate(doc, found)
	return res, nil
}

// Annotate rebuilds the text of doc from token text and trailing whitespace,
// wrapping each typed span as <type>span text</type>. The whitespace after
// the last token of a span is written after the closing marker.
func Annotate(doc nlp.Doc, found *match.FoundTerms) string {
	type open struct {
		end int
		typ string
	}
	starts := make(map[int]open)
	for _, key := range found.Keys() {
		rec, _ := found.Get(key)
		for i, sp := range rec.Spans {
			if i >= len(rec.Types) {
				break
			}
			starts[sp.Start] = open{end: sp.End, typ: rec.Types[i]}
		}
	}

	var b strings.Builder
	closeAt, closeTyp := -1, ""
	for i, tok := range doc {
		if o, ok := starts[i]; ok {
			b.WriteString("<" + o.typ + ">")
			closeAt, closeTyp = o.end-1, o.typ
		}
		b.WriteString(tok.Text)
		if i == closeAt {
			b.WriteString("</" + closeTyp + ">")
			closeAt = -1
		}
		b.WriteString(tok.Whitespace)
	}
	return b.String()
}
