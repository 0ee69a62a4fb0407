package relation

import (
	"fmt"

	"github.com/cognicore/termrel/pkg/termrel/nlp"
	"github.com/cognicore/termrel/pkg/termrel/tagging"
)

// Extractor tags a document and records every ordered pair of found terms.
type Extractor struct {
	tagger *tagging.Tagger
}

// NewExtractor creates an extractor over the given tagger.
func NewExtractor(tagger *tagging.Tagger) *Extractor {
	return &Extractor{tagger: tagger}
}

// TagRelations finds the terms of doc and adds both directions of every pair
// of distinct found terms to db. It returns the tagging result so callers
// can reuse it for corpus statistics.
func (x *Extractor) TagRelations(db DB, doc nlp.Doc, terms []nlp.Doc) (tagging.Result, error) {
	res, err := x.tagger.TagTerms(doc, terms)
	if err != nil {
		return tagging.Result{}, err
	}

	keys := res.Found.Keys()
	for i := 0; i < len(keys)-1; i++ {
		for j := i + 1; j < len(keys); j++ {
			if err := db.Add(keys[i], keys[j], res.Found, res.Tokens); err != nil {
				return res, fmt.Errorf("add relation: %w", err)
			}
			if err := db.Add(keys[j], keys[i], res.Found, res.Tokens); err != nil {
				return res, fmt.Errorf("add relation: %w", err)
			}
		}
	}
	return res, nil
}
