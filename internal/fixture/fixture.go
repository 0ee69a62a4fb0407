// Package fixture builds small preprocessed sentences and term lists for
// tests, standing in for the external NLP pipeline.
package fixture

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

// Tok builds a token followed by a single space.
func Tok(text, lemma, pos, tag string) nlp.Token {
	return nlp.Token{Text: text, Lemma: lemma, Pos: pos, Tag: tag, Whitespace: " "}
}

// Last builds a token with no trailing whitespace.
func Last(text, lemma, pos, tag string) nlp.Token {
	return nlp.Token{Text: text, Lemma: lemma, Pos: pos, Tag: tag}
}

// Glue drops the trailing whitespace of the token at i.
func Glue(doc nlp.Doc, i int) nlp.Doc {
	doc[i].Whitespace = ""
	return doc
}

// Noun builds a single-token noun term.
func Noun(text string) nlp.Doc {
	return nlp.Doc{Last(text, strings.ToLower(text), "NOUN", "NN")}
}

// Biologist is "A biologist will tell you that a cell contains a cell wall."
func Biologist() nlp.Doc {
	return nlp.Doc{
		Tok("A", "a", "DET", "DT"),
		Tok("biologist", "biologist", "NOUN", "NN"),
		Tok("will", "will", "AUX", "MD"),
		Tok("tell", "tell", "VERB", "VB"),
		Tok("you", "you", "PRON", "PRP"),
		Tok("that", "that", "SCONJ", "IN"),
		Tok("a", "a", "DET", "DT"),
		Tok("cell", "cell", "NOUN", "NN"),
		Tok("contains", "contain", "VERB", "VBZ"),
		Tok("a", "a", "DET", "DT"),
		Tok("cell", "cell", "NOUN", "NN"),
		Last("wall", "wall", "NOUN", "NN"),
		Last(".", ".", "PUNCT", "."),
	}
}

// BiologistTerms is the vocabulary cell, cell wall, biologist.
func BiologistTerms() []nlp.Doc {
	return []nlp.Doc{
		Noun("cell"),
		{Tok("cell", "cell", "NOUN", "NN"), Last("wall", "wall", "NOUN", "NN")},
		Noun("biologist"),
	}
}

// Helium is "He talks about helium (He), which is a gas or plural gases."
func Helium() nlp.Doc {
	return nlp.Doc{
		Tok("He", "he", "PRON", "PRP"),
		Tok("talks", "talk", "VERB", "VBZ"),
		Tok("about", "about", "ADP", "IN"),
		Tok("helium", "helium", "NOUN", "NN"),
		Last("(", "(", "PUNCT", "-LRB-"),
		Last("He", "he", "PRON", "PRP"),
		Last(")", ")", "PUNCT", "-RRB-"),
		Tok(",", ",", "PUNCT", ","),
		Tok("which", "which", "DET", "WDT"),
		Tok("is", "be", "AUX", "VBZ"),
		Tok("a", "a", "DET", "DT"),
		Tok("gas", "gas", "NOUN", "NN"),
		Tok("or", "or", "CCONJ", "CC"),
		Tok("plural", "plural", "ADJ", "JJ"),
		Last("gases", "gas", "NOUN", "NNS"),
		Last(".", ".", "PUNCT", "."),
	}
}

// HeliumTerms is the vocabulary He, helium, gas.
func HeliumTerms() []nlp.Doc {
	return []nlp.Doc{
		{Last("He", "he", "PRON", "PRP")},
		Noun("helium"),
		Noun("gas"),
	}
}

// Pipeline is a whitespace pipeline with a fixed lemma table. Tokens not in
// the table are their own lowercase lemma and tagged as nouns.
type Pipeline struct {
	Lemmas map[string]string
}

// Process implements nlp.Pipeline.
func (p Pipeline) Process(ctx context.Context, text string) (nlp.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty text")
	}
	doc := make(nlp.Doc, len(fields))
	for i, f := range fields {
		lemma, ok := p.Lemmas[f]
		if !ok {
			lemma = strings.ToLower(f)
		}
		doc[i] = Tok(f, lemma, "NOUN", "NN")
	}
	doc[len(doc)-1].Whitespace = ""
	return doc, nil
}
