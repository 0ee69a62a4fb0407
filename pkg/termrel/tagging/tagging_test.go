package tagging

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/termrel/internal/fixture"
	"github.com/cognicore/termrel/pkg/termrel/classify"
	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/match"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
	"github.com/cognicore/termrel/pkg/termrel/stoplist"
)

func newTagger(withTypes bool) *Tagger {
	m := match.NewMatcher(stoplist.English(), match.DefaultOptions())
	if !withTypes {
		return New(m, nil)
	}
	return New(m, classify.New(classify.DefaultRules()))
}

func TestTagTermsPlain(t *testing.T) {
	res, err := newTagger(false).TagTerms(fixture.Biologist(), fixture.BiologistTerms())
	if err != nil {
		t.Fatalf("TagTerms: %v", err)
	}

	wantTokens := []string{"A", "biologist", "will", "tell", "you", "that", "a", "cell", "contains", "a", "cell", "wall", "."}
	if !reflect.DeepEqual(res.Tokens, wantTokens) {
		t.Errorf("Expected tokens %v, got %v", wantTokens, res.Tokens)
	}

	wantTags := []string{"O", "S", "O", "O", "O", "O", "O", "S", "O", "O", "B", "E", "O"}
	if !reflect.DeepEqual(res.Tags.Strings(), wantTags) {
		t.Errorf("Expected tags %v, got %v", wantTags, res.Tags.Strings())
	}

	if res.Annotated != "" {
		t.Errorf("Annotated text should be empty without classifier, got %q", res.Annotated)
	}
	rec, _ := res.Found.Get("cell")
	if len(rec.Types) != 0 {
		t.Errorf("Types should be empty without classifier, got %v", rec.Types)
	}
}

func TestTagTermsAnnotated(t *testing.T) {
	res, err := newTagger(true).TagTerms(fixture.Biologist(), fixture.BiologistTerms())
	if err != nil {
		t.Fatalf("TagTerms: %v", err)
	}

	want := "A <entity>biologist</entity> will tell you that a <entity>cell</entity> contains a <entity>cell wall</entity>."
	if res.Annotated != want {
		t.Errorf("Expected\n%q\ngot\n%q", want, res.Annotated)
	}

	rec, _ := res.Found.Get("cell wall")
	if !reflect.DeepEqual(rec.Types, []string{"entity"}) {
		t.Errorf("Expected entity type, got %v", rec.Types)
	}
}

func TestTagTermsAnnotatedEvent(t *testing.T) {
	doc := nlp.Doc{
		fixture.Tok("Cells", "cell", "NOUN", "NNS"),
		fixture.Tok("divide", "divide", "VERB", "VBP"),
		fixture.Tok("by", "by", "ADP", "IN"),
		fixture.Last("mitosis", "mitosis", "NOUN", "NN"),
		fixture.Last(".", ".", "PUNCT", "."),
	}
	terms := []nlp.Doc{fixture.Noun("mitosis"), fixture.Noun("cell")}

	res, err := newTagger(true).TagTerms(doc, terms)
	if err != nil {
		t.Fatalf("TagTerms: %v", err)
	}

	want := "<entity>Cells</entity> divide by <event>mitosis</event>."
	if res.Annotated != want {
		t.Errorf("Expected %q, got %q", want, res.Annotated)
	}
}

func TestTagTermsPrecondition(t *testing.T) {
	_, err := newTagger(false).TagTerms(fixture.Biologist(), []nlp.Doc{{}})
	if !errors.Is(err, internalerr.ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition, got %v", err)
	}
}

func TestParseAnnotatedRoundTrip(t *testing.T) {
	res, err := newTagger(true).TagTerms(fixture.Helium(), fixture.HeliumTerms())
	if err != nil {
		t.Fatalf("TagTerms: %v", err)
	}

	plain, mentions, err := ParseAnnotated(res.Annotated)
	if err != nil {
		t.Fatalf("ParseAnnotated: %v", err)
	}

	wantPlain := "He talks about helium (He), which is a gas or plural gases."
	if plain != wantPlain {
		t.Errorf("Expected plain %q, got %q", wantPlain, plain)
	}

	var texts []string
	for _, m := range mentions {
		texts = append(texts, m.Text)
		if plain[m.Offset:m.Offset+len(m.Text)] != m.Text {
			t.Errorf("Mention %q offset %d does not point at its text", m.Text, m.Offset)
		}
	}
	wantTexts := []string{"helium", "He", "gas", "gases"}
	if !reflect.DeepEqual(texts, wantTexts) {
		t.Errorf("Expected mentions %v, got %v", wantTexts, texts)
	}
}

func TestParseAnnotatedErrors(t *testing.T) {
	bad := []string{
		"a <entity>cell",
		"a cell</event>",
		"<entity>a <event>cell</event></entity>",
		"<entity>cell</event>",
	}
	for _, s := range bad {
		if _, _, err := ParseAnnotated(s); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("ParseAnnotated(%q): expected ErrInvalidInput, got %v", s, err)
		}
	}
}

func TestParseAnnotatedKeepsUnknownTags(t *testing.T) {
	plain, mentions, err := ParseAnnotated("<b>bold</b> <event>decay</event>")
	if err != nil {
		t.Fatalf("ParseAnnotated: %v", err)
	}
	if plain != "<b>bold</b> decay" {
		t.Errorf("Unknown tags should pass through, got %q", plain)
	}
	if len(mentions) != 1 || mentions[0].Type != classify.Event {
		t.Errorf("Expected one event mention, got %+v", mentions)
	}
}
