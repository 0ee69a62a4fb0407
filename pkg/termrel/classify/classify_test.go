package classify

import (
	"testing"

	"github.com/cognicore/termrel/internal/fixture"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

func TestClassifyKeyword(t *testing.T) {
	c := New(DefaultRules())

	term := nlp.Doc{
		fixture.Tok("Krebs", "krebs", "PROPN", "NNP"),
		fixture.Last("Cycle", "cycle", "NOUN", "NN"),
	}
	if got := c.Classify(term); got != Event {
		t.Errorf("Keyword 'cycle' should make an event, got %s", got)
	}
}

func TestClassifySuffix(t *testing.T) {
	c := New(DefaultRules())

	for _, lemma := range []string{"mitosis", "respiration", "development", "signaling"} {
		if got := c.Classify(fixture.Noun(lemma)); got != Event {
			t.Errorf("%q should be an event, got %s", lemma, got)
		}
	}
}

func TestClassifyVerb(t *testing.T) {
	c := New(DefaultRules())

	byPos := nlp.Doc{fixture.Last("divide", "divide", "VERB", "")}
	if got := c.Classify(byPos); got != Event {
		t.Errorf("Coarse VERB should make an event, got %s", got)
	}

	byTag := nlp.Doc{fixture.Last("divides", "divide", "", "VBZ")}
	if got := c.Classify(byTag); got != Event {
		t.Errorf("Fine VBZ should make an event, got %s", got)
	}
}

func TestClassifyEntity(t *testing.T) {
	c := New(DefaultRules())

	term := nlp.Doc{
		fixture.Tok("cell", "cell", "NOUN", "NN"),
		fixture.Last("wall", "wall", "NOUN", "NN"),
	}
	if got := c.Classify(term); got != Entity {
		t.Errorf("'cell wall' should be an entity, got %s", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(DefaultRules())
	term := fixture.Noun("photosynthesis")

	first := c.Classify(term)
	for i := 0; i < 5; i++ {
		if got := c.Classify(term); got != first {
			t.Fatalf("Classify changed from %s to %s", first, got)
		}
	}
}

func TestClassifyCustomRules(t *testing.T) {
	c := New(Rules{EventKeywords: []string{"reaction"}})

	if got := c.Classify(fixture.Noun("redox reaction")); got != Event {
		t.Errorf("Custom keyword should make an event, got %s", got)
	}
	// defaults still apply to the lists left empty
	if got := c.Classify(fixture.Noun("mitosis")); got != Event {
		t.Errorf("Default suffixes should still apply, got %s", got)
	}

	c.AddEventKeyword("Decay")
	if got := c.Classify(fixture.Noun("decay")); got != Event {
		t.Errorf("Added keyword should make an event, got %s", got)
	}
}
