package classify

import (
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

// Type is the category assigned to a term.
type Type string

const (
	Entity Type = "entity"
	Event  Type = "event"
)

// Classifier separates event terms (processes, cycles, nominalized actions)
// from entity terms using lexical, morphological and POS cues.
type Classifier struct {
	keywords []string // lowercase
	suffixes []string // lowercase
	verbTags []string
}

// Rules configures a Classifier.
type Rules struct {
	EventKeywords []string `yaml:"event_keywords"`
	EventSuffixes []string `yaml:"event_suffixes"`
	// VerbTags are POS values treated as verbs. A value matches the token's
	// coarse Pos exactly, or prefixes its fine-grained Tag.
	VerbTags []string `yaml:"verb_tags"`
}

// DefaultRules returns the built-in event cues.
func DefaultRules() Rules {
	return Rules{
		EventKeywords: []string{"process", "cycle"},
		EventSuffixes: []string{"tion", "ing", "sis", "ment"},
		VerbTags:      []string{"VERB", "VB"},
	}
}

// New creates a classifier. Empty rule lists fall back to the defaults.
func New(r Rules) *Classifier {
	def := DefaultRules()
	if len(r.EventKeywords) == 0 {
		r.EventKeywords = def.EventKeywords
	}
	if len(r.EventSuffixes) == 0 {
		r.EventSuffixes = def.EventSuffixes
	}
	if len(r.VerbTags) == 0 {
		r.VerbTags = def.VerbTags
	}
	return &Classifier{
		keywords: lower(r.EventKeywords),
		suffixes: lower(r.EventSuffixes),
		verbTags: r.VerbTags,
	}
}

// AddEventKeyword adds a keyword that marks a term as an event
func (c *Classifier) AddEventKeyword(kw string) {
	c.keywords = append(c.keywords, strings.ToLower(kw))
}

// Classify returns Event or Entity for a term; the first matching rule wins:
// event keyword in the text, nominalization suffix on a lemma, verb POS.
func (c *Classifier) Classify(term nlp.Doc) Type {
	for _, tok := range term {
		text := strings.ToLower(tok.Text)
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return Event
			}
		}
	}

	for _, tok := range term {
		lemma := strings.ToLower(tok.Lemma)
		for _, suffix := range c.suffixes {
			if strings.HasSuffix(lemma, suffix) {
				return Event
			}
		}
	}

	for _, tok := range term {
		if c.isVerb(tok) {
			return Event
		}
	}

	return Entity
}

func (c *Classifier) isVerb(tok nlp.Token) bool {
	for _, vt := range c.verbTags {
		if tok.Pos == vt || strings.HasPrefix(tok.Tag, vt) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
