package config

import (
	"fmt"

	"github.com/cognicore/termrel/pkg/termrel/classify"
	"github.com/cognicore/termrel/pkg/termrel/lexicon"
	"github.com/cognicore/termrel/pkg/termrel/match"
	"github.com/cognicore/termrel/pkg/termrel/stoplist"
	"github.com/cognicore/termrel/pkg/termrel/tagging"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	StoplistPath   string
	ClassifierPath string
	MatcherPath    string
	LexiconPath    string

	// Classify turns on term-type annotation. It is implied by a
	// non-empty ClassifierPath.
	Classify bool
}

// Components holds all loaded configuration components
type Components struct {
	StopWords    *stoplist.Manager
	MatchOptions match.Options
	Matcher      *match.Matcher
	// Lexicon is nil when no lexicon file is configured.
	Lexicon *lexicon.Lexicon
	// Classifier is nil when classification is disabled.
	Classifier *classify.Classifier
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load stoplist
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.StopWords = stoplist.NewManager(sl.Terms)
	} else {
		comp.StopWords = stoplist.English()
	}

	// Load matcher options
	if l.MatcherPath != "" {
		opts, err := LoadMatcher(l.MatcherPath)
		if err != nil {
			return nil, fmt.Errorf("load matcher: %w", err)
		}
		comp.MatchOptions = *opts
	} else {
		comp.MatchOptions = match.DefaultOptions()
	}

	// Load lexicon variants
	if l.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
		comp.MatchOptions.Lexicon = lex
	}
	comp.Matcher = match.NewMatcher(comp.StopWords, comp.MatchOptions)

	// Load classifier rules
	if l.ClassifierPath != "" {
		rules, err := LoadClassifier(l.ClassifierPath)
		if err != nil {
			return nil, fmt.Errorf("load classifier: %w", err)
		}
		comp.Classifier = classify.New(*rules)
	} else if l.Classify {
		comp.Classifier = classify.New(classify.DefaultRules())
	}

	return comp, nil
}

// Tagger builds the term tagging orchestrator from the loaded components.
func (c *Components) Tagger() *tagging.Tagger {
	return tagging.New(c.Matcher, c.Classifier)
}
