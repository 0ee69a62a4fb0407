package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/termrel/pkg/termrel/classify"
	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/match"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	var sl Stoplist
	if err := readYAML(path, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// LoadClassifier loads term classification rules from a YAML file.
//
// Expected format:
//
//	event_keywords: [process, cycle]
//	event_suffixes: [tion, ing, sis, ment]
//	verb_tags: [VERB, VB]
func LoadClassifier(path string) (*classify.Rules, error) {
	var r classify.Rules
	if err := readYAML(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadMatcher loads matching options from a YAML file. Unset fields keep
// their defaults.
//
// Expected format:
//
//	heuristics: true
//	min_term_chars: 2
//	heuristic_tokens: ["-"]
//	stem: false
func LoadMatcher(path string) (*match.Options, error) {
	opts := match.DefaultOptions()
	if err := readYAML(path, &opts); err != nil {
		return nil, err
	}
	if err := ValidateMatcher(opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// ValidateMatcher rejects options the matcher cannot honor.
func ValidateMatcher(opts match.Options) error {
	if opts.MinTermChars < 0 {
		return fmt.Errorf("min_term_chars %d is negative: %w", opts.MinTermChars, internalerr.ErrInvalidConfig)
	}
	for _, tok := range opts.HeuristicTokens {
		if tok == "" {
			return fmt.Errorf("empty heuristic token: %w", internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	return nil
}
