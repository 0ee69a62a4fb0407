package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
)

// Artifact file suffixes, appended to the corpus name.
const (
	SentencesSuffix = "_tokenized_sentences.txt"
	TagsSuffix      = "_sentence_tags.txt"
	CountsSuffix    = "_term_counts.json"
)

// Paths lists the files written for one corpus.
type Paths struct {
	Sentences string
	Tags      string
	Counts    string
}

// Writer writes corpus artifacts into Dir.
type Writer struct {
	Dir string
}

// PathsFor returns the artifact paths of a corpus name.
func (w Writer) PathsFor(name string) Paths {
	return Paths{
		Sentences: filepath.Join(w.Dir, name+SentencesSuffix),
		Tags:      filepath.Join(w.Dir, name+TagsSuffix),
		Counts:    filepath.Join(w.Dir, name+CountsSuffix),
	}
}

// Write stores the tokenized sentences and tags (one sentence per line,
// tokens separated by spaces) and the term counts as JSON.
func (w Writer) Write(out *Output) (Paths, error) {
	if out.Name == "" {
		return Paths{}, fmt.Errorf("corpus has no name: %w", internalerr.ErrInvalidInput)
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return Paths{}, err
	}

	p := w.PathsFor(out.Name)
	if err := os.WriteFile(p.Sentences, []byte(strings.Join(out.Sentences, "\n")), 0644); err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(p.Tags, []byte(strings.Join(out.Tags, "\n")), 0644); err != nil {
		return Paths{}, err
	}

	counts := out.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	data, err := json.MarshalIndent(counts, "", "    ")
	if err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(p.Counts, data, 0644); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// ReadCounts loads a term counts file written by Write.
func ReadCounts(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, internalerr.ErrInvalidInput)
	}
	return counts, nil
}
