package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

const maxLine = 4 << 20

// ReadDocs reads a preprocessed corpus file: one sentence per line, each line
// a JSON array of tokens.
func ReadDocs(path string) ([]nlp.Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := DecodeDocs(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// DecodeDocs decodes JSONL sentences from r. Blank lines are skipped.
func DecodeDocs(r io.Reader) ([]nlp.Doc, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var docs []nlp.Doc
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var doc nlp.Doc
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, internalerr.ErrInvalidInput)
		}
		docs = append(docs, doc)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// WriteDocs encodes docs as JSONL to w.
func WriteDocs(w io.Writer, docs []nlp.Doc) error {
	enc := json.NewEncoder(w)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}

// ReadTermList reads raw term strings, one per line. Blank lines and lines
// starting with '#' are skipped.
func ReadTermList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		t := strings.TrimSpace(sc.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		terms = append(terms, t)
	}
	return terms, sc.Err()
}

// PreprocessTerms runs each raw term through the pipeline. Terms the pipeline
// turns into an empty doc are dropped.
func PreprocessTerms(ctx context.Context, p nlp.Pipeline, raw []string) ([]nlp.Doc, error) {
	terms := make([]nlp.Doc, 0, len(raw))
	for _, t := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := p.Process(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("preprocess term %q: %w", t, err)
		}
		if len(doc) == 0 {
			continue
		}
		terms = append(terms, doc)
	}
	return terms, nil
}
