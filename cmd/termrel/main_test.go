package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/termrel/internal/fixture"
	"github.com/cognicore/termrel/pkg/termrel/corpus"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
	"github.com/cognicore/termrel/pkg/termrel/relation"
)

func writeJSONL(t *testing.T, path string, docs []nlp.Doc) {
	t.Helper()
	var buf bytes.Buffer
	if err := corpus.WriteDocs(&buf, docs); err != nil {
		t.Fatalf("WriteDocs: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("termrel %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func setup(t *testing.T) (dir, termsPath, corpusPath string) {
	dir = t.TempDir()
	termsPath = filepath.Join(dir, "terms.jsonl")
	corpusPath = filepath.Join(dir, "biology.jsonl")
	writeJSONL(t, termsPath, fixture.BiologistTerms())
	writeJSONL(t, corpusPath, []nlp.Doc{fixture.Biologist(), fixture.Biologist()})
	return dir, termsPath, corpusPath
}

func TestTagAndCounts(t *testing.T) {
	dir, termsPath, corpusPath := setup(t)
	dbPath := filepath.Join(dir, "termrel.db")
	outDir := filepath.Join(dir, "out")

	execute(t, "tag", "--quiet", "--terms", termsPath, "--out", outDir,
		"--store-engine", "sqlite", "--store", dbPath, corpusPath)

	data, err := os.ReadFile(filepath.Join(outDir, "biology_sentence_tags.txt"))
	if err != nil {
		t.Fatalf("tags file: %v", err)
	}
	want := "O S O O O O O S O O B E O\nO S O O O O O S O O B E O"
	if string(data) != want {
		t.Errorf("Tags file = %q, want %q", data, want)
	}

	counts, err := corpus.ReadCounts(filepath.Join(outDir, "biology_term_counts.json"))
	if err != nil {
		t.Fatalf("ReadCounts: %v", err)
	}
	wantCounts := map[string]int{"biologist": 2, "cell": 2, "cell wall": 2}
	if !reflect.DeepEqual(counts, wantCounts) {
		t.Errorf("Counts = %v, want %v", counts, wantCounts)
	}

	out := execute(t, "counts", "--store-engine", "sqlite", "--store", dbPath, "--top", "1", "biology")
	if strings.TrimSpace(out) != "2  biologist" {
		t.Errorf("counts output = %q", out)
	}

	out = execute(t, "runs", "--store-engine", "sqlite", "--store", dbPath)
	if !strings.Contains(out, "biology") || !strings.Contains(out, "2 sentences") {
		t.Errorf("runs output = %q", out)
	}
}

func TestRelationsYAML(t *testing.T) {
	dir, termsPath, corpusPath := setup(t)
	dbPath := filepath.Join(dir, "relations.yaml")

	seed := relation.NewDB("taxonomy")
	seed.GetOrInsert("taxonomy", relation.PairKey("cell wall", "cell"))
	if err := relation.Save(dbPath, seed); err != nil {
		t.Fatalf("Save: %v", err)
	}

	execute(t, "relations", "--quiet", "--terms", termsPath, "--db", dbPath,
		"--relation", "part-of", corpusPath)

	db, err := relation.Load(dbPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(db.Relations(), []string{"part-of", "taxonomy"}) {
		t.Errorf("Relations = %v", db.Relations())
	}
	e := db["taxonomy"][relation.PairKey("cell wall", "cell")]
	if e == nil || len(e.Sentences) != 2 {
		t.Fatalf("Labeled pair should collect 2 sentences, got %+v", e)
	}
	if len(db.Pairs(relation.NoRelation)) != 5 {
		t.Errorf("Expected 5 unlabeled pairs, got %v", db.Pairs(relation.NoRelation))
	}
}

func TestEval(t *testing.T) {
	sentences := []string{"a cell wall", "the cell"}
	gold := []string{"O B E", "O S"}
	pred := []string{"O O S", "O S"}

	rep, err := evaluate(sentences, gold, pred)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// gold {cell wall, cell}, predicted {wall, cell}
	if rep.Precision != 0.5 || rep.Recall != 0.5 || rep.F1 != 0.5 {
		t.Errorf("Unexpected scores %+v", rep)
	}
	if rep.TokenAccuracy != 0.6 {
		t.Errorf("TokenAccuracy = %v, want 0.6", rep.TokenAccuracy)
	}

	if _, err := evaluate(sentences, gold[:1], pred); err == nil {
		t.Error("Mismatched line counts should fail")
	}
	if _, err := evaluate(sentences, []string{"O B", "O S"}, pred); err == nil {
		t.Error("Mismatched tag counts should fail")
	}
}

func TestCorpusName(t *testing.T) {
	if got := corpusName("/data/Biology_2e.jsonl"); got != "Biology_2e" {
		t.Errorf("corpusName = %q", got)
	}
}

func TestRankCounts(t *testing.T) {
	got := rankCounts(map[string]int{"b": 2, "a": 2, "c": 5}, 0)
	want := []termCount{{"c", 5}, {"a", 2}, {"b", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestTagMultipleCorporaWithProgress(t *testing.T) {
	dir, termsPath, corpusPath := setup(t)
	second := filepath.Join(dir, "botany.jsonl")
	writeJSONL(t, second, []nlp.Doc{fixture.Biologist()})
	outDir := filepath.Join(dir, "out")

	execute(t, "tag", "--terms", termsPath, "--out", outDir, corpusPath, second)

	for _, name := range []string{"biology", "botany"} {
		if _, err := os.Stat(filepath.Join(outDir, name+"_sentence_tags.txt")); err != nil {
			t.Errorf("Expected tags for %s: %v", name, err)
		}
	}
}
