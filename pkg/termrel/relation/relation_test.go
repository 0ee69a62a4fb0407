package relation

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cognicore/termrel/internal/fixture"
	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/match"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
	"github.com/cognicore/termrel/pkg/termrel/stoplist"
	"github.com/cognicore/termrel/pkg/termrel/tagging"
)

var biologistTokens = []string{"A", "biologist", "will", "tell", "you", "that", "a", "cell", "contains", "a", "cell", "wall", "."}

func biologistFound() *match.FoundTerms {
	found := match.NewFoundTerms()
	for _, r := range []struct {
		key  string
		text string
		tag  string
		span nlp.Span
	}{
		{"biologist", "biologist", "NN", nlp.Span{Start: 1, End: 2}},
		{"cell", "cell", "NN", nlp.Span{Start: 7, End: 8}},
		{"cell wall", "cell wall", "NN NN", nlp.Span{Start: 10, End: 12}},
	} {
		rec := found.GetOrInsert(r.key)
		rec.Text = append(rec.Text, r.text)
		rec.Tags = append(rec.Tags, r.tag)
		rec.Spans = append(rec.Spans, r.span)
	}
	return found
}

func newExtractor() *Extractor {
	m := match.NewMatcher(stoplist.English(), match.DefaultOptions())
	return NewExtractor(tagging.New(m, nil))
}

func TestClosestMatch(t *testing.T) {
	a := []nlp.Span{{Start: 12, End: 15}}
	b := []nlp.Span{{Start: 18, End: 20}}
	s1, s2, err := ClosestMatch(a, b)
	if err != nil || s1 != a[0] || s2 != b[0] {
		t.Errorf("Single pair should be returned directly, got %v %v %v", s1, s2, err)
	}

	a = []nlp.Span{{Start: 12, End: 15}, {Start: 5, End: 6}}
	b = []nlp.Span{{Start: 8, End: 10}}
	s1, s2, err = ClosestMatch(a, b)
	if err != nil {
		t.Fatalf("ClosestMatch: %v", err)
	}
	if s1 != a[1] || s2 != b[0] {
		t.Errorf("Expected (5,6),(8,10), got %v %v", s1, s2)
	}
}

func TestClosestMatchIsMinimal(t *testing.T) {
	a := []nlp.Span{{Start: 0, End: 1}, {Start: 9, End: 10}, {Start: 20, End: 22}}
	b := []nlp.Span{{Start: 3, End: 4}, {Start: 14, End: 15}, {Start: 30, End: 31}}

	s1, s2, err := ClosestMatch(a, b)
	if err != nil {
		t.Fatalf("ClosestMatch: %v", err)
	}
	best := abs(s1.Start - s2.Start)
	for _, x := range a {
		for _, y := range b {
			if d := abs(x.Start - y.Start); d < best {
				t.Errorf("Pair %v %v at %d is closer than chosen %d", x, y, d, best)
			}
		}
	}
}

func TestClosestMatchEmpty(t *testing.T) {
	_, _, err := ClosestMatch(nil, []nlp.Span{{Start: 0, End: 1}})
	if !errors.Is(err, internalerr.ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition, got %v", err)
	}
}

func TestInsertTags(t *testing.T) {
	got := InsertTags(biologistTokens, nlp.Span{Start: 1, End: 2}, nlp.Span{Start: 10, End: 12})
	want := []string{"A", "<e1>", "biologist", "</e1>", "will", "tell", "you", "that", "a", "cell",
		"contains", "a", "<e2>", "cell", "wall", "</e2>", "."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if biologistTokens[1] != "biologist" || len(biologistTokens) != 13 {
		t.Error("InsertTags should not modify its input")
	}
}

func TestInsertTagsReversedAndAdjacent(t *testing.T) {
	tokens := []string{"a", "b", "c", "d"}

	got := InsertTags(tokens, nlp.Span{Start: 2, End: 3}, nlp.Span{Start: 1, End: 2})
	want := []string{"a", "<e2>", "b", "</e2>", "<e1>", "c", "</e1>", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got = InsertTags(tokens, nlp.Span{Start: 0, End: 2}, nlp.Span{Start: 3, End: 4})
	want = []string{"<e1>", "a", "b", "</e1>", "c", "<e2>", "d", "</e2>"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestInsertTagsPreservesTokens(t *testing.T) {
	got := InsertTags(biologistTokens, nlp.Span{Start: 10, End: 12}, nlp.Span{Start: 7, End: 8})
	if len(got) != len(biologistTokens)+4 {
		t.Fatalf("Expected exactly 4 markers, got %d extra tokens", len(got)-len(biologistTokens))
	}

	var stripped []string
	for _, tok := range got {
		switch tok {
		case E1Open, E1Close, E2Open, E2Close:
			continue
		}
		stripped = append(stripped, tok)
	}
	if !reflect.DeepEqual(stripped, biologistTokens) {
		t.Errorf("Non-marker tokens changed: %v", stripped)
	}
}

func TestAddNoRelation(t *testing.T) {
	db := NewDB()
	db.GetOrInsert("has-part", "cell -> cell wall").E1Representations = []string{"cell"}
	db["has-part"]["cell -> cell wall"].E2Representations = []string{"cell wall"}

	if err := db.Add("biologist", "cell", biologistFound(), biologistTokens); err != nil {
		t.Fatalf("Add: %v", err)
	}

	want := map[string]*Entry{
		"biologist -> cell": {
			Sentences: [][]string{{"A", "<e1>", "biologist", "</e1>", "will", "tell", "you", "that",
				"a", "<e2>", "cell", "</e2>", "contains", "a", "cell", "wall", "."}},
			E1Representations: []string{"biologist"},
			E2Representations: []string{"cell"},
		},
	}
	if !reflect.DeepEqual(db[NoRelation], want) {
		t.Errorf("Unexpected no-relation bucket: %+v", db[NoRelation]["biologist -> cell"])
	}
	if len(db["has-part"]["cell -> cell wall"].Sentences) != 0 {
		t.Error("Unrelated pair should not touch has-part")
	}
}

func TestAddKnownRelation(t *testing.T) {
	db := NewDB()
	e := db.GetOrInsert("has-part", "cell -> cell wall")
	e.E1Representations = []string{"cell"}
	e.E2Representations = []string{"cell wall"}

	if err := db.Add("cell", "cell wall", biologistFound(), biologistTokens); err != nil {
		t.Fatalf("Add: %v", err)
	}

	want := &Entry{
		Sentences: [][]string{{"A", "biologist", "will", "tell", "you", "that", "a", "<e1>", "cell",
			"</e1>", "contains", "a", "<e2>", "cell", "wall", "</e2>", "."}},
		E1Representations: []string{"cell"},
		E2Representations: []string{"cell wall"},
	}
	if !reflect.DeepEqual(db["has-part"]["cell -> cell wall"], want) {
		t.Errorf("Unexpected has-part entry: %+v", db["has-part"]["cell -> cell wall"])
	}
	if len(db[NoRelation]) != 0 {
		t.Errorf("Known pair should not go to no-relation: %v", db.Pairs(NoRelation))
	}
}

func TestAddPairListedTwice(t *testing.T) {
	db := NewDB()
	db.GetOrInsert("part-of", "cell wall -> cell")
	db.GetOrInsert(NoRelation, "cell wall -> cell")

	if err := db.Add("cell wall", "cell", biologistFound(), biologistTokens); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, rel := range []string{"part-of", NoRelation} {
		if n := len(db[rel]["cell wall -> cell"].Sentences); n != 1 {
			t.Errorf("Bucket %s should hold 1 sentence, got %d", rel, n)
		}
	}
	db["part-of"]["cell wall -> cell"].Sentences[0][0] = "changed"
	if db[NoRelation]["cell wall -> cell"].Sentences[0][0] == "changed" {
		t.Error("Buckets should not share sentence storage")
	}
}

func TestAddUnknownTerm(t *testing.T) {
	err := NewDB().Add("biologist", "virus", biologistFound(), biologistTokens)
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTagRelationsBothDirections(t *testing.T) {
	db := NewDB()
	if _, err := newExtractor().TagRelations(db, fixture.Biologist(), fixture.BiologistTerms()); err != nil {
		t.Fatalf("TagRelations: %v", err)
	}

	want := []string{
		"biologist -> cell",
		"biologist -> cell wall",
		"cell -> biologist",
		"cell -> cell wall",
		"cell wall -> biologist",
		"cell wall -> cell",
	}
	if got := db.Pairs(NoRelation); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected pairs %v, got %v", want, got)
	}
}

func TestTagRelationsAccumulates(t *testing.T) {
	db := NewDB("has-part")
	db.GetOrInsert("has-part", "cell -> cell wall")
	x := newExtractor()

	if _, err := x.TagRelations(db, fixture.Biologist(), fixture.BiologistTerms()); err != nil {
		t.Fatalf("TagRelations: %v", err)
	}

	second := nlp.Doc{
		fixture.Tok("Every", "every", "DET", "DT"),
		fixture.Tok("cell", "cell", "NOUN", "NN"),
		fixture.Tok("has", "have", "VERB", "VBZ"),
		fixture.Tok("a", "a", "DET", "DT"),
		fixture.Tok("cell", "cell", "NOUN", "NN"),
		fixture.Last("wall", "wall", "NOUN", "NN"),
		fixture.Last(".", ".", "PUNCT", "."),
	}
	if _, err := x.TagRelations(db, second, fixture.BiologistTerms()); err != nil {
		t.Fatalf("TagRelations: %v", err)
	}

	e := db["has-part"]["cell -> cell wall"]
	if len(e.Sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(e.Sentences))
	}
	if !reflect.DeepEqual(e.E1Representations, []string{"cell"}) {
		t.Errorf("E1 representations should be deduplicated, got %v", e.E1Representations)
	}
	if !reflect.DeepEqual(e.E2Representations, []string{"cell wall"}) {
		t.Errorf("E2 representations should be deduplicated, got %v", e.E2Representations)
	}
	if _, ok := db[NoRelation]["cell -> cell wall"]; ok {
		t.Error("Known pair should never land in no-relation")
	}
}

func TestMerge(t *testing.T) {
	a := NewDB()
	a.GetOrInsert(NoRelation, "x -> y").add([]string{"s1"}, "x", "y")

	b := NewDB("part-of")
	b.GetOrInsert(NoRelation, "x -> y").add([]string{"s2"}, "X", "y")
	b.GetOrInsert("part-of", "y -> z").add([]string{"s3"}, "y", "z")

	Merge(a, b)

	e := a[NoRelation]["x -> y"]
	if !reflect.DeepEqual(e.Sentences, [][]string{{"s1"}, {"s2"}}) {
		t.Errorf("Sentences should concatenate, got %v", e.Sentences)
	}
	if !reflect.DeepEqual(e.E1Representations, []string{"x", "X"}) {
		t.Errorf("E1 should union, got %v", e.E1Representations)
	}
	if !reflect.DeepEqual(e.E2Representations, []string{"y"}) {
		t.Errorf("E2 should dedupe, got %v", e.E2Representations)
	}
	if _, ok := a["part-of"]["y -> z"]; !ok {
		t.Error("Merge should add missing buckets")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.yaml")

	db := NewDB("has-part")
	db.GetOrInsert("has-part", "cell -> cell wall").add([]string{"<e1>", "cell", "</e1>"}, "cell", "cell wall")
	if err := Save(path, db); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, db) {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	db, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := db[NoRelation]; !ok {
		t.Error("Missing file should give an empty DB with no-relation bucket")
	}
}

func TestDecodeSeed(t *testing.T) {
	seed := []byte(`
has-part:
  cell -> cell wall:
    e1_representations: [cell]
    e2_representations: [cell wall]
`)
	db, err := Decode(seed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(db.Relations(), []string{"has-part"}) {
		t.Errorf("Unexpected relations %v", db.Relations())
	}
	first, second, ok := SplitPairKey("cell -> cell wall")
	if !ok || first != "cell" || second != "cell wall" {
		t.Errorf("SplitPairKey mismatch: %q %q", first, second)
	}
	if _, ok := db[NoRelation]; !ok {
		t.Error("Decode should add the no-relation bucket")
	}
}

func TestMergeKeepsEmptyBuckets(t *testing.T) {
	a := NewDB()
	Merge(a, NewDB("causes"))
	if !reflect.DeepEqual(a.Relations(), []string{"causes"}) {
		t.Errorf("Empty relation should survive Merge, got %v", a.Relations())
	}
}

func TestSeed(t *testing.T) {
	db := NewDB("has-part")
	db.GetOrInsert("has-part", "cell -> cell wall").add([]string{"s1"}, "cell", "cell wall")
	db.GetOrInsert(NoRelation, "cell -> biologist").add([]string{"s2"}, "cell", "biologist")

	seed := db.Seed()
	want := DB{
		NoRelation: {},
		"has-part": {"cell -> cell wall": &Entry{}},
	}
	if !reflect.DeepEqual(seed, want) {
		t.Errorf("Seed mismatch: %#v", seed)
	}

	if err := seed.Add("cell", "cell wall", biologistFound(), biologistTokens); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(seed["has-part"]["cell -> cell wall"].Sentences) != 1 {
		t.Error("A seeded DB should file labeled pairs under their relation")
	}
	if len(db["has-part"]["cell -> cell wall"].Sentences) != 1 {
		t.Error("Filling the seed should not touch the original")
	}
}
