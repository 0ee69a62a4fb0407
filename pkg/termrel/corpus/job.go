// Package corpus drives term tagging over a whole preprocessed corpus and
// writes the training artifacts for it.
package corpus

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/termrel/pkg/termrel/nlp"
	"github.com/cognicore/termrel/pkg/termrel/relation"
	"github.com/cognicore/termrel/pkg/termrel/store"
	"github.com/cognicore/termrel/pkg/termrel/tagging"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a new lexically sortable run identifier.
func NewRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Job tags every sentence of one corpus against a fixed vocabulary.
type Job struct {
	Name   string
	Tagger *tagging.Tagger
	Terms  []nlp.Doc

	// Relations, when non-nil, also collects relation candidates for every
	// sentence into this DB.
	Relations relation.DB

	// Workers splits the corpus across goroutines. Each worker collects
	// relations into a private DB merged into Relations at the end.
	Workers int

	// SkipInvalid drops sentences that fail to tag instead of aborting.
	SkipInvalid bool
	// OnError is called with the sentence index of every failure.
	OnError func(i int, err error)
	// Progress is called after each tagged sentence. It may be called from
	// several goroutines.
	Progress func(done, total int)
}

// Output is the per-corpus tagging result, in sentence order.
type Output struct {
	RunID     string
	Name      string
	Sentences []string
	Tags      []string
	Counts    map[string]int
	Skipped   int
	Started   time.Time
	Finished  time.Time
}

// Run records the output as a store run.
func (o *Output) Run() store.Run {
	return store.Run{
		ID:        o.RunID,
		Name:      o.Name,
		Sentences: len(o.Sentences),
		Skipped:   o.Skipped,
		Terms:     len(o.Counts),
		Started:   o.Started,
		Finished:  o.Finished,
	}
}

type tagged struct {
	ok       bool
	sentence string
	tags     string
	counts   map[string]int
}

// Run tags docs and aggregates term counts.
func (j *Job) Run(ctx context.Context, docs []nlp.Doc) (*Output, error) {
	out := &Output{
		RunID:   NewRunID(),
		Name:    j.Name,
		Counts:  make(map[string]int),
		Started: time.Now().UTC(),
	}

	workers := j.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(docs) && len(docs) > 0 {
		workers = len(docs)
	}

	results := make([]tagged, len(docs))
	dbs := make([]relation.DB, workers)
	errs := make([]error, workers)

	var (
		mu   sync.Mutex
		done int
	)
	progress := func() {
		if j.Progress == nil {
			return
		}
		mu.Lock()
		done++
		n := done
		mu.Unlock()
		j.Progress(n, len(docs))
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		var db relation.DB
		if j.Relations != nil {
			db = j.Relations.Seed()
		}
		dbs[w] = db

		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(docs); i += workers {
				if err := ctx.Err(); err != nil {
					errs[w] = err
					return
				}
				res, err := j.tag(db, docs[i])
				if err != nil {
					err = fmt.Errorf("sentence %d: %w", i, err)
					if j.OnError != nil {
						j.OnError(i, err)
					}
					if !j.SkipInvalid {
						errs[w] = err
						return
					}
					progress()
					continue
				}
				results[i] = tagged{
					ok:       true,
					sentence: strings.Join(res.Tokens, " "),
					tags:     strings.Join(res.Tags.Strings(), " "),
					counts:   res.Found.Counts(),
				}
				progress()
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for _, r := range results {
		if !r.ok {
			out.Skipped++
			continue
		}
		out.Sentences = append(out.Sentences, r.sentence)
		out.Tags = append(out.Tags, r.tags)
		for k, n := range r.counts {
			out.Counts[k] += n
		}
	}
	if j.Relations != nil {
		for _, db := range dbs {
			relation.Merge(j.Relations, db)
		}
	}
	out.Finished = time.Now().UTC()
	return out, nil
}

func (j *Job) tag(db relation.DB, doc nlp.Doc) (tagging.Result, error) {
	if db == nil {
		return j.Tagger.TagTerms(doc, j.Terms)
	}
	return relation.NewExtractor(j.Tagger).TagRelations(db, doc, j.Terms)
}
