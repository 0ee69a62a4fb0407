package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/cognicore/termrel/pkg/termrel/corpus"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
	"github.com/cognicore/termrel/pkg/termrel/relation"
	"github.com/cognicore/termrel/pkg/termrel/store"
	"github.com/cognicore/termrel/pkg/termrel/tagging"
)

// jobOptions are the flags shared by commands that run corpus jobs.
type jobOptions struct {
	terms       []string
	workers     int
	skipInvalid bool
	quiet       bool
}

func (j *jobOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&j.terms, "terms", nil, "Preprocessed term list (JSONL), repeatable")
	cmd.Flags().IntVar(&j.workers, "workers", 1, "Parallel tagging workers per corpus")
	cmd.Flags().BoolVar(&j.skipInvalid, "skip-invalid", false, "Skip sentences that fail to tag instead of aborting")
	cmd.Flags().BoolVar(&j.quiet, "quiet", false, "Disable the progress bar")
}

func tagCmd(g *globalOptions) *cobra.Command {
	var (
		jo     jobOptions
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "tag [corpus.jsonl...]",
		Short: "Write tokenized sentences, BIOES tags and term counts per corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			comp, err := g.components()
			if err != nil {
				return err
			}
			terms, err := readTerms(jo.terms)
			if err != nil {
				return err
			}
			s, err := g.openStore(ctx)
			if err != nil {
				return err
			}
			if s != nil {
				defer s.Close()
			}

			w := corpus.Writer{Dir: outDir}
			for i, path := range args {
				log.Printf("Tagging %s: corpus %d/%d", path, i+1, len(args))
				out, err := runCorpus(ctx, cmd.ErrOrStderr(), &jo, comp.Tagger(), terms, nil, path)
				if err != nil {
					return err
				}
				paths, err := w.Write(out)
				if err != nil {
					return fmt.Errorf("write %s: %w", out.Name, err)
				}
				log.Printf("Wrote %s, %s, %s", paths.Sentences, paths.Tags, paths.Counts)
				if err := record(ctx, s, out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	jo.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	return cmd
}

// runCorpus tags one corpus file, showing a progress bar on w unless quiet.
// Each call owns its progress instance so several corpora can run in turn.
func runCorpus(ctx context.Context, w io.Writer, jo *jobOptions, tagger *tagging.Tagger, terms []nlp.Doc, db relation.DB, path string) (*corpus.Output, error) {
	docs, err := corpus.ReadDocs(path)
	if err != nil {
		return nil, err
	}

	job := &corpus.Job{
		Name:        corpusName(path),
		Tagger:      tagger,
		Terms:       terms,
		Relations:   db,
		Workers:     jo.workers,
		SkipInvalid: jo.skipInvalid,
		OnError: func(i int, err error) {
			log.Printf("WARN: %s: %v", path, err)
		},
	}

	if !jo.quiet && len(docs) > 0 {
		p := uiprogress.New()
		p.SetOut(w)
		p.Start()
		bar := p.AddBar(len(docs))
		bar.AppendCompleted()
		bar.PrependElapsed()
		job.Progress = func(done, total int) {
			bar.Incr()
		}
		defer p.Stop()
	}

	out, err := job.Run(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// record stores the run and its term counts when a store is configured.
func record(ctx context.Context, s store.Store, out *corpus.Output) error {
	log.Printf("Run %s: %d sentences tagged, %d skipped, %d distinct terms",
		out.RunID, len(out.Sentences), out.Skipped, len(out.Counts))
	if s == nil {
		return nil
	}
	if err := s.AddTermCounts(ctx, out.Name, out.Counts); err != nil {
		return fmt.Errorf("store counts: %w", err)
	}
	if err := s.RecordRun(ctx, out.Run()); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}
