package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/termrel/pkg/termrel/corpus"
)

func countsCmd(g *globalOptions) *cobra.Command {
	var (
		file string
		top  int
	)

	cmd := &cobra.Command{
		Use:   "counts [corpus]",
		Short: "Show term counts of a corpus from the store or a counts file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var counts map[string]int
			switch {
			case file != "":
				c, err := corpus.ReadCounts(file)
				if err != nil {
					return err
				}
				counts = c
			case len(args) == 1:
				ctx, stop := signalContext()
				defer stop()

				s, err := g.requireStore(ctx)
				if err != nil {
					return err
				}
				defer s.Close()

				counts, err = s.TermCounts(ctx, args[0])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("either a corpus name or --file is required")
			}

			for _, tc := range rankCounts(counts, top) {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", tc.count, tc.term)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Term counts JSON written by tag")
	cmd.Flags().IntVar(&top, "top", 0, "Show only the N most frequent terms (0 = all)")
	return cmd
}

type termCount struct {
	term  string
	count int
}

// rankCounts orders counts by frequency, then term.
func rankCounts(counts map[string]int, top int) []termCount {
	out := make([]termCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, termCount{term: t, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].term < out[j].term
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

func runsCmd(g *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded tagging runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			s, err := g.requireStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.Runs(ctx, limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s  %6d sentences  %4d skipped  %5d terms  %s\n",
					r.ID, r.Name, r.Sentences, r.Skipped, r.Terms,
					r.Finished.Sub(r.Started).Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs (0 = all)")
	return cmd
}
