package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/termrel/pkg/termrel/bioes"
	"github.com/cognicore/termrel/pkg/termrel/metric"
)

func evalCmd() *cobra.Command {
	var (
		goldPath   string
		predPath   string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "eval [tokenized_sentences.txt]",
		Short: "Score predicted sentence tags against gold tags at the term level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sentences, err := readLines(args[0])
			if err != nil {
				return err
			}
			gold, err := readLines(goldPath)
			if err != nil {
				return err
			}
			pred, err := readLines(predPath)
			if err != nil {
				return err
			}

			rep, err := evaluate(sentences, gold, pred)
			if err != nil {
				return err
			}
			return rep.write(cmd.OutOrStdout(), outputJSON)
		},
	}

	cmd.Flags().StringVar(&goldPath, "gold", "", "Gold sentence tags, one sentence per line")
	cmd.Flags().StringVar(&predPath, "pred", "", "Predicted sentence tags, one sentence per line")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output the report as JSON")
	cmd.MarkFlagRequired("gold")
	cmd.MarkFlagRequired("pred")
	return cmd
}

type report struct {
	Precision      float64               `json:"precision"`
	Recall         float64               `json:"recall"`
	F1             float64               `json:"f1"`
	TokenAccuracy  float64               `json:"token_accuracy"`
	Classification metric.Classification `json:"classification"`
}

// evaluate aggregates term counts over all sentences before comparing.
func evaluate(sentences, gold, pred []string) (report, error) {
	if len(gold) != len(sentences) || len(pred) != len(sentences) {
		return report{}, fmt.Errorf("line counts differ: %d sentences, %d gold, %d predicted",
			len(sentences), len(gold), len(pred))
	}

	present := map[string]int{}
	predicted := map[string]int{}
	var allGold, allPred bioes.Sequence
	for i, s := range sentences {
		tokens := strings.Fields(s)
		g, err := bioes.Parse(strings.Fields(gold[i]))
		if err != nil {
			return report{}, fmt.Errorf("gold line %d: %w", i+1, err)
		}
		p, err := bioes.Parse(strings.Fields(pred[i]))
		if err != nil {
			return report{}, fmt.Errorf("predicted line %d: %w", i+1, err)
		}
		if len(g) != len(tokens) || len(p) != len(tokens) {
			return report{}, fmt.Errorf("line %d: %d tokens, %d gold tags, %d predicted tags",
				i+1, len(tokens), len(g), len(p))
		}
		for t, n := range metric.Terms(tokens, g) {
			present[t] += n
		}
		for t, n := range metric.Terms(tokens, p) {
			predicted[t] += n
		}
		allGold = append(allGold, g...)
		allPred = append(allPred, p...)
	}

	c := metric.Compare(present, predicted)
	return report{
		Precision:      c.Precision(),
		Recall:         c.Recall(),
		F1:             c.F1(),
		TokenAccuracy:  metric.TokenAccuracy(allGold, allPred),
		Classification: c,
	}, nil
}

func (r report) write(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Fprintf(w, "precision       %.4f\n", r.Precision)
	fmt.Fprintf(w, "recall          %.4f\n", r.Recall)
	fmt.Fprintf(w, "f1              %.4f\n", r.F1)
	fmt.Fprintf(w, "token accuracy  %.4f\n", r.TokenAccuracy)
	fmt.Fprintf(w, "true positives  %d\n", len(r.Classification.TruePositives))
	fmt.Fprintf(w, "false positives %d\n", len(r.Classification.FalsePositives))
	fmt.Fprintf(w, "false negatives %d\n", len(r.Classification.FalseNegatives))
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
