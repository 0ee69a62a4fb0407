// Package metric scores predicted term tags against reference tags at the
// term level. Empty denominators give 0 instead of an error so aggregate
// reports stay defined on degenerate inputs.
package metric

import (
	"sort"
	"strings"

	"github.com/cognicore/termrel/pkg/termrel/bioes"
)

// Terms decodes the BIOES spans of tags and counts each term text.
func Terms(tokens []string, tags bioes.Sequence) map[string]int {
	counts := make(map[string]int)
	for _, sp := range bioes.Spans(tags) {
		if sp.End > len(tokens) {
			break
		}
		counts[strings.Join(tokens[sp.Start:sp.End], " ")]++
	}
	return counts
}

// Outcome is the per-term count in the reference and in the prediction.
type Outcome struct {
	Present   int `json:"present"`
	Predicted int `json:"predicted"`
}

// Classification splits terms into true positives, false positives and
// false negatives.
type Classification struct {
	TruePositives  map[string]Outcome `json:"true_positives"`
	FalsePositives map[string]Outcome `json:"false_positives"`
	FalseNegatives map[string]Outcome `json:"false_negatives"`
}

// Compare classifies term keys of present (reference) against predicted.
func Compare(present, predicted map[string]int) Classification {
	c := Classification{
		TruePositives:  make(map[string]Outcome),
		FalsePositives: make(map[string]Outcome),
		FalseNegatives: make(map[string]Outcome),
	}
	for term, n := range present {
		if p, ok := predicted[term]; ok {
			c.TruePositives[term] = Outcome{Present: n, Predicted: p}
		} else {
			c.FalseNegatives[term] = Outcome{Present: n}
		}
	}
	for term, p := range predicted {
		if _, ok := present[term]; !ok {
			c.FalsePositives[term] = Outcome{Predicted: p}
		}
	}
	return c
}

// Precision is TP / (TP + FP), 0 when nothing was predicted.
func (c Classification) Precision() float64 {
	denom := len(c.TruePositives) + len(c.FalsePositives)
	if denom == 0 {
		return 0
	}
	return float64(len(c.TruePositives)) / float64(denom)
}

// Recall is TP / (TP + FN), 0 when nothing was present.
func (c Classification) Recall() float64 {
	denom := len(c.TruePositives) + len(c.FalseNegatives)
	if denom == 0 {
		return 0
	}
	return float64(len(c.TruePositives)) / float64(denom)
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func (c Classification) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Sorted returns the keys of a category, sorted.
func Sorted(m map[string]Outcome) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TokenAccuracy is the share of positions where predicted equals target.
func TokenAccuracy(target, predicted bioes.Sequence) float64 {
	n := len(target)
	if len(predicted) < n {
		n = len(predicted)
	}
	if n == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < n; i++ {
		if target[i] == predicted[i] {
			hits++
		}
	}
	return float64(hits) / float64(n)
}
