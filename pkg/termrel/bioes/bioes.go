// Package bioes implements the Begin/Inside/Outside/End/Singleton tagging
// scheme over token sequences.
//
//	B = beginning of term phrase
//	I = interior of term phrase
//	O = non-term
//	E = end of term phrase
//	S = singleton term
package bioes

import (
	"fmt"

	"github.com/cognicore/termrel/pkg/termrel/internalerr"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
)

// Tag is a single BIOES label.
type Tag string

const (
	B Tag = "B"
	I Tag = "I"
	O Tag = "O"
	E Tag = "E"
	S Tag = "S"
)

// Sequence is a tag per token, parallel to a Doc.
type Sequence []Tag

// New returns an all-O sequence of length n.
func New(n int) Sequence {
	seq := make(Sequence, n)
	for i := range seq {
		seq[i] = O
	}
	return seq
}

// Parse converts string labels into a Sequence.
func Parse(labels []string) (Sequence, error) {
	seq := make(Sequence, len(labels))
	for i, l := range labels {
		switch Tag(l) {
		case B, I, O, E, S:
			seq[i] = Tag(l)
		default:
			return nil, fmt.Errorf("label %d %q: %w", i, l, internalerr.ErrInvalidInput)
		}
	}
	return seq, nil
}

// Apply tags a term of the given length matched at start and returns the
// updated copy. The input sequence is left untouched.
//
//	Apply([O O O O], 1, 2) -> [O B E O]
//	Apply([O O O O], 0, 1) -> [S O O O]
//	Apply([O O O O], 1, 3) -> [O B I E]
func Apply(seq Sequence, start, length int) Sequence {
	out := make(Sequence, len(seq))
	copy(out, seq)
	out.Mark(start, length)
	return out
}

// Mark is the in-place form of Apply. The caller guarantees the slice
// [start, start+length) is in range and currently all O.
func (s Sequence) Mark(start, length int) {
	if length == 1 {
		s[start] = S
		return
	}
	for i := 0; i < length; i++ {
		switch i {
		case 0:
			s[start+i] = B
		case length - 1:
			s[start+i] = E
		default:
			s[start+i] = I
		}
	}
}

// Free reports whether every tag in [start, start+length) is O.
func (s Sequence) Free(start, length int) bool {
	if start < 0 || start+length > len(s) {
		return false
	}
	for _, t := range s[start : start+length] {
		if t != O {
			return false
		}
	}
	return true
}

// Strings returns the labels as plain strings.
func (s Sequence) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = string(t)
	}
	return out
}

// Spans decodes the non-O runs of a valid sequence. Malformed runs are
// skipped; use Validate first when the input is untrusted.
func Spans(seq Sequence) []nlp.Span {
	var spans []nlp.Span
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case S:
			spans = append(spans, nlp.Span{Start: i, End: i + 1})
		case B:
			j := i + 1
			for j < len(seq) && seq[j] == I {
				j++
			}
			if j < len(seq) && seq[j] == E {
				spans = append(spans, nlp.Span{Start: i, End: j + 1})
				i = j
			}
		}
	}
	return spans
}

// Validate checks that every non-O run is either S alone or B I* E.
func Validate(seq Sequence) error {
	inside := false
	for i, t := range seq {
		switch t {
		case O, S:
			if inside {
				return fmt.Errorf("position %d: %s inside open phrase: %w", i, t, internalerr.ErrInvalidInput)
			}
		case B:
			if inside {
				return fmt.Errorf("position %d: B inside open phrase: %w", i, internalerr.ErrInvalidInput)
			}
			inside = true
		case I:
			if !inside {
				return fmt.Errorf("position %d: I without B: %w", i, internalerr.ErrInvalidInput)
			}
		case E:
			if !inside {
				return fmt.Errorf("position %d: E without B: %w", i, internalerr.ErrInvalidInput)
			}
			inside = false
		default:
			return fmt.Errorf("position %d: unknown tag %q: %w", i, t, internalerr.ErrInvalidInput)
		}
	}
	if inside {
		return fmt.Errorf("unterminated phrase at end of sequence: %w", internalerr.ErrInvalidInput)
	}
	return nil
}
