package tagging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/termrel/pkg/termrel/classify"
	"github.com/cognicore/termrel/pkg/termrel/internalerr"
)

// Mention is a typed term recovered from annotated text.
type Mention struct {
	Text string
	Type classify.Type
	// Offset is the byte offset of the mention in the plain text.
	Offset int
}

// ParseAnnotated reads text produced by Annotate and returns the plain text
// with the typed mentions in order. Unknown elements are kept as text.
func ParseAnnotated(annotated string) (string, []Mention, error) {
	z := html.NewTokenizer(strings.NewReader(annotated))

	var (
		plain    strings.Builder
		mentions []Mention
		current  *Mention
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", nil, err
			}
			if current != nil {
				return "", nil, fmt.Errorf("unclosed <%s>: %w", current.Type, internalerr.ErrInvalidInput)
			}
			return plain.String(), mentions, nil

		case html.StartTagToken:
			typ, ok := mentionType(z)
			if !ok {
				plain.Write(z.Raw())
				continue
			}
			if current != nil {
				return "", nil, fmt.Errorf("nested <%s> inside <%s>: %w", typ, current.Type, internalerr.ErrInvalidInput)
			}
			current = &Mention{Type: typ, Offset: plain.Len()}

		case html.EndTagToken:
			typ, ok := mentionType(z)
			if !ok {
				plain.Write(z.Raw())
				continue
			}
			if current == nil || current.Type != typ {
				return "", nil, fmt.Errorf("unexpected </%s>: %w", typ, internalerr.ErrInvalidInput)
			}
			mentions = append(mentions, *current)
			current = nil

		case html.TextToken:
			text := string(z.Text())
			plain.WriteString(text)
			if current != nil {
				current.Text += text
			}

		default:
			plain.Write(z.Raw())
		}
	}
}

func mentionType(z *html.Tokenizer) (classify.Type, bool) {
	name, _ := z.TagName()
	switch classify.Type(name) {
	case classify.Entity:
		return classify.Entity, true
	case classify.Event:
		return classify.Event, true
	}
	return "", false
}
