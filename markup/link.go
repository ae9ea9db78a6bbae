// Package markup finds hyperlinks in lightweight markup text: inline links
// such as [text](destination "title"), autolinks such as <https://go.dev>,
// and bare URLs.
package markup

import (
	"fmt"
	"strings"

	"github.com/dhamidi/markscan/stream"
)

// Kind identifies the syntax a link was written in.
type Kind int

const (
	// Inline is [text](destination "title").
	Inline Kind = iota
	// Autolink is <scheme:rest> or <user@host>.
	Autolink
	// BareURL is an http, https, mailto or www. address in running text.
	BareURL
)

// AllKinds lists every kind in declaration order.
var AllKinds = []Kind{Inline, Autolink, BareURL}

func (k Kind) String() string {
	switch k {
	case Inline:
		return "inline"
	case Autolink:
		return "autolink"
	case BareURL:
		return "bare"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown link kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Link is a hyperlink found in a text. Span is measured in UTF-16 code
// units of the text that was searched.
type Link struct {
	Kind        Kind        `json:"kind"`
	Text        string      `json:"text,omitempty"`
	Destination string      `json:"destination"`
	Title       string      `json:"title,omitempty"`
	Span        stream.Span `json:"span"`
}
