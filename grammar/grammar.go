// Package grammar holds the inline link syntax as an EBNF grammar and a
// matcher that checks text against it.
package grammar

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"golang.org/x/exp/ebnf"
)

// Start is the top-level production of the link grammar.
const Start = "Link"

//go:embed link.ebnf
var source []byte

// Source returns the text of the link grammar.
func Source() string {
	return string(source)
}

// Load parses the embedded link grammar.
func Load() (ebnf.Grammar, error) {
	g, err := ebnf.Parse("link.ebnf", bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// LoadFile parses an EBNF grammar from a file.
func LoadFile(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	g, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// Verify checks that every production reachable from start is defined and
// every defined production is reachable.
func Verify(g ebnf.Grammar, start string) error {
	if err := ebnf.Verify(g, start); err != nil {
		return fmt.Errorf("verify grammar from %s: %w", start, err)
	}
	return nil
}
