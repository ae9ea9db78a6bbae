package stream

import "strings"

// maxLinkIndent is how many spaces or tabs may precede a link's opening
// bracket when leading whitespace is allowed.
const maxLinkIndent = 3

var (
	destinationChars = Not(Union(Controls, CharsOf(" ")))
	titleOpeners     = CharsOf(`"'(`)
)

// ParseLinkText parses "[" text "]" and returns the trimmed text, which
// may be empty.
func (p *Parser) ParseLinkText(allowLeadingWhitespace bool) (string, bool) {
	text, ok := p.parseBracketed(allowLeadingWhitespace)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// ParseLinkLabel parses "[" label "]" where label must contain something
// other than whitespace.
func (p *Parser) ParseLinkLabel(allowLeadingWhitespace bool) (string, bool) {
	start := p.pos
	text, ok := p.parseBracketed(allowLeadingWhitespace)
	if !ok {
		return "", false
	}
	label := strings.TrimSpace(text)
	if label == "" {
		p.pos = start
		return "", false
	}
	return label, true
}

func (p *Parser) parseBracketed(allowLeadingWhitespace bool) (string, bool) {
	start := p.pos
	if allowLeadingWhitespace {
		p.SkipWhitespace(maxLinkIndent)
	}
	if !p.ReadString("[") {
		p.pos = start
		return "", false
	}
	return p.readDelimited(start, ']', false)
}

// readDelimited reads up to closer and past it. On failure the cursor
// returns to start and no text is built.
func (p *Parser) readDelimited(start int, closer rune, stopAtNewline bool) (string, bool) {
	end, stop := p.ScanUntil(closer, stopAtNewline)
	if stop != StopTarget {
		p.pos = start
		return "", false
	}
	text := p.text(p.pos, end)
	p.pos = end + 1
	return text, true
}

// ParseLinkDestination parses one of
//
//	"<" chars-without-newline ">"
//	"(" chars ")"
//	non-space non-control chars
//
// Delimited destinations are trimmed and may be empty.
func (p *Parser) ParseLinkDestination() (string, bool) {
	start := p.pos
	var closer rune
	switch {
	case p.ReadString("<"):
		closer = '>'
	case p.ReadString("("):
		closer = ')'
	default:
		dest := p.ReadWhileIn(destinationChars, Unbounded)
		return dest, dest != ""
	}

	text, ok := p.readDelimited(start, closer, closer == '>')
	if !ok {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// ParseLinkTitle parses a title quoted with ", ' or parentheses after any
// number of spaces and tabs. The title must not be empty and is returned
// untrimmed.
func (p *Parser) ParseLinkTitle() (string, bool) {
	start := p.pos
	p.SkipWhitespace(Unbounded)
	open, ok := p.ReadCharIn(titleOpeners)
	if !ok {
		p.pos = start
		return "", false
	}
	closer := open
	if open == '(' {
		closer = ')'
	}
	if r, _ := p.Peek(); r == closer {
		p.pos = start
		return "", false
	}
	return p.readDelimited(start, closer, false)
}
