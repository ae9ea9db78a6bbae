// Package stream provides a cursor-based scanner over a buffer of UTF-16
// code units.
//
// Every offset the package reports is a code-unit offset into the buffer
// the Parser was created with. Reads either advance the cursor or leave it
// where it was; none of them panic on any input.
package stream

import (
	"unicode/utf16"

	"github.com/rivo/uniseg"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("markscan.stream")

// Unbounded disables the limit of a bounded read.
const Unbounded = -1

// graphemeWindow is the initial number of code units decoded when looking
// for the end of a grapheme cluster.
const graphemeWindow = 16

// graphemeLookahead is how many code units must follow a cluster inside
// the decoded window before its boundary is trusted.
const graphemeLookahead = 4

// Parser is a cursor over an immutable buffer of UTF-16 code units.
// A Parser must not be used from more than one goroutine at a time.
type Parser struct {
	buf []uint16
	pos int
	len int
}

// Mark is a saved cursor position.
type Mark int

// New returns a parser over the UTF-16 encoding of s.
// Invalid UTF-8 in s is replaced with U+FFFD.
func New(s string) *Parser {
	return NewUTF16(utf16.Encode([]rune(s)))
}

// NewUTF16 returns a parser over units. The slice must not be modified
// while the parser is in use.
func NewUTF16(units []uint16) *Parser {
	return &Parser{
		buf: units,
		len: len(units),
	}
}

// Len returns the length of the buffer in code units.
func (p *Parser) Len() int {
	return p.len
}

// Position returns the cursor offset.
func (p *Parser) Position() int {
	return p.pos
}

// SetPosition moves the cursor, clamping pos to [0, Len()].
func (p *Parser) SetPosition(pos int) {
	switch {
	case pos < 0:
		p.pos = 0
	case pos > p.len:
		p.pos = p.len
	default:
		p.pos = pos
	}
}

// Mark saves the cursor so a caller can backtrack with Reset.
func (p *Parser) Mark() Mark {
	return Mark(p.pos)
}

// Reset restores a cursor saved with Mark.
func (p *Parser) Reset(m Mark) {
	p.SetPosition(int(m))
}

// HasNext reports whether any code units remain.
func (p *Parser) HasNext() bool {
	return p.pos < p.len
}

// Peek returns the code unit under the cursor without consuming it.
func (p *Parser) Peek() (rune, bool) {
	if p.pos >= p.len {
		return 0, false
	}
	return rune(p.buf[p.pos]), true
}

// NextCodeUnit consumes and returns a single code unit. Surrogate pairs
// are returned one half at a time.
func (p *Parser) NextCodeUnit() (uint16, bool) {
	if p.pos >= p.len {
		return 0, false
	}
	u := p.buf[p.pos]
	p.pos++
	return u, true
}

// NextCharacter consumes and returns one extended grapheme cluster, which
// may span several code units.
func (p *Parser) NextCharacter() (string, bool) {
	if p.pos >= p.len {
		return "", false
	}
	window := graphemeWindow
	for {
		end := min(p.pos+window, p.len)
		if end < p.len && isHighSurrogate(p.buf[end-1]) {
			end++
		}
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(p.text(p.pos, end), -1)
		n := utf16Len(cluster)
		if end < p.len && p.pos+n > end-graphemeLookahead {
			// The boundary was decided too close to the cut.
			window *= 2
			continue
		}
		p.pos += n
		return cluster, true
	}
}

// PrevRune returns the code point that ends just before the cursor. A
// surrogate pair is decoded as one code point and a lone surrogate is
// returned as U+FFFD.
func (p *Parser) PrevRune() (rune, bool) {
	if p.pos == 0 {
		return 0, false
	}
	i := p.pos - 1
	u := p.buf[i]
	if i > 0 && !isHighSurrogate(u) && utf16.IsSurrogate(rune(u)) && isHighSurrogate(p.buf[i-1]) {
		return utf16.DecodeRune(rune(p.buf[i-1]), rune(u)), true
	}
	if utf16.IsSurrogate(rune(u)) {
		return '\uFFFD', true
	}
	return rune(u), true
}

// Sub returns a parser over the code units covered by s, clamped to the
// buffer. The new parser shares the buffer, so creating it costs nothing,
// and its offsets are relative to s.Start.
func (p *Parser) Sub(s Span) *Parser {
	start := min(max(s.Start, 0), p.len)
	end := min(max(s.End, start), p.len)
	return NewUTF16(p.buf[start:end])
}

// String returns the whole buffer.
func (p *Parser) String() string {
	return p.text(0, p.len)
}

// Remaining returns the text from the cursor to the end without consuming it.
func (p *Parser) Remaining() string {
	return p.text(p.pos, p.len)
}

// Slice returns the text covered by s, clamped to the buffer.
func (p *Parser) Slice(s Span) string {
	start := max(s.Start, 0)
	end := min(s.End, p.len)
	if start >= end {
		return ""
	}
	return p.text(start, end)
}

func (p *Parser) text(start, end int) string {
	if start >= end {
		return ""
	}
	return string(utf16.Decode(p.buf[start:end]))
}

// decodeAt decodes the code point starting at offset i. It fails on a
// lone surrogate.
func (p *Parser) decodeAt(i int) (rune, bool) {
	u := rune(p.buf[i])
	if !utf16.IsSurrogate(u) {
		return u, true
	}
	if u >= 0xDC00 || i+1 >= p.len {
		return 0, false
	}
	r := utf16.DecodeRune(u, rune(p.buf[i+1]))
	if r == 0xFFFD {
		return 0, false
	}
	return r, true
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u < 0xDC00
}

func (p *Parser) hasPrefix(units []uint16) bool {
	if len(units) > p.len-p.pos {
		return false
	}
	for i, u := range units {
		if p.buf[p.pos+i] != u {
			return false
		}
	}
	return true
}

func encode(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
