package stream

import (
	"slices"
	"strconv"
)

// Stop reports why a scan ended.
type Stop int

const (
	// StopEOF means the buffer ended before the scan found what it was
	// looking for.
	StopEOF Stop = iota
	// StopTarget means the scan found its target.
	StopTarget
	// StopNewline means a line feed ended the scan first.
	StopNewline
)

func (s Stop) String() string {
	switch s {
	case StopEOF:
		return "eof"
	case StopTarget:
		return "target"
	case StopNewline:
		return "newline"
	default:
		return "Stop(" + strconv.Itoa(int(s)) + ")"
	}
}

// ReadCharIn consumes the next code unit if it belongs to set.
func (p *Parser) ReadCharIn(set CharSet) (rune, bool) {
	r, ok := p.TestNextCharIn(set)
	if ok {
		p.pos++
	}
	return r, ok
}

// TestNextCharIn reports whether the next code unit belongs to set. It
// never moves the cursor.
func (p *Parser) TestNextCharIn(set CharSet) (rune, bool) {
	if p.pos >= p.len {
		return 0, false
	}
	r := rune(p.buf[p.pos])
	if !set.Contains(r) {
		return 0, false
	}
	return r, true
}

// ReadUntilChar reads up to target, which must be a single code unit.
// The returned text never includes target.
//
// With StopTarget the cursor rests after target when consumeTarget is set
// and on it otherwise. With StopNewline the cursor rests on the line feed.
// With StopEOF the cursor is at the end of the buffer and the text is
// everything that was left.
func (p *Parser) ReadUntilChar(target rune, stopAtNewline, consumeTarget bool) (string, Stop) {
	end, stop := p.ScanUntil(target, stopAtNewline)
	text := p.text(p.pos, end)
	p.pos = end
	if stop == StopTarget && consumeTarget {
		p.pos++
	}
	return text, stop
}

// Index returns the offset of the first target at or after the cursor,
// or -1. It never moves the cursor.
func (p *Parser) Index(target rune) int {
	end, stop := p.ScanUntil(target, false)
	if stop != StopTarget {
		return -1
	}
	return end
}

// ScanUntil reports where ReadUntilChar would stop, without building any
// text or moving the cursor.
func (p *Parser) ScanUntil(target rune, stopAtNewline bool) (int, Stop) {
	for i := p.pos; i < p.len; i++ {
		r := rune(p.buf[i])
		if r == target {
			return i, StopTarget
		}
		if stopAtNewline && r == '\n' {
			return i, StopNewline
		}
	}
	return p.len, StopEOF
}

// ReadRun consumes at most limit repetitions of ch and returns them. An
// empty result means the next code unit is not ch.
func (p *Parser) ReadRun(ch rune, limit int) string {
	start := p.pos
	for p.pos < p.len && !p.atLimit(start, limit) && rune(p.buf[p.pos]) == ch {
		p.pos++
	}
	return p.text(start, p.pos)
}

// ReadUntilCharNotIn consumes at most limit code units belonging to set
// and returns the first character outside set without consuming it.
//
// count is the number of code units consumed and is valid whatever ok is.
// ok is false when the buffer or the limit ran out before a boundary was
// seen, or when the boundary is a lone surrogate. In the last case the
// cursor rests on the bad code unit.
func (p *Parser) ReadUntilCharNotIn(set CharSet, limit int) (boundary rune, count int, ok bool) {
	start := p.pos
	for p.pos < p.len {
		r := rune(p.buf[p.pos])
		if !set.Contains(r) {
			boundary, ok = p.decodeAt(p.pos)
			if !ok {
				log.Warningf("malformed UTF-16 at offset %d: unpaired surrogate %#04x", p.pos, r)
			}
			return boundary, p.pos - start, ok
		}
		if p.atLimit(start, limit) {
			break
		}
		p.pos++
	}
	return 0, p.pos - start, false
}

// ReadWhileIn consumes at most limit code units belonging to set and
// returns them. The cursor rests on the first code unit outside set.
func (p *Parser) ReadWhileIn(set CharSet, limit int) string {
	start := p.pos
	p.advanceWhile(set, limit)
	return p.text(start, p.pos)
}

// ReadUntilCharIn reads up to the first code unit in set and returns the
// text before it along with the member found. The text may be empty.
// When no member is found, ok is false, the text is the rest of the
// buffer and the cursor is at the end.
func (p *Parser) ReadUntilCharIn(set CharSet, consumeFound bool) (text string, found rune, ok bool) {
	start := p.pos
	for p.pos < p.len {
		r := rune(p.buf[p.pos])
		if set.Contains(r) {
			text = p.text(start, p.pos)
			if consumeFound {
				p.pos++
			}
			return text, r, true
		}
		p.pos++
	}
	return p.text(start, p.pos), 0, false
}

// ReadString consumes lit if the buffer continues with it at the cursor.
func (p *Parser) ReadString(lit string) bool {
	units := encode(lit)
	if !p.hasPrefix(units) {
		return false
	}
	p.pos += len(units)
	return true
}

// ReadAnyString consumes the first of candidates found at the cursor.
func (p *Parser) ReadAnyString(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if p.ReadString(c) {
			return c, true
		}
	}
	return "", false
}

// ReadUntilString reads code units until the text read ends with lit and
// returns that text without lit. The cursor rests after lit when
// consumeLiteral is set and on its first code unit otherwise.
//
// With stopAtNewline, a line feed that does not complete lit ends the scan
// with StopNewline and the cursor on the line feed. With StopEOF the
// cursor is at the end of the buffer.
func (p *Parser) ReadUntilString(lit string, stopAtNewline, consumeLiteral bool) (string, Stop) {
	units := encode(lit)
	if len(units) == 0 {
		return "", StopTarget
	}
	end, stop := p.scanUntilUnits(units, stopAtNewline)
	text := p.text(p.pos, end)
	p.pos = end
	if stop == StopTarget && consumeLiteral {
		p.pos += len(units)
	}
	return text, stop
}

// scanUntilUnits returns where units start, or where a line feed or the
// end of the buffer stopped the search. It never moves the cursor.
func (p *Parser) scanUntilUnits(units []uint16, stopAtNewline bool) (int, Stop) {
	n := len(units)
	for i := p.pos; i < p.len; i++ {
		if i+1-p.pos >= n && slices.Equal(p.buf[i+1-n:i+1], units) {
			return i + 1 - n, StopTarget
		}
		if stopAtNewline && p.buf[i] == '\n' {
			return i, StopNewline
		}
	}
	return p.len, StopEOF
}

// ReadPastString reads everything up to and including lit. On failure the
// cursor is left where it was.
func (p *Parser) ReadPastString(lit string) (string, bool) {
	units := encode(lit)
	if len(units) == 0 {
		return "", true
	}
	end, stop := p.scanUntilUnits(units, false)
	if stop != StopTarget {
		return "", false
	}
	text := p.text(p.pos, end+len(units))
	p.pos = end + len(units)
	return text, true
}

// ReadUntilEOF consumes and returns the rest of the buffer.
func (p *Parser) ReadUntilEOF() string {
	text := p.text(p.pos, p.len)
	p.pos = p.len
	return text
}

// ReadInt consumes a run of ASCII digits and returns its value. A run that
// overflows int is not consumed.
func (p *Parser) ReadInt() (int, bool) {
	start := p.pos
	digits := p.ReadWhileIn(DecimalDigits, Unbounded)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		log.Debugf("integer at offset %d: %s", start, err)
		p.pos = start
		return 0, false
	}
	return n, true
}

// TestNext returns the first of candidates that the rest of the current
// line starts with. It never moves the cursor.
func (p *Parser) TestNext(candidates ...string) (string, bool) {
	end := p.pos
	for end < p.len && p.buf[end] != '\n' {
		end++
	}
	line := p.buf[p.pos:end]
	for _, c := range candidates {
		units := encode(c)
		if len(units) <= len(line) && slices.Equal(line[:len(units)], units) {
			return c, true
		}
	}
	return "", false
}

// SkipWhitespace consumes at most limit spaces and tabs and returns how
// many were consumed. Line feeds are never skipped.
func (p *Parser) SkipWhitespace(limit int) int {
	return p.advanceWhile(Whitespace, limit)
}

func (p *Parser) advanceWhile(set CharSet, limit int) int {
	start := p.pos
	for p.pos < p.len && !p.atLimit(start, limit) && set.Contains(rune(p.buf[p.pos])) {
		p.pos++
	}
	return p.pos - start
}

func (p *Parser) atLimit(start, limit int) bool {
	return limit >= 0 && p.pos-start >= limit
}
