package stream

import "unicode/utf16"

// CharSet is a predicate over single UTF-16 code units. A surrogate code
// unit never belongs to a CharSet.
type CharSet func(r rune) bool

// Contains reports whether r is a member of the set.
func (c CharSet) Contains(r rune) bool {
	if c == nil || utf16.IsSurrogate(r) {
		return false
	}
	return c(r)
}

// CharsOf returns the set of characters in s.
func CharsOf(s string) CharSet {
	members := make(map[rune]struct{}, len(s))
	for _, r := range s {
		members[r] = struct{}{}
	}
	return func(r rune) bool {
		_, ok := members[r]
		return ok
	}
}

// Not returns the complement of c.
func Not(c CharSet) CharSet {
	return func(r rune) bool {
		return !c.Contains(r)
	}
}

// Union returns the set of characters in any of sets.
func Union(sets ...CharSet) CharSet {
	return func(r rune) bool {
		for _, s := range sets {
			if s.Contains(r) {
				return true
			}
		}
		return false
	}
}

var (
	// Whitespace is space and horizontal tab.
	Whitespace CharSet = func(r rune) bool { return r == ' ' || r == '\t' }

	// Newline is the line feed.
	Newline CharSet = func(r rune) bool { return r == '\n' }

	// WhitespaceOrNewline is space, tab, carriage return and line feed.
	WhitespaceOrNewline CharSet = func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n'
	}

	// DecimalDigits is the ASCII digits 0 through 9.
	DecimalDigits CharSet = func(r rune) bool { return r >= '0' && r <= '9' }

	// Controls is the ASCII control characters including DEL.
	Controls CharSet = func(r rune) bool { return r < 0x20 || r == 0x7F }
)
