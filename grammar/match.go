package grammar

import (
	"golang.org/x/exp/ebnf"
)

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// Matcher matches text against the productions of a grammar.
type Matcher struct {
	grammar  ebnf.Grammar
	input    []rune
	memo     map[memoKey]int  // match length, -1 for no match
	visiting map[memoKey]bool // cycle detection
}

// NewMatcher returns a matcher over g.
func NewMatcher(g ebnf.Grammar) *Matcher {
	return &Matcher{grammar: g}
}

// Match returns the length in runes of the longest prefix of input that
// production derives, or -1 if it derives none. A production that derives
// the empty string returns 0.
func (m *Matcher) Match(production, input string) int {
	m.input = []rune(input)
	m.memo = make(map[memoKey]int)
	m.visiting = make(map[memoKey]bool)

	return m.matchName(production, 0)
}

// MatchAll reports whether production derives exactly input.
func (m *Matcher) MatchAll(production, input string) bool {
	return m.Match(production, input) == len([]rune(input))
}

// tryMatch attempts to match an expression at offset and returns the
// length of the match, or -1.
func (m *Matcher) tryMatch(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case nil:
		return 0

	case *ebnf.Token:
		return m.matchToken(e.String, offset)

	case *ebnf.Range:
		return m.matchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		pos := offset
		for _, item := range e {
			n := m.tryMatch(item, pos)
			if n < 0 {
				return -1
			}
			pos += n
		}
		return pos - offset

	case ebnf.Alternative:
		best := -1
		for _, alt := range e {
			if n := m.tryMatch(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		pos := offset
		for {
			n := m.tryMatch(e.Body, pos)
			if n <= 0 {
				break
			}
			pos += n
		}
		return pos - offset

	case *ebnf.Option:
		if n := m.tryMatch(e.Body, offset); n > 0 {
			return n
		}
		return 0

	case *ebnf.Group:
		return m.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return m.matchName(e.String, offset)

	default:
		return -1
	}
}

// matchName matches a named production with memoization and cycle
// detection.
func (m *Matcher) matchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}
	if result, ok := m.memo[key]; ok {
		return result
	}

	// Left recursion: fail this branch.
	if m.visiting[key] {
		return -1
	}

	prod, ok := m.grammar[name]
	if !ok {
		m.memo[key] = -1
		return -1
	}

	m.visiting[key] = true
	result := m.tryMatch(prod.Expr, offset)
	delete(m.visiting, key)

	m.memo[key] = result
	return result
}

func (m *Matcher) matchToken(token string, offset int) int {
	lit := []rune(token)
	if offset+len(lit) > len(m.input) {
		return -1
	}
	for i, r := range lit {
		if m.input[offset+i] != r {
			return -1
		}
	}
	return len(lit)
}

func (m *Matcher) matchRange(begin, end string, offset int) int {
	if offset >= len(m.input) {
		return -1
	}
	lo, hi := []rune(begin), []rune(end)
	if len(lo) != 1 || len(hi) != 1 {
		return -1
	}
	if r := m.input[offset]; r >= lo[0] && r <= hi[0] {
		return 1
	}
	return -1
}
