package stream

import "sort"

// Location is a zero-based line and code-unit column.
type Location struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// LineIndex maps code-unit offsets to line and column.
type LineIndex struct {
	starts []int
	len    int
}

// Lines returns an index of the line starts in the parser's buffer.
func (p *Parser) Lines() *LineIndex {
	starts := []int{0}
	for i, u := range p.buf {
		if u == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, len: p.len}
}

// Locate returns the location of offset, clamped to the buffer.
func (x *LineIndex) Locate(offset int) Location {
	offset = max(0, min(offset, x.len))
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return Location{Line: line, Character: offset - x.starts[line]}
}

// LineCount returns the number of lines. A buffer always has at least one.
func (x *LineIndex) LineCount() int {
	return len(x.starts)
}
