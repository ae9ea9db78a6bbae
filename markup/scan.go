package markup

import (
	"slices"

	"github.com/dhamidi/markscan/stream"
)

// scanState is what one Find has learned about its text. Each memo lets a
// later attempt that is bound to fail the same way as an earlier one stop
// without searching the same region again, which keeps Find linear.
type scanState struct {
	p *stream.Parser

	brackets nextIndex
	parens   nextIndex

	// bracketSkip is the "]" of the last failed inline link. Any "[" at
	// or before it fails the same way.
	bracketSkip int

	// bare is the last bare destination read inside parentheses. A
	// destination starting strictly inside it reads to the same end.
	bare stream.Span

	// angle runs from the last "<" destination to where the search for
	// its ">" stopped.
	angle stream.Span

	fences *fenceIndex
}

func newScanState(p *stream.Parser) *scanState {
	return &scanState{
		p:           p,
		brackets:    nextIndex{target: ']'},
		parens:      nextIndex{target: ')'},
		bracketSkip: -1,
		bare:        stream.Span{Start: -1, End: -1},
		angle:       stream.Span{Start: -1, End: -1},
	}
}

// nextIndex memoizes the offset of the first target at or after a query
// offset. Queries with increasing offsets touch each code unit once.
type nextIndex struct {
	target rune
	from   int
	at     int
	valid  bool
}

// next returns the first target at or after the cursor, or -1.
func (n *nextIndex) next(p *stream.Parser) int {
	q := p.Position()
	if n.valid && q >= n.from && (n.at < 0 || q <= n.at) {
		return n.at
	}
	n.from, n.at, n.valid = q, p.Index(n.target), true
	return n.at
}

// fenceIndex lists the backtick runs of a text.
type fenceIndex struct {
	starts []int
	// longest[i] is the longest run starting at or after starts[i].
	longest []int
}

// indexFences records every backtick run from the cursor on. The cursor
// is left where it was.
func indexFences(p *stream.Parser) *fenceIndex {
	m := p.Mark()
	defer p.Reset(m)

	f := &fenceIndex{}
	for {
		i := p.Index('`')
		if i < 0 {
			break
		}
		p.SetPosition(i)
		f.starts = append(f.starts, i)
		f.longest = append(f.longest, len(p.ReadRun('`', stream.Unbounded)))
	}
	for i := len(f.longest) - 2; i >= 0; i-- {
		f.longest[i] = max(f.longest[i], f.longest[i+1])
	}
	return f
}

// closes reports whether a run of at least n backticks starts at or after
// offset.
func (f *fenceIndex) closes(offset, n int) bool {
	i, _ := slices.BinarySearch(f.starts, offset)
	return i < len(f.starts) && f.longest[i] >= n
}
