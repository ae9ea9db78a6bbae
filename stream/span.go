package stream

import "fmt"

// Span is a half-open range [Start, End) of code-unit offsets.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of code units covered.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Empty reports whether the span covers nothing.
func (s Span) Empty() bool {
	return s.Len() == 0
}

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// SpanFrom returns the span from m to the current cursor.
func (p *Parser) SpanFrom(m Mark) Span {
	return Span{Start: int(m), End: p.pos}
}
