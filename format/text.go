package format

import (
	"bytes"
	"fmt"
	"io"
)

// TextEncoder writes one line per link in file:line:column form, with
// one-based lines and columns.
type TextEncoder struct {
	w      io.Writer
	report *Report
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(r *Report) error {
	e.report = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	r := e.report
	for _, l := range r.Links {
		loc := r.Lines.Locate(l.Span.Start)
		fmt.Fprintf(&buf, "%s:%d:%d: %s %s", r.File, loc.Line+1, loc.Character+1, l.Kind, l.Destination)
		if l.Title != "" {
			fmt.Fprintf(&buf, " %q", l.Title)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
