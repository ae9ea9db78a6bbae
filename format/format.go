// Package format renders link reports for people and programs.
package format

import (
	"context"
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/markscan/markup"
	"github.com/dhamidi/markscan/stream"
)

// Report is the set of links found in one file.
type Report struct {
	File  string
	Links []markup.Link
	Lines *stream.LineIndex
}

// NewReport finds the links in text with d.
func NewReport(file, text string, d *markup.Detector) *Report {
	r, _ := NewReportContext(context.Background(), file, text, d)
	return r
}

// NewReportContext is NewReport that stops once ctx is done.
func NewReportContext(ctx context.Context, file, text string, d *markup.Detector) (*Report, error) {
	links, err := d.FindContext(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Report{
		File:  file,
		Links: links,
		Lines: stream.New(text).Lines(),
	}, nil
}

type Encoder interface {
	encoding.TextMarshaler
	Encode(r *Report) error
}

// NewEncoder returns the encoder registered for name.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "text":
		return NewTextEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", name)
	}
}
