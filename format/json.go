package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/markscan/markup"
	"github.com/dhamidi/markscan/stream"
)

type JSONEncoder struct {
	w      io.Writer
	report *Report
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(r *Report) error {
	e.report = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildReportData(), "", "  ")
}

type jsonReport struct {
	File  string     `json:"file"`
	Links []jsonLink `json:"links"`
}

type jsonLink struct {
	markup.Link
	Start stream.Location `json:"start"`
	End   stream.Location `json:"end"`
}

func (e *JSONEncoder) buildReportData() jsonReport {
	r := e.report
	data := jsonReport{
		File:  r.File,
		Links: make([]jsonLink, 0, len(r.Links)),
	}
	for _, l := range r.Links {
		data.Links = append(data.Links, jsonLink{
			Link:  l,
			Start: r.Lines.Locate(l.Span.Start),
			End:   r.Lines.Locate(l.Span.End),
		})
	}
	return data
}
