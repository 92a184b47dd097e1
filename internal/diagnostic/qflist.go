package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// qflistEntry is one object in the quickfix list dialect. Field order is the
// emitted key order. col/end_col count bytes from 1; end positions are
// exclusive.
type qflistEntry struct {
	Col      int    `json:"col"`
	Lnum     int    `json:"lnum"`
	EndCol   int    `json:"end_col"`
	EndLnum  int    `json:"end_lnum"`
	Type     string `json:"type"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

type qflistDocument struct {
	Qflist []qflistEntry `json:"qflist"`
}

// QflistJSONReporter serializes diagnostics as a {"qflist":[...]} JSON
// document written to w when Finish is called. The list is emitted in report
// order and is present, possibly empty, in every document.
type QflistJSONReporter struct {
	w       io.Writer
	label   string
	locator *source.Locator
	entries []qflistEntry
	errors  int
}

// NewQflistJSONReporter returns a reporter writing its final document to w.
func NewQflistJSONReporter(w io.Writer) *QflistJSONReporter {
	return &QflistJSONReporter{
		w:       w,
		entries: []qflistEntry{},
	}
}

// SetSource binds the buffer and file label used for subsequent reports.
func (r *QflistJSONReporter) SetSource(buf *source.PaddedBuffer, label string) {
	r.locator = source.NewLocator(buf)
	r.label = label
}

// Report records one diagnostic. SetSource must have been called first.
func (r *QflistJSONReporter) Report(d Diagnostic) {
	start, end := r.locator.SpanPositions(d.Span)
	r.entries = append(r.entries, qflistEntry{
		Col:      start.Column,
		Lnum:     start.Line,
		EndCol:   end.Column,
		EndLnum:  end.Line,
		Type:     d.Severity.QflistType(),
		Text:     d.Message,
		Filename: r.label,
	})
	if d.Severity == SeverityError {
		r.errors++
	}
}

// Finish writes the complete document to the underlying writer.
func (r *QflistJSONReporter) Finish() error {
	data, err := json.Marshal(qflistDocument{Qflist: r.entries})
	if err != nil {
		return fmt.Errorf("encode qflist: %w", err)
	}
	if _, err := r.w.Write(data); err != nil {
		return fmt.Errorf("write qflist: %w", err)
	}
	return nil
}

// ErrorCount returns how many error-severity diagnostics were reported.
func (r *QflistJSONReporter) ErrorCount() int {
	return r.errors
}
