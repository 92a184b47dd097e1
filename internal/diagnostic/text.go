package diagnostic

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/A-thanasios/quick-lint-js/internal/source"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	noteLabel    = color.New(color.FgCyan)
)

// TextReporter prints human-readable one-line findings as they are reported:
//
//	file.js:3:5: error: use of undeclared variable: x [E013]
//
// Severity labels are colored when the writer is a terminal.
type TextReporter struct {
	w        io.Writer
	label    string
	locator  *source.Locator
	errors   int
	warnings int
}

// NewTextReporter returns a reporter printing findings to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// SetSource binds the buffer and file label used for subsequent reports.
func (r *TextReporter) SetSource(buf *source.PaddedBuffer, label string) {
	r.locator = source.NewLocator(buf)
	r.label = label
}

// Report prints one diagnostic line.
func (r *TextReporter) Report(d Diagnostic) {
	pos := r.locator.Position(d.Span.Start)
	severity := d.Severity.String()
	switch d.Severity {
	case SeverityWarning:
		severity = warningLabel.Sprint(severity)
		r.warnings++
	case SeverityNote:
		severity = noteLabel.Sprint(severity)
	default:
		severity = errorLabel.Sprint(severity)
		r.errors++
	}
	fmt.Fprintf(r.w, "%s:%d:%d: %s: %s [%s]\n",
		r.label, pos.Line, pos.Column, severity, d.Message, d.Code)
}

// Finish is a no-op for the text form; lines are written as reported.
func (r *TextReporter) Finish() error {
	return nil
}

// ErrorCount returns how many error-severity diagnostics were reported.
func (r *TextReporter) ErrorCount() int {
	return r.errors
}

// WarningCount returns how many warning-severity diagnostics were reported.
func (r *TextReporter) WarningCount() int {
	return r.warnings
}
