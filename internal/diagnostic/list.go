package diagnostic

import (
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// Located is a diagnostic together with its resolved start and end positions.
type Located struct {
	Diagnostic
	Start source.Position
	End   source.Position
}

// ListReporter collects located diagnostics for programmatic consumers such
// as the language server.
type ListReporter struct {
	locator *source.Locator
	located []Located
}

// NewListReporter returns an empty collecting reporter.
func NewListReporter() *ListReporter {
	return &ListReporter{}
}

// SetSource binds the buffer used for position lookup. The label is unused;
// list consumers already know which input they linted.
func (r *ListReporter) SetSource(buf *source.PaddedBuffer, label string) {
	r.locator = source.NewLocator(buf)
}

// Report records one diagnostic with resolved positions.
func (r *ListReporter) Report(d Diagnostic) {
	start, end := r.locator.SpanPositions(d.Span)
	r.located = append(r.located, Located{Diagnostic: d, Start: start, End: end})
}

// Finish is a no-op; the collected list is available through Diagnostics.
func (r *ListReporter) Finish() error {
	return nil
}

// Diagnostics returns the collected findings in report order.
func (r *ListReporter) Diagnostics() []Located {
	return r.located
}
