package diagnostic

import (
	"github.com/A-thanasios/quick-lint-js/internal/source"
)

// Severity classifies how serious a diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// QflistType returns the single-letter type code used by the quickfix list
// format.
func (s Severity) QflistType() string {
	switch s {
	case SeverityWarning:
		return "W"
	case SeverityNote:
		return "N"
	default:
		return "E"
	}
}

// Code identifies a diagnostic rule, such as "E013".
type Code string

// Severity returns the severity implied by the code's leading letter.
func (c Code) Severity() Severity {
	if len(c) > 0 {
		switch c[0] {
		case 'W':
			return SeverityWarning
		case 'N':
			return SeverityNote
		}
	}
	return SeverityError
}

// Diagnostic is a single finding produced while parsing or linting.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Span     source.Span
}

// Reporter accumulates diagnostics during a parse and lint pass.
//
// SetSource binds the buffer used for position lookup and the label reported
// as the finding's file name; it must be called before the first Report and
// may be called again to switch to another input (multi-file runs reuse one
// reporter so the output is a single combined report). Finish must be called
// exactly once after the last Report, even when nothing was reported: the
// serialized forms always emit a well-formed, possibly empty report.
type Reporter interface {
	SetSource(buf *source.PaddedBuffer, label string)
	Report(d Diagnostic)
	Finish() error
}
