package source

// Span identifies a half-open byte range [Start, End) within a buffer's
// content.
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span covering [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}
