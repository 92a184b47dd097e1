package source

import "sort"

// Position is a 1-based line and column. Columns count bytes, matching the
// quickfix convention.
type Position struct {
	Line   int
	Column int
}

// Locator converts byte offsets within a PaddedBuffer into positions.
// The line table is built on first use. A Locator is not safe for concurrent
// use; each reporting pass builds its own.
type Locator struct {
	buf        *PaddedBuffer
	lineStarts []int
}

// NewLocator returns a Locator for buf.
func NewLocator(buf *PaddedBuffer) *Locator {
	return &Locator{buf: buf}
}

// Position returns the 1-based line and column for a byte offset. Offsets
// outside the content are clamped to its bounds, so the end-of-content offset
// localizes to just past the last byte.
func (l *Locator) Position(offset int) Position {
	if l.lineStarts == nil {
		l.build()
	}
	if offset < 0 {
		offset = 0
	}
	if offset > l.buf.Len() {
		offset = l.buf.Len()
	}
	// Index of the last line start at or before offset.
	idx := sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
	return Position{Line: idx + 1, Column: offset - l.lineStarts[idx] + 1}
}

// SpanPositions returns the start and end positions of a span.
func (l *Locator) SpanPositions(s Span) (Position, Position) {
	return l.Position(s.Start), l.Position(s.End)
}

func (l *Locator) build() {
	content := l.buf.Bytes()
	l.lineStarts = make([]int, 1, 16)
	for i, c := range content {
		if c == '\n' {
			l.lineStarts = append(l.lineStarts, i+1)
		}
	}
}
