package source

// PaddingSize is the number of zero bytes kept after the end of the content
// so downstream scanners can read a fixed lookahead without a bounds check.
const PaddingSize = 64

// PaddedBuffer is an immutable byte sequence followed by PaddingSize zero
// bytes. Offsets and spans always refer to the content; the padding is never
// part of anything reported to callers.
type PaddedBuffer struct {
	data []byte
	size int
}

// NewPaddedBuffer copies content into a fresh buffer with trailing padding.
func NewPaddedBuffer(content []byte) *PaddedBuffer {
	data := make([]byte, len(content)+PaddingSize)
	copy(data, content)
	return &PaddedBuffer{data: data, size: len(content)}
}

// NewPaddedBufferString is NewPaddedBuffer for string input.
func NewPaddedBufferString(content string) *PaddedBuffer {
	return NewPaddedBuffer([]byte(content))
}

// Bytes returns the content without padding. Callers must not modify it.
func (b *PaddedBuffer) Bytes() []byte {
	return b.data[:b.size]
}

// Padded returns the content plus the trailing padding bytes.
func (b *PaddedBuffer) Padded() []byte {
	return b.data
}

// Len returns the content length in bytes, excluding padding.
func (b *PaddedBuffer) Len() int {
	return b.size
}

// String returns the content as a string.
func (b *PaddedBuffer) String() string {
	return string(b.data[:b.size])
}
