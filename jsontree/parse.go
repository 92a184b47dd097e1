package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxDepth bounds container nesting during parsing so a deeply nested
// document cannot exhaust the goroutine stack.
const maxDepth = 512

// ErrTooDeep is returned when a document nests containers beyond maxDepth.
var ErrTooDeep = errors.New("jsontree: document nests too deeply")

// ParseError describes a syntactically invalid document. Offset is the byte
// position in the input where parsing stopped.
type ParseError struct {
	Msg    string
	Offset int64
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("jsontree: parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads one complete JSON document from r and builds a tree from it.
// Input after the document is an error.
func Parse(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := parseValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Msg: "trailing data after document", Offset: dec.InputOffset()}
	}
	return v, nil
}

// ParseString parses a complete JSON document held in a string.
func ParseString(s string) (*Value, error) {
	return Parse(strings.NewReader(s))
}

// ParseBytes parses a complete JSON document held in a byte slice.
func ParseBytes(b []byte) (*Value, error) {
	return Parse(bytes.NewReader(b))
}

// MustParse is like Parse but panics on malformed input. It suits inputs the
// caller already knows are valid, such as compiled-in fixtures.
func MustParse(r io.Reader) *Value {
	v, err := Parse(r)
	if err != nil {
		panic(err)
	}
	return v
}

// MustParseString is like ParseString but panics on malformed input.
func MustParseString(s string) *Value {
	v, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseValue(dec *json.Decoder, depth int) (*Value, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, wrapTokenError(dec, err)
	}
	return parseToken(dec, tok, depth)
}

func parseToken(dec *json.Decoder, tok json.Token, depth int) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return parseNumber(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			return parseArray(dec, depth)
		case '{':
			return parseObject(dec, depth)
		}
	}
	return nil, &ParseError{Msg: fmt.Sprintf("unexpected token %v", tok), Offset: dec.InputOffset()}
}

// parseNumber keeps integers exact and falls back to floating point for
// values with a fraction, an exponent, or more than 64 bits.
func parseNumber(n json.Number) *Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	f, err := n.Float64()
	if err != nil {
		// UseNumber only yields syntactically valid numbers, and every
		// valid JSON number has a float64 approximation.
		f = 0
	}
	return Float(f)
}

func parseArray(dec *json.Decoder, depth int) (*Value, error) {
	arr := NewArray()
	for dec.More() {
		child, err := parseValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		arr.arr = append(arr.arr, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, wrapTokenError(dec, err)
	}
	return arr, nil
}

func parseObject(dec *json.Decoder, depth int) (*Value, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, wrapTokenError(dec, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &ParseError{Msg: fmt.Sprintf("object key is %v, not a string", tok), Offset: dec.InputOffset()}
		}
		child, err := parseValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		obj.obj.Set(key, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, wrapTokenError(dec, err)
	}
	return obj, nil
}

func wrapTokenError(dec *json.Decoder, err error) error {
	if err == io.EOF {
		return &ParseError{Msg: "unexpected end of input", Offset: dec.InputOffset()}
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return &ParseError{Msg: syn.Error(), Offset: syn.Offset}
	}
	return fmt.Errorf("jsontree: read input: %w", err)
}
