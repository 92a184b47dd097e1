package jsontree

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

// ErrNoDocument is returned when a conversion is handed a nil element, which
// is what a failed fastjson parse produces.
var ErrNoDocument = errors.New("jsontree: no document to convert")

// FromFastJSON deep-copies a read-only fastjson element into a mutable tree.
// Object member order is preserved, and numbers stay integers when the
// source text is an exact int64.
func FromFastJSON(el *fastjson.Value) (*Value, error) {
	return fromFastJSON(el, 0)
}

// FromParseResult converts the (element, error) pair returned by the
// fastjson parser. A parse error wins over the element, so the call composes
// directly: FromParseResult(p.Parse(text)).
func FromParseResult(el *fastjson.Value, err error) (*Value, error) {
	if err != nil {
		return nil, fmt.Errorf("jsontree: parse document: %w", err)
	}
	return FromFastJSON(el)
}

func fromFastJSON(el *fastjson.Value, depth int) (*Value, error) {
	if el == nil {
		return nil, ErrNoDocument
	}
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	switch el.Type() {
	case fastjson.TypeNull:
		return Null(), nil
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	case fastjson.TypeNumber:
		if i, err := el.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := el.Float64()
		if err != nil {
			return nil, fmt.Errorf("jsontree: convert number: %w", err)
		}
		return Float(f), nil
	case fastjson.TypeString:
		sb, err := el.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("jsontree: convert string: %w", err)
		}
		return String(string(sb)), nil
	case fastjson.TypeArray:
		items, err := el.Array()
		if err != nil {
			return nil, fmt.Errorf("jsontree: convert array: %w", err)
		}
		arr := NewArray()
		for _, item := range items {
			child, err := fromFastJSON(item, depth+1)
			if err != nil {
				return nil, err
			}
			arr.arr = append(arr.arr, child)
		}
		return arr, nil
	case fastjson.TypeObject:
		src, err := el.Object()
		if err != nil {
			return nil, fmt.Errorf("jsontree: convert object: %w", err)
		}
		obj := NewObject()
		var visitErr error
		src.Visit(func(key []byte, item *fastjson.Value) {
			if visitErr != nil {
				return
			}
			child, err := fromFastJSON(item, depth+1)
			if err != nil {
				visitErr = err
				return
			}
			obj.obj.Set(string(key), child)
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("jsontree: unsupported element type %s", el.Type())
	}
}
