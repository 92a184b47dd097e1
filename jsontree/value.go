// Package jsontree provides a mutable JSON tree value and parsers for
// building one from text or from an already-parsed read-only document.
//
// Object members keep their insertion order, and integer and floating-point
// numbers are distinct kinds, so a document round-trips through the tree with
// its key order and numeric subtypes intact.
package jsontree

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind enumerates the JSON value categories held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is one node of a mutable JSON tree. Containers exclusively own their
// children; sharing a child between two parents is not supported.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []*Value
	obj  *orderedmap.OrderedMap[string, *Value]
}

// Null returns a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, b: b}
}

// Int returns an integer number value.
func Int(i int64) *Value {
	return &Value{kind: KindInt, i: i}
}

// Float returns a floating-point number value.
func Float(f float64) *Value {
	return &Value{kind: KindFloat, f: f}
}

// String returns a string value.
func String(s string) *Value {
	return &Value{kind: KindString, s: s}
}

// NewArray returns an array value holding the given children.
func NewArray(children ...*Value) *Value {
	arr := make([]*Value, 0, len(children))
	arr = append(arr, children...)
	return &Value{kind: KindArray, arr: arr}
}

// NewObject returns an empty object value.
func NewObject() *Value {
	return &Value{kind: KindObject, obj: orderedmap.New[string, *Value]()}
}

// Kind returns the value's category.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is JSON null.
func (v *Value) IsNull() bool {
	return v.kind == KindNull
}

// BoolValue returns the boolean content.
func (v *Value) BoolValue() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("jsontree: value is %s, not bool", v.kind)
	}
	return v.b, nil
}

// IntValue returns the integer content. Floating-point values do not
// implicitly truncate; convert through FloatValue instead.
func (v *Value) IntValue() (int64, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("jsontree: value is %s, not int", v.kind)
	}
	return v.i, nil
}

// FloatValue returns the numeric content as a float64. Integer values
// convert; all other kinds fail.
func (v *Value) FloatValue() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	default:
		return 0, fmt.Errorf("jsontree: value is %s, not a number", v.kind)
	}
}

// StringValue returns the string content.
func (v *Value) StringValue() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("jsontree: value is %s, not string", v.kind)
	}
	return v.s, nil
}

// Len returns the number of children of an array or object, and 0 for any
// other kind.
func (v *Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// At returns the array element at index i, or nil when the value is not an
// array or the index is out of range.
func (v *Value) At(i int) *Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

// Items returns the array's children. Callers must not grow the slice.
func (v *Value) Items() []*Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Append adds a child to the end of an array value.
func (v *Value) Append(child *Value) error {
	if v.kind != KindArray {
		return fmt.Errorf("jsontree: cannot append to %s", v.kind)
	}
	v.arr = append(v.arr, child)
	return nil
}

// Get returns the object member named key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj.Get(key)
}

// Set inserts or replaces the object member named key. A new key is appended
// at the end of the member order; replacing keeps the key's position.
func (v *Value) Set(key string, child *Value) error {
	if v.kind != KindObject {
		return fmt.Errorf("jsontree: cannot set member on %s", v.kind)
	}
	v.obj.Set(key, child)
	return nil
}

// Delete removes the object member named key and reports whether it existed.
func (v *Value) Delete(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj.Delete(key)
	return ok
}

// Keys returns the object's keys in member order.
func (v *Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Visit calls fn for each object member in order, stopping early when fn
// returns false.
func (v *Value) Visit(fn func(key string, child *Value) bool) {
	if v.kind != KindObject {
		return
	}
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Equal reports whether two values have the same structure, including object
// member order and the integer/float distinction.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		pa, pb := a.obj.Oldest(), b.obj.Oldest()
		for pa != nil && pb != nil {
			if pa.Key != pb.Key || !Equal(pa.Value, pb.Value) {
				return false
			}
			pa, pb = pa.Next(), pb.Next()
		}
		return pa == nil && pb == nil
	default:
		return false
	}
}
