package jsontree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMutation(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Set("first", Int(1)))
	require.NoError(t, obj.Set("second", Int(2)))
	require.NoError(t, obj.Set("third", Int(3)))
	assert.Equal(t, []string{"first", "second", "third"}, obj.Keys())

	// Replacing keeps the key's position in the member order.
	require.NoError(t, obj.Set("second", String("two")))
	assert.Equal(t, []string{"first", "second", "third"}, obj.Keys())
	second, ok := obj.Get("second")
	require.True(t, ok)
	assert.Equal(t, KindString, second.Kind())

	assert.True(t, obj.Delete("first"))
	assert.False(t, obj.Delete("first"))
	assert.Equal(t, []string{"second", "third"}, obj.Keys())

	arr := NewArray(Bool(true))
	require.NoError(t, arr.Append(Null()))
	require.Equal(t, 2, arr.Len())
	assert.True(t, arr.At(1).IsNull())
	assert.Nil(t, arr.At(2))
	assert.Nil(t, arr.At(-1))
}

func TestValueKindMismatch(t *testing.T) {
	v := Int(5)
	_, err := v.StringValue()
	require.Error(t, err)
	_, err = v.BoolValue()
	require.Error(t, err)

	f, err := v.FloatValue()
	require.NoError(t, err)
	assert.Equal(t, 5.0, f)

	_, err = Float(1.5).IntValue()
	require.Error(t, err)

	assert.Error(t, Null().Append(Int(1)))
	assert.Error(t, Null().Set("k", Int(1)))
}

func TestValueVisitOrder(t *testing.T) {
	obj := MustParseString(`{"z":1,"a":2,"m":3}`)
	var keys []string
	obj.Visit(func(key string, _ *Value) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []string{"z", "a", "m"}, keys)

	keys = keys[:0]
	obj.Visit(func(key string, _ *Value) bool {
		keys = append(keys, key)
		return false
	})
	assert.Equal(t, []string{"z"}, keys)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(MustParseString(`{"a":[1,2]}`), MustParseString(`{"a":[1,2]}`)))

	// Member order is part of the value.
	assert.False(t, Equal(MustParseString(`{"a":1,"b":2}`), MustParseString(`{"b":2,"a":1}`)))

	// Integer and float are distinct kinds even for the same magnitude.
	assert.False(t, Equal(Int(1), Float(1)))
	assert.False(t, Equal(MustParseString("1"), MustParseString("1.0")))

	assert.False(t, Equal(Null(), Bool(false)))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(Null(), nil))
}

func TestEncodeFloats(t *testing.T) {
	b, err := Float(5).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "5.0", string(b))

	b, err = Float(0.25).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "0.25", string(b))

	_, err = Float(math.NaN()).MarshalJSON()
	require.Error(t, err)
	_, err = NewArray(Float(math.Inf(1))).MarshalJSON()
	require.Error(t, err)
}

func TestEncodeEscaping(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Set("msg", String("line1\nline2\t\"quoted\"")))
	b, err := obj.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"line1\nline2\t\"quoted\""}`, string(b))
}

func TestStringRendering(t *testing.T) {
	v := MustParseString(`{"a":1,"b":[true,null,"x"]}`)
	assert.Equal(t, `{"a":1,"b":[true,null,"x"]}`, v.String())
}
