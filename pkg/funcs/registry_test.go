package funcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockflow/sdsim/pkg/variant"
)

func TestBuiltinTable_Arithmetic(t *testing.T) {
	tbl := NewBuiltinTable()

	add, ok := tbl.Lookup(OpAdd)
	require.True(t, ok)
	v, err := add.Call([]variant.Value{variant.Double(2), variant.Double(3)})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.Double)

	div, ok := tbl.Lookup(OpDiv)
	require.True(t, ok)
	_, err = div.Call([]variant.Value{variant.Double(1), variant.Double(0)})
	assert.Error(t, err)
}

func TestBuiltinTable_InvalidArity(t *testing.T) {
	tbl := NewBuiltinTable()
	abs, ok := tbl.Lookup("abs")
	require.True(t, ok)
	_, err := abs.Call([]variant.Value{variant.Double(1), variant.Double(2)})
	require.Error(t, err)
	var sigErr *SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, ErrInvalidArity, sigErr.Kind)
}

func TestBuiltinTable_TypeMismatch(t *testing.T) {
	tbl := NewBuiltinTable()
	add, ok := tbl.Lookup(OpAdd)
	require.True(t, ok)
	_, err := add.Call([]variant.Value{variant.String("x"), variant.Double(2)})
	require.Error(t, err)
	var sigErr *SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, ErrTypeMismatch, sigErr.Kind)
	assert.Equal(t, []int{0}, sigErr.Positions)
}

func TestBuiltinTable_Variadic(t *testing.T) {
	tbl := NewBuiltinTable()
	sum, ok := tbl.Lookup("sum")
	require.True(t, ok)
	v, err := sum.Call([]variant.Value{variant.Double(1), variant.Double(2), variant.Double(3)})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v.Double)

	max, ok := tbl.Lookup("max")
	require.True(t, ok)
	_, err = max.Call(nil)
	require.Error(t, err)
}

func TestBuiltinTable_Comparison(t *testing.T) {
	tbl := NewBuiltinTable()
	lt, ok := tbl.Lookup(OpLt)
	require.True(t, ok)
	v, err := lt.Call([]variant.Value{variant.Double(1), variant.Double(2)})
	require.NoError(t, err)
	assert.Equal(t, variant.TypeBool, v.Type)
	assert.True(t, v.Bool)
}
