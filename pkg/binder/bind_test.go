package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockflow/sdsim/pkg/exprlang"
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/variant"
)

func symbols() MapSymbolTable {
	return MapSymbolTable{
		"inflow_rate": {Index: 0, Type: variant.TypeDouble},
		"cap":         {Index: 1, Type: variant.TypeDouble},
	}
}

func TestBind_VariableAndLiteral(t *testing.T) {
	tbl := funcs.NewBuiltinTable()
	e, err := exprlang.Parse("inflow_rate * 2")
	require.NoError(t, err)

	b, err := Bind(e, symbols(), tbl)
	require.NoError(t, err)

	bin, ok := b.(BoundBinary)
	require.True(t, ok)
	v, ok := bin.X.(BoundVar)
	require.True(t, ok)
	assert.Equal(t, 0, v.Index)

	result, err := Eval(b, State{variant.Double(3), variant.Double(10)})
	require.NoError(t, err)
	assert.Equal(t, 6.0, result.Double)
}

func TestBind_UnknownVariable(t *testing.T) {
	tbl := funcs.NewBuiltinTable()
	e, err := exprlang.Parse("nonexistent + 1")
	require.NoError(t, err)

	_, err = Bind(e, symbols(), tbl)
	require.Error(t, err)
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, ErrUnknownVariable, bindErr.Kind)
	assert.Equal(t, "nonexistent", bindErr.Name)
}

func TestBind_UnknownFunction(t *testing.T) {
	tbl := funcs.NewBuiltinTable()
	e, err := exprlang.Parse("frobnicate(cap)")
	require.NoError(t, err)

	_, err = Bind(e, symbols(), tbl)
	require.Error(t, err)
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, ErrUnknownFunction, bindErr.Kind)
}

func TestBind_InvalidArity(t *testing.T) {
	tbl := funcs.NewBuiltinTable()
	e, err := exprlang.Parse("abs(cap, inflow_rate)")
	require.NoError(t, err)

	_, err = Bind(e, symbols(), tbl)
	require.Error(t, err)
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, ErrSignature, bindErr.Kind)
}

func TestBind_ExtendedFunctionTable(t *testing.T) {
	// A Function added to a table with Extend is looked up exactly like a
	// builtin.
	gf := &funcs.Function{
		Name: "__gf_1__",
		Signature: funcs.Signature{
			ArgTypes:   []variant.Type{variant.TypeDouble},
			ReturnType: variant.TypeDouble,
		},
		Impl: func(args []variant.Value) (variant.Value, error) {
			return variant.Double(args[0].Double * 2), nil
		},
	}
	tbl := funcs.NewBuiltinTable().Extend(gf)

	e, err := exprlang.Parse("__gf_1__(cap)")
	require.NoError(t, err)

	b, err := Bind(e, symbols(), tbl)
	require.NoError(t, err)

	result, err := Eval(b, State{variant.Double(3), variant.Double(10)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Double)

	base := funcs.NewBuiltinTable()
	_, err = Bind(e, symbols(), base)
	assert.Error(t, err) // not registered in the unextended table
}
