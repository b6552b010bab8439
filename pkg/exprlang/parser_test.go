package exprlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockflow/sdsim/pkg/variant"
)

func TestParse_Literals(t *testing.T) {
	e, err := Parse("42")
	require.NoError(t, err)
	assert.Equal(t, Literal{Value: variant.Int(42)}, e)

	e, err = Parse("3.5")
	require.NoError(t, err)
	assert.Equal(t, Literal{Value: variant.Double(3.5)}, e)
}

func TestParse_VariableAndCall(t *testing.T) {
	e, err := Parse("inflow_rate")
	require.NoError(t, err)
	assert.Equal(t, Variable{Name: "inflow_rate"}, e)

	e, err = Parse("max(a, b, 3)")
	require.NoError(t, err)
	call, ok := e.(Call)
	require.True(t, ok)
	assert.Equal(t, "max", call.Name)
	assert.Len(t, call.Args, 3)
}

func TestParse_Precedence(t *testing.T) {
	e, err := Parse("1 + 2 * 3")
	require.NoError(t, err)
	bin, ok := e.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Op)
	rhs, ok := bin.Y.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpMul, rhs.Op)
}

func TestParse_Parentheses(t *testing.T) {
	e, err := Parse("(1 + 2) * 3")
	require.NoError(t, err)
	bin, ok := e.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpMul, bin.Op)
	_, ok = bin.X.(Binary)
	require.True(t, ok)
}

func TestParse_UnaryMinus(t *testing.T) {
	e, err := Parse("-x + 1")
	require.NoError(t, err)
	bin, ok := e.(Binary)
	require.True(t, ok)
	un, ok := bin.X.(Unary)
	require.True(t, ok)
	assert.Equal(t, OpNeg, un.Op)
}

func TestParse_Comparison(t *testing.T) {
	e, err := Parse("x >= 10")
	require.NoError(t, err)
	bin, ok := e.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpGe, bin.Op)
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := []string{"", "1 +", "(1 + 2", "1 2", "max(1,"}
	for _, c := range cases {
		_, err := Parse(c)
		assert.Errorf(t, err, "expected error for %q", c)
		var synErr *SyntaxError
		assert.ErrorAs(t, err, &synErr)
	}
}

func TestFreeVars(t *testing.T) {
	e, err := Parse("a + b * max(c, a)")
	require.NoError(t, err)
	vars := FreeVars(e)
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, vars)
}

// TestUnparseRoundTrip covers the round-trip property: reparsing Unparse's
// output yields an expression with identical free variables and structure
// (evaluates identically on every state, regardless of source formatting).
func TestUnparseRoundTrip(t *testing.T) {
	inputs := []string{
		"1 + 2 * 3",
		"(a - b) / c",
		"max(a, min(b, c))",
		"-x + 1",
		"a == b",
	}
	for _, in := range inputs {
		e, err := Parse(in)
		require.NoError(t, err)
		text := Unparse(e)
		e2, err := Parse(text)
		require.NoErrorf(t, err, "reparsing %q (from %q)", text, in)
		assert.Equal(t, FreeVars(e), FreeVars(e2))
		assert.Equal(t, e, e2, "unparse/reparse should be structurally stable for %q", in)
	}
}
