// Package binder turns the unbound formula AST (pkg/exprlang) into the
// BoundExpression the compiler embeds in a CompiledModel: every Variable
// node replaced by a state-index reference, every operator and call
// resolved to a concrete *funcs.Function, with arity and argument types
// checked once at bind time rather than on every simulation step (§3, §4.1,
// §4.4 step 4).
package binder

import (
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/variant"
)

// BoundExpr is the bound expression AST, a sum type mirroring exprlang.Expr
// but with variables resolved to state indices and calls resolved to
// Function handles.
type BoundExpr interface {
	boundNode()
	// ValueType reports the value type this node produces without
	// evaluating it, used both for bind-time signature checking of
	// enclosing calls and for diagnostics.
	ValueType() variant.Type
}

// BoundLiteral is a constant carried over unchanged from the unbound AST.
type BoundLiteral struct {
	Value variant.Value
}

// BoundVar references a slot in the simulation state array. Name is
// retained for error messages only; evaluation uses Index.
type BoundVar struct {
	Index     int
	ValueType variant.Type
	Name      string
}

// BoundUnary applies a resolved unary Function to X.
type BoundUnary struct {
	Fn *funcs.Function
	X  BoundExpr
}

// BoundBinary applies a resolved binary Function to X and Y.
type BoundBinary struct {
	Fn *funcs.Function
	X  BoundExpr
	Y  BoundExpr
}

// BoundCall applies a resolved, possibly variadic, Function to Args.
type BoundCall struct {
	Fn   *funcs.Function
	Args []BoundExpr
}

func (BoundLiteral) boundNode() {}
func (BoundVar) boundNode()     {}
func (BoundUnary) boundNode()   {}
func (BoundBinary) boundNode()  {}
func (BoundCall) boundNode()    {}

func (b BoundLiteral) ValueType() variant.Type { return b.Value.Type }
func (b BoundVar) ValueType() variant.Type     { return b.ValueType }
func (b BoundUnary) ValueType() variant.Type   { return b.Fn.Signature.ReturnType }
func (b BoundBinary) ValueType() variant.Type  { return b.Fn.Signature.ReturnType }
func (b BoundCall) ValueType() variant.Type    { return b.Fn.Signature.ReturnType }

// State is the flat simulation-state array a BoundExpr reads bound
// variables from, indexed by BoundVar.Index.
type State []variant.Value

// Get returns the value at index, or the zero Value if out of range
// (never expected once a model has compiled cleanly, but evaluation stays
// total rather than panicking).
func (s State) Get(index int) variant.Value {
	if index < 0 || index >= len(s) {
		return variant.Value{}
	}
	return s[index]
}

// Eval walks a BoundExpr against state, evaluating literals directly and
// dispatching every operator and call through its resolved Function.
func Eval(e BoundExpr, state State) (variant.Value, error) {
	switch x := e.(type) {
	case BoundLiteral:
		return x.Value, nil
	case BoundVar:
		return state.Get(x.Index), nil
	case BoundUnary:
		v, err := Eval(x.X, state)
		if err != nil {
			return variant.Value{}, err
		}
		return x.Fn.Call([]variant.Value{v})
	case BoundBinary:
		a, err := Eval(x.X, state)
		if err != nil {
			return variant.Value{}, err
		}
		b, err := Eval(x.Y, state)
		if err != nil {
			return variant.Value{}, err
		}
		return x.Fn.Call([]variant.Value{a, b})
	case BoundCall:
		args := make([]variant.Value, len(x.Args))
		for i, a := range x.Args {
			v, err := Eval(a, state)
			if err != nil {
				return variant.Value{}, err
			}
			args[i] = v
		}
		return x.Fn.Call(args)
	default:
		return variant.Value{}, &EvalError{Message: "unrecognised bound expression node"}
	}
}

// EvalError reports a failure that occurred while walking a BoundExpr at
// runtime (as opposed to a BindError, caught once at compile time).
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string { return e.Message }
