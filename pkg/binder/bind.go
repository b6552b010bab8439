package binder

import (
	"fmt"

	"github.com/stockflow/sdsim/pkg/exprlang"
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/variant"
)

// SymbolTable resolves a free variable name (as collected by
// exprlang.FreeVars) to the state-array index and declared value type the
// compiler has allocated for it. Built fresh per compiled model; see
// pkg/compiler.
type SymbolTable interface {
	Resolve(name string) (index int, valueType variant.Type, ok bool)
}

// BindErrorKind distinguishes why a formula failed to bind.
type BindErrorKind int

const (
	ErrUnknownVariable BindErrorKind = iota
	ErrUnknownFunction
	ErrSignature
)

// BindError reports a name the binder could not resolve, or a call whose
// arguments do not match its Function's Signature. Unlike exprlang.SyntaxError
// (malformed text) this fires on well-formed text that references the
// wrong things.
type BindError struct {
	Kind  BindErrorKind
	Name  string
	Cause error
}

func (e *BindError) Error() string {
	switch e.Kind {
	case ErrUnknownVariable:
		return fmt.Sprintf("unknown variable %q", e.Name)
	case ErrUnknownFunction:
		return fmt.Sprintf("unknown function %q", e.Name)
	case ErrSignature:
		return fmt.Sprintf("call to %q: %v", e.Name, e.Cause)
	default:
		return fmt.Sprintf("cannot bind %q", e.Name)
	}
}

func (e *BindError) Unwrap() error { return e.Cause }

// Bind resolves every Variable in e against symbols and every operator or
// call against functions, producing the BoundExpr the compiler stores on
// the CompiledModel. Signature mismatches (wrong arity, wrong argument
// types) are caught here rather than deferred to evaluation time.
func Bind(e exprlang.Expr, symbols SymbolTable, functions *funcs.Table) (BoundExpr, error) {
	switch x := e.(type) {
	case exprlang.Literal:
		return BoundLiteral{Value: x.Value}, nil

	case exprlang.Variable:
		idx, vt, ok := symbols.Resolve(x.Name)
		if !ok {
			return nil, &BindError{Kind: ErrUnknownVariable, Name: x.Name}
		}
		return BoundVar{Index: idx, ValueType: vt, Name: x.Name}, nil

	case exprlang.Unary:
		bx, err := Bind(x.X, symbols, functions)
		if err != nil {
			return nil, err
		}
		fn, ok := functions.Lookup(x.Op)
		if !ok {
			return nil, &BindError{Kind: ErrUnknownFunction, Name: x.Op}
		}
		if err := fn.Signature.Validate(x.Op, []variant.Type{bx.ValueType()}); err != nil {
			return nil, &BindError{Kind: ErrSignature, Name: x.Op, Cause: err}
		}
		return BoundUnary{Fn: fn, X: bx}, nil

	case exprlang.Binary:
		bx, err := Bind(x.X, symbols, functions)
		if err != nil {
			return nil, err
		}
		by, err := Bind(x.Y, symbols, functions)
		if err != nil {
			return nil, err
		}
		fn, ok := functions.Lookup(x.Op)
		if !ok {
			return nil, &BindError{Kind: ErrUnknownFunction, Name: x.Op}
		}
		argTypes := []variant.Type{bx.ValueType(), by.ValueType()}
		if err := fn.Signature.Validate(x.Op, argTypes); err != nil {
			return nil, &BindError{Kind: ErrSignature, Name: x.Op, Cause: err}
		}
		return BoundBinary{Fn: fn, X: bx, Y: by}, nil

	case exprlang.Call:
		fn, ok := functions.Lookup(x.Name)
		if !ok {
			return nil, &BindError{Kind: ErrUnknownFunction, Name: x.Name}
		}
		args := make([]BoundExpr, len(x.Args))
		argTypes := make([]variant.Type, len(x.Args))
		for i, a := range x.Args {
			ba, err := Bind(a, symbols, functions)
			if err != nil {
				return nil, err
			}
			args[i] = ba
			argTypes[i] = ba.ValueType()
		}
		if err := fn.Signature.Validate(x.Name, argTypes); err != nil {
			return nil, &BindError{Kind: ErrSignature, Name: x.Name, Cause: err}
		}
		return BoundCall{Fn: fn, Args: args}, nil

	default:
		return nil, &BindError{Kind: ErrUnknownFunction, Name: fmt.Sprintf("%T", e)}
	}
}

// MapSymbolTable is a simple SymbolTable backed by a name->(index,type)
// map, sufficient for tests and for the compiler's per-model symbol table
// construction.
type MapSymbolTable map[string]struct {
	Index int
	Type  variant.Type
}

func (m MapSymbolTable) Resolve(name string) (int, variant.Type, bool) {
	e, ok := m[name]
	if !ok {
		return 0, variant.TypeDouble, false
	}
	return e.Index, e.Type, true
}
