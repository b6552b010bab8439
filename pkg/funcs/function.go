// Package funcs implements the builtin function/operator registry: the
// "global function registry" from the design notes, reimagined as a
// value-owned map built once and shared by every bound expression as cheap
// handles (§4.4, §6, design note "Global function registry").
package funcs

import (
	"fmt"

	"github.com/stockflow/sdsim/pkg/variant"
)

// SignatureErrorKind distinguishes the two ways a call can fail signature
// validation.
type SignatureErrorKind int

const (
	ErrNone SignatureErrorKind = iota
	ErrInvalidArity
	ErrTypeMismatch
)

// SignatureError reports a call that does not match a Function's
// Signature: either the wrong number of arguments, or arguments of the
// wrong value type at the given (0-based) positions.
type SignatureError struct {
	Kind      SignatureErrorKind
	Name      string
	Positions []int
}

func (e *SignatureError) Error() string {
	switch e.Kind {
	case ErrInvalidArity:
		return fmt.Sprintf("function %s: invalid arity", e.Name)
	case ErrTypeMismatch:
		return fmt.Sprintf("function %s: type mismatch at positions %v", e.Name, e.Positions)
	default:
		return fmt.Sprintf("function %s: signature error", e.Name)
	}
}

// Signature describes how many arguments a Function accepts (or, if
// Variadic, a minimum), what value type each must evaluate to, and what
// value type the call produces.
type Signature struct {
	ArgTypes   []variant.Type
	Variadic   bool
	MinArity   int // only meaningful when Variadic
	ReturnType variant.Type
}

// Validate checks arity and per-argument value types, returning nil or a
// *SignatureError.
func (s Signature) Validate(name string, argTypes []variant.Type) error {
	if s.Variadic {
		if len(argTypes) < s.MinArity {
			return &SignatureError{Kind: ErrInvalidArity, Name: name}
		}
		var bad []int
		for i, t := range argTypes {
			if !numericCompatible(t) {
				bad = append(bad, i)
			}
		}
		if len(bad) > 0 {
			return &SignatureError{Kind: ErrTypeMismatch, Name: name, Positions: bad}
		}
		return nil
	}
	if len(argTypes) != len(s.ArgTypes) {
		return &SignatureError{Kind: ErrInvalidArity, Name: name}
	}
	var bad []int
	for i, t := range argTypes {
		if !typeSatisfies(s.ArgTypes[i], t) {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return &SignatureError{Kind: ErrTypeMismatch, Name: name, Positions: bad}
	}
	return nil
}

// numericCompatible reports whether a value type may stand in for a
// "numeric" parameter slot (int and double both satisfy double-typed
// builtins; everything in this engine is evaluated as double internally).
func numericCompatible(t variant.Type) bool {
	return t == variant.TypeInt || t == variant.TypeDouble || t == variant.TypeBool
}

func typeSatisfies(want, got variant.Type) bool {
	if want == variant.TypeDouble {
		return numericCompatible(got)
	}
	return want == got
}

// Implementation is the evaluator for a Function: given already-evaluated
// argument values, produce a result or an evaluation error (e.g. division
// by zero).
type Implementation func(args []variant.Value) (variant.Value, error)

// Function is a named, signature-checked, callable unit shared by every
// BoundExpression that references it. Function values are cheap,
// immutable handles into the registry map (design note: "function objects
// are cheap handles").
type Function struct {
	Name      string
	Signature Signature
	Impl      Implementation
}

// Call validates the argument types against the signature and, if they
// match, evaluates Impl.
func (f *Function) Call(args []variant.Value) (variant.Value, error) {
	types := make([]variant.Type, len(args))
	for i, a := range args {
		types[i] = a.Type
	}
	if err := f.Signature.Validate(f.Name, types); err != nil {
		return variant.Value{}, err
	}
	return f.Impl(args)
}
