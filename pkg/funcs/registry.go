package funcs

import (
	"fmt"
	"math"

	"github.com/stockflow/sdsim/pkg/variant"
)

// Table is an immutable, name-keyed lookup of builtin Functions. A single
// Table is built once at startup and shared by every bound expression in
// every compiled model.
type Table struct {
	byName map[string]*Function
}

// Lookup returns the Function registered under name, or false if none
// exists.
func (t *Table) Lookup(name string) (*Function, bool) {
	f, ok := t.byName[name]
	return f, ok
}

func (t *Table) register(f *Function) {
	t.byName[f.Name] = f
}

// Extend returns a new Table containing every Function in t plus extra,
// adding Functions to the shared builtin set without mutating it. The
// compiler does not call it: compiled graphical functions are held in
// their Computation rather than registered in a Table.
func (t *Table) Extend(extra ...*Function) *Table {
	out := &Table{byName: make(map[string]*Function, len(t.byName)+len(extra))}
	for name, f := range t.byName {
		out.byName[name] = f
	}
	for _, f := range extra {
		out.byName[f.Name] = f
	}
	return out
}

func d(v variant.Value) float64 {
	switch v.Type {
	case variant.TypeDouble:
		return v.Double
	case variant.TypeInt:
		return float64(v.Int)
	case variant.TypeBool:
		if v.Bool {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func binaryNumeric(name string, f func(a, b float64) float64) *Function {
	return &Function{
		Name: name,
		Signature: Signature{
			ArgTypes:   []variant.Type{variant.TypeDouble, variant.TypeDouble},
			ReturnType: variant.TypeDouble,
		},
		Impl: func(args []variant.Value) (variant.Value, error) {
			return variant.Double(f(d(args[0]), d(args[1]))), nil
		},
	}
}

func unaryNumeric(name string, f func(a float64) float64) *Function {
	return &Function{
		Name: name,
		Signature: Signature{
			ArgTypes:   []variant.Type{variant.TypeDouble},
			ReturnType: variant.TypeDouble,
		},
		Impl: func(args []variant.Value) (variant.Value, error) {
			return variant.Double(f(d(args[0]))), nil
		},
	}
}

func comparison(name string, f func(a, b float64) bool) *Function {
	return &Function{
		Name: name,
		Signature: Signature{
			ArgTypes:   []variant.Type{variant.TypeDouble, variant.TypeDouble},
			ReturnType: variant.TypeBool,
		},
		Impl: func(args []variant.Value) (variant.Value, error) {
			return variant.Bool(f(d(args[0]), d(args[1]))), nil
		},
	}
}

// NewBuiltinTable constructs the standard registry: arithmetic operators,
// comparisons, and the small set of math functions formulas are allowed to
// call (§3 Function, §4.1).
func NewBuiltinTable() *Table {
	t := &Table{byName: make(map[string]*Function)}

	t.register(unaryNumeric(OpNeg, func(a float64) float64 { return -a }))
	t.register(binaryNumeric(OpAdd, func(a, b float64) float64 { return a + b }))
	t.register(binaryNumeric(OpSub, func(a, b float64) float64 { return a - b }))
	t.register(binaryNumeric(OpMul, func(a, b float64) float64 { return a * b }))
	t.register(&Function{
		Name: OpDiv,
		Signature: Signature{
			ArgTypes:   []variant.Type{variant.TypeDouble, variant.TypeDouble},
			ReturnType: variant.TypeDouble,
		},
		Impl: func(args []variant.Value) (variant.Value, error) {
			b := d(args[1])
			if b == 0 {
				return variant.Value{}, fmt.Errorf("division by zero")
			}
			return variant.Double(d(args[0]) / b), nil
		},
	})
	t.register(&Function{
		Name: OpMod,
		Signature: Signature{
			ArgTypes:   []variant.Type{variant.TypeDouble, variant.TypeDouble},
			ReturnType: variant.TypeDouble,
		},
		Impl: func(args []variant.Value) (variant.Value, error) {
			b := d(args[1])
			if b == 0 {
				return variant.Value{}, fmt.Errorf("modulo by zero")
			}
			return variant.Double(math.Mod(d(args[0]), b)), nil
		},
	})

	t.register(comparison(OpEq, func(a, b float64) bool { return a == b }))
	t.register(comparison(OpNe, func(a, b float64) bool { return a != b }))
	t.register(comparison(OpLt, func(a, b float64) bool { return a < b }))
	t.register(comparison(OpLe, func(a, b float64) bool { return a <= b }))
	t.register(comparison(OpGt, func(a, b float64) bool { return a > b }))
	t.register(comparison(OpGe, func(a, b float64) bool { return a >= b }))

	t.register(unaryNumeric("abs", math.Abs))
	t.register(unaryNumeric("floor", math.Floor))
	t.register(unaryNumeric("ceiling", math.Ceil))
	t.register(unaryNumeric("round", math.Round))
	t.register(binaryNumeric("power", math.Pow))

	t.register(&Function{
		Name: "sum",
		Signature: Signature{Variadic: true, MinArity: 1, ReturnType: variant.TypeDouble},
		Impl: func(args []variant.Value) (variant.Value, error) {
			total := 0.0
			for _, a := range args {
				total += d(a)
			}
			return variant.Double(total), nil
		},
	})
	t.register(&Function{
		Name: "min",
		Signature: Signature{Variadic: true, MinArity: 1, ReturnType: variant.TypeDouble},
		Impl: func(args []variant.Value) (variant.Value, error) {
			m := d(args[0])
			for _, a := range args[1:] {
				if v := d(a); v < m {
					m = v
				}
			}
			return variant.Double(m), nil
		},
	})
	t.register(&Function{
		Name: "max",
		Signature: Signature{Variadic: true, MinArity: 1, ReturnType: variant.TypeDouble},
		Impl: func(args []variant.Value) (variant.Value, error) {
			m := d(args[0])
			for _, a := range args[1:] {
				if v := d(a); v > m {
					m = v
				}
			}
			return variant.Double(m), nil
		},
	})

	return t
}
