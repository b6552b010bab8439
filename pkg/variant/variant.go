// Package variant implements the tagged value type shared by the design
// graph's attribute maps, the expression evaluator, and the simulation
// state vector.
package variant

import (
	"fmt"
	"slices"
)

// Type tags the kind of value a Variant carries.
type Type int

const (
	TypeInt Type = iota
	TypeDouble
	TypeBool
	TypeString
	TypePoint
	TypePointArray
	TypeDoubleArray
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypePoint:
		return "point"
	case TypePointArray:
		return "array-of-point"
	case TypeDoubleArray:
		return "array-of-double"
	default:
		return "unknown"
	}
}

// Point is a single (x, y) sample of a graphical function curve.
type Point struct {
	X, Y float64
}

// Value is a tagged union over the value kinds the compiler and solver
// operate on. Only one field is meaningful at a time, selected by Type.
type Value struct {
	Type   Type
	Int    int
	Double float64
	Bool   bool
	String string
	Point  Point
	Points []Point
	Floats []float64
}

// Int wraps an int as a Variant.
func Int(v int) Value { return Value{Type: TypeInt, Int: v} }

// Double wraps a float64 as a Variant.
func Double(v float64) Value { return Value{Type: TypeDouble, Double: v} }

// Bool wraps a bool as a Variant.
func Bool(v bool) Value { return Value{Type: TypeBool, Bool: v} }

// String wraps a string as a Variant.
func String(v string) Value { return Value{Type: TypeString, String: v} }

// AsDouble returns the numeric interpretation of the value: double and int
// convert directly, bool converts to 0/1. Any other type is an error.
func (v Value) AsDouble() (float64, error) {
	switch v.Type {
	case TypeDouble:
		return v.Double, nil
	case TypeInt:
		return float64(v.Int), nil
	case TypeBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("variant: cannot convert %s to double", v.Type)
	}
}

// AsBool returns the boolean interpretation of the value.
func (v Value) AsBool() (bool, error) {
	switch v.Type {
	case TypeBool:
		return v.Bool, nil
	case TypeInt:
		return v.Int != 0, nil
	case TypeDouble:
		return v.Double != 0, nil
	default:
		return false, fmt.Errorf("variant: cannot convert %s to bool", v.Type)
	}
}

// Render formats the value as formula-literal text, used by the formula
// pretty-printer.
func (v Value) Render() string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf("%d", v.Int)
	case TypeDouble:
		return fmt.Sprintf("%g", v.Double)
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	case TypeString:
		return v.String
	case TypePoint:
		return fmt.Sprintf("(%g, %g)", v.Point.X, v.Point.Y)
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}

// Equal reports whether two variants hold the same tag and value.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeInt:
		return a.Int == b.Int
	case TypeDouble:
		return a.Double == b.Double
	case TypeBool:
		return a.Bool == b.Bool
	case TypeString:
		return a.String == b.String
	case TypePoint:
		return a.Point == b.Point
	case TypePointArray:
		return slices.Equal(a.Points, b.Points)
	case TypeDoubleArray:
		return slices.Equal(a.Floats, b.Floats)
	default:
		return false
	}
}
