package model

import (
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/variant"
)

// Attributes is the string -> Variant map every design-graph object
// carries, read by the core exclusively through Object.Attribute.
type Attributes map[string]variant.Value

// Object is a node or unstructured entity in the design graph: a Stock,
// Flow, Auxiliary, GraphicalFunction, Delay, Control, Chart, or
// ChartSeries. Edges are represented separately by Edge.
type Object struct {
	ID         ids.ObjectID
	Type       ObjectType
	Name       string
	Attributes Attributes
}

// Attribute reads a named attribute, reporting ErrAttributeNotFound if
// absent.
func (o *Object) Attribute(name string) (variant.Value, error) {
	v, ok := o.Attributes[name]
	if !ok {
		return variant.Value{}, ErrAttributeNotFound
	}
	return v, nil
}

// AttributeString reads a string attribute, defaulting to def if absent.
func (o *Object) AttributeString(name, def string) string {
	v, ok := o.Attributes[name]
	if !ok || v.Type != variant.TypeString {
		return def
	}
	return v.String
}

// AttributeDouble reads a numeric attribute, defaulting to def if absent
// or not numeric.
func (o *Object) AttributeDouble(name string, def float64) float64 {
	v, ok := o.Attributes[name]
	if !ok {
		return def
	}
	d, err := v.AsDouble()
	if err != nil {
		return def
	}
	return d
}

// AttributeBool reads a boolean attribute, defaulting to def if absent.
func (o *Object) AttributeBool(name string, def bool) bool {
	v, ok := o.Attributes[name]
	if !ok {
		return def
	}
	b, err := v.AsBool()
	if err != nil {
		return def
	}
	return b
}

// Points reads a point-array attribute (used by GraphicalFunction nodes).
func (o *Object) Points(name string) []variant.Point {
	v, ok := o.Attributes[name]
	if !ok || v.Type != variant.TypePointArray {
		return nil
	}
	return v.Points
}

// Edge is a directed, typed connection between two design-graph objects:
// a Parameter (dataflow reference), Drains (stock -> flow), Fills
// (flow -> stock), ImplicitFlow (compiler-synthesised stock -> stock),
// or ValueBinding (control -> target).
type Edge struct {
	ID         ids.ObjectID
	Type       ObjectType
	From       ids.ObjectID
	To         ids.ObjectID
	Attributes Attributes
}

// Priority reads the flow-priority attribute off an object,
// defaulting to 0 (highest priority, since lower values arbitrate first).
func (o *Object) Priority() int {
	v, ok := o.Attributes["priority"]
	if !ok {
		return 0
	}
	if v.Type == variant.TypeInt {
		return v.Int
	}
	d, err := v.AsDouble()
	if err != nil {
		return 0
	}
	return int(d)
}
