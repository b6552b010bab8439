// Package model defines the design-graph data model the compiler consumes:
// stocks, flows, auxiliaries, graphical functions, and the typed edges
// connecting them. The graph itself is external to the core (§6 of the
// specification); this package only fixes the shapes the narrow read
// interface in package frame is built against, plus a simple in-memory
// implementation good enough for tests, examples, and the illustrative
// storage adapter.
package model

import "github.com/stockflow/sdsim/pkg/variant"

// ObjectType tags what kind of design-graph entity an Object represents.
type ObjectType string

const (
	TypeStock             ObjectType = "Stock"
	TypeFlow              ObjectType = "Flow"
	TypeAuxiliary         ObjectType = "Auxiliary"
	TypeGraphicalFunction ObjectType = "GraphicalFunction"
	TypeDelay             ObjectType = "Delay"
	TypeControl           ObjectType = "Control"
	TypeChart             ObjectType = "Chart"
	TypeChartSeries       ObjectType = "ChartSeries"

	// Edge types.
	TypeParameter    ObjectType = "Parameter"
	TypeDrains       ObjectType = "Drains"
	TypeFills        ObjectType = "Fills"
	TypeImplicitFlow ObjectType = "ImplicitFlow"
	TypeValueBinding ObjectType = "ValueBinding"
)

// StructuralKind distinguishes nodes, edges, and unstructured objects
// (e.g. a Chart, which has attributes but participates in no edges the
// compiler cares about).
type StructuralKind int

const (
	KindNode StructuralKind = iota
	KindEdge
	KindUnstructured
)

func (t ObjectType) StructuralKind() StructuralKind {
	switch t {
	case TypeParameter, TypeDrains, TypeFills, TypeImplicitFlow, TypeValueBinding:
		return KindEdge
	case TypeChart, TypeChartSeries, TypeControl:
		return KindUnstructured
	default:
		return KindNode
	}
}

// IsSimulationType reports whether objects of this type may appear in
// simulation_objects (i.e. they carry a Formula, GraphicalFunction, or
// Delay computation).
func (t ObjectType) IsSimulationType() bool {
	switch t {
	case TypeStock, TypeFlow, TypeAuxiliary, TypeGraphicalFunction, TypeDelay:
		return true
	default:
		return false
	}
}
