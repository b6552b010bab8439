// Package compiler implements name resolution, cycle detection, and
// binding over a transformed frame, producing an immutable CompiledModel
// the solver evaluates step by step (§4.4).
package compiler

import (
	"github.com/stockflow/sdsim/pkg/binder"
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/variant"
)

// StateContent tags what a StateVariable slot holds.
type StateContent int

const (
	ContentObject StateContent = iota
	ContentBuiltin
	ContentInternalState
)

// TimeKind distinguishes the two builtin time variables.
type TimeKind int

const (
	TimeNow TimeKind = iota
	TimeDelta
)

// StateVariable is one symbol-table entry: a slot in the flat simulation
// state vector. Each design-graph object occupies at most one.
type StateVariable struct {
	Index      int
	Content    StateContent
	ObjectID   ids.ObjectID // meaningful when Content is ContentObject or ContentInternalState
	TimeKind   TimeKind     // meaningful when Content is ContentBuiltin
	ValueType  variant.Type
	Name       string
}

// ComputationKind is the tagged sum over the three ways a simulation
// object's value is produced each step.
type ComputationKind int

const (
	ComputationFormula ComputationKind = iota
	ComputationGraphicalFunction
	ComputationDelay
)

// CompiledDelay is the compiled form of a Delay node.
type CompiledDelay struct {
	QueueStateIndex     int
	Duration            float64
	InitialValue        variant.Value
	HasInitialValue     bool
	ParameterStateIndex int
	ValueType           variant.Type
}

// Computation is the per-object description of how to produce its value
// each step: exactly one of the three fields is meaningful, selected by
// Kind.
type Computation struct {
	Kind ComputationKind

	Formula BoundFormula

	GraphicalFunction *funcs.Function
	GFParameterIndex  int

	Delay CompiledDelay
}

// BoundFormula wraps a bound expression tree.
type BoundFormula struct {
	Expr binder.BoundExpr
}

// SimulationObjectKind narrows ObjectType to the three kinds that occupy
// simulation_objects.
type SimulationObjectKind int

const (
	KindStock SimulationObjectKind = iota
	KindFlow
	KindAuxiliary
)

// SimulationObject is one compiled node: a Stock, Flow, or Auxiliary
// (GraphicalFunction/Delay nodes compile down into an Auxiliary-shaped
// SimulationObject, since their output is a single state-vector slot like
// any other).
type SimulationObject struct {
	ID           ids.ObjectID
	Kind         SimulationObjectKind
	VariableIndex int
	ValueType    variant.Type
	Computation  Computation
	Name         string
}

// CompiledStock is the solver-facing description of one stock: which
// flows add to it, which drain it (sorted by ascending priority), and
// whether it tolerates going negative.
type CompiledStock struct {
	ID             ids.ObjectID
	VariableIndex  int
	AllowsNegative bool
	DelayedInflow  bool
	Inflows        []int // state indices of Flow SimulationObjects
	Outflows       []int // state indices, sorted by Flow.Priority ascending
}

// CompiledFlow is the solver-facing description of one flow's static
// attributes.
type CompiledFlow struct {
	ID            ids.ObjectID
	VariableIndex int
	Priority      int
}

// CompiledControlBinding records that a control object's value should be
// written into a target variable slot (§4.4 step 8).
type CompiledControlBinding struct {
	ControlID          ids.ObjectID
	TargetVariableIndex int
}

// SimulationDefaults is the run configuration read from an optional
// SimulationDefaults object (§4.4 step 9, §6).
type SimulationDefaults struct {
	InitialTime float64
	TimeDelta   float64
	Steps       int
}

// DefaultSimulationDefaults returns the spec's defaults absent a
// SimulationDefaults object in the frame.
func DefaultSimulationDefaults() SimulationDefaults {
	return SimulationDefaults{InitialTime: 0, TimeDelta: 1, Steps: 10}
}

// CompiledModel is the immutable artifact the solver and simulator
// operate on. Nothing mutates it after Compile returns; independent
// simulations may share one safely (§5).
type CompiledModel struct {
	StateVariables []StateVariable

	TimeVariableIndex      int
	TimeDeltaVariableIndex int

	SimulationObjects []SimulationObject // topologically ordered by parameter dependency
	Stocks            []CompiledStock    // ordered by implicit-flow dependency
	Flows             []CompiledFlow
	Auxiliaries       []SimulationObject

	ValueBindings []CompiledControlBinding

	Functions *funcs.Table

	SimulationDefaults SimulationDefaults

	byID    map[ids.ObjectID]int // ObjectID -> variable index
	byName  map[string]int       // object name -> variable index
	stockAt map[ids.ObjectID]int // ObjectID -> index into Stocks
}

// Variable returns the state-vector index of the named object, if any.
func (m *CompiledModel) Variable(name string) (int, bool) {
	i, ok := m.byName[name]
	return i, ok
}

// VariableIndexOf returns the state-vector index allocated to id.
func (m *CompiledModel) VariableIndexOf(id ids.ObjectID) (int, bool) {
	i, ok := m.byID[id]
	return i, ok
}

// StockIndexOf returns the index into Stocks for the stock with id.
func (m *CompiledModel) StockIndexOf(id ids.ObjectID) (int, bool) {
	i, ok := m.stockAt[id]
	return i, ok
}

// GraphicalFunctions returns every compiled graphical-function Function
// in simulation_objects order.
func (m *CompiledModel) GraphicalFunctions() []*funcs.Function {
	var out []*funcs.Function
	for _, o := range m.SimulationObjects {
		if o.Computation.Kind == ComputationGraphicalFunction {
			out = append(out, o.Computation.GraphicalFunction)
		}
	}
	return out
}
