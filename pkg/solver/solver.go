// Package solver implements the per-step evaluation of a CompiledModel:
// initialisation, auxiliary/flow updates, non-negative stock arbitration,
// and the two integrators (Euler, RK4) that advance stocks between steps
// (§4.5).
package solver

import (
	"fmt"

	"github.com/stockflow/sdsim/pkg/binder"
	"github.com/stockflow/sdsim/pkg/compiler"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/variant"
)

// State is the flat simulation state vector, indexed by state-variable
// index. It is an alias of binder.State so BoundExpression evaluation
// needs no conversion.
type State = binder.State

// EvalError reports a failure evaluating a computation at runtime:
// division by zero, a signature mismatch the binder somehow missed, or a
// value that cannot be read as a number. Distinct from the compiler's
// NodeIssuesError, which is caught before a model ever runs.
type EvalError struct {
	ObjectID ids.ObjectID
	Step     int
	Cause    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("solver: evaluation failed for object %s at step %d: %v", e.ObjectID, e.Step, e.Cause)
}

func (e *EvalError) Unwrap() error { return e.Cause }

// Solver owns a CompiledModel and the current run's override table. A
// Solver holds no mutable simulation state itself beyond the overrides;
// State values are created and owned by the caller (the Simulator),
// matching the immutability of CompiledModel (§5).
type Solver struct {
	Model *compiler.CompiledModel

	// constants remembers Auxiliary overrides (keyed by variable index)
	// so every subsequent step re-asserts the override instead of letting
	// the formula recompute and clobber it (§4.5 Initialisation step 3).
	constants map[int]variant.Value
}

// New returns a Solver over model.
func New(model *compiler.CompiledModel) *Solver {
	return &Solver{Model: model, constants: make(map[int]variant.Value)}
}

// Initialize creates a zero state, writes the time builtins, and
// evaluates (or applies the override for) every simulation object in
// topological order.
func (s *Solver) Initialize(overrides map[ids.ObjectID]variant.Value) (State, error) {
	state := make(State, len(s.Model.StateVariables))
	s.constants = make(map[int]variant.Value)

	state[s.Model.TimeVariableIndex] = variant.Double(s.Model.SimulationDefaults.InitialTime)
	state[s.Model.TimeDeltaVariableIndex] = variant.Double(s.Model.SimulationDefaults.TimeDelta)

	for _, so := range s.Model.SimulationObjects {
		if ov, ok := overrides[so.ID]; ok {
			state[so.VariableIndex] = ov
			if so.Kind == compiler.KindAuxiliary {
				s.constants[so.VariableIndex] = ov
			}
			continue
		}
		v, err := s.evalComputation(so, state)
		if err != nil {
			return nil, &EvalError{ObjectID: so.ID, Step: 0, Cause: err}
		}
		state[so.VariableIndex] = v
	}
	return state, nil
}

// updateBuiltins writes the time and time_delta slots (§4.5 per-step
// update helpers).
func (s *Solver) updateBuiltins(state State, time, dt float64) {
	state[s.Model.TimeVariableIndex] = variant.Double(time)
	state[s.Model.TimeDeltaVariableIndex] = variant.Double(dt)
}

// update evaluates every auxiliary (in topological order) and then every
// flow, so flows see up-to-date auxiliaries and stocks frozen at the
// step's start.
func (s *Solver) update(state State, step int) error {
	for _, aux := range s.Model.Auxiliaries {
		if v, ok := s.constants[aux.VariableIndex]; ok {
			state[aux.VariableIndex] = v
			continue
		}
		v, err := s.evalComputation(aux, state)
		if err != nil {
			return &EvalError{ObjectID: aux.ID, Step: step, Cause: err}
		}
		state[aux.VariableIndex] = v
	}
	for _, so := range s.Model.SimulationObjects {
		if so.Kind != compiler.KindFlow {
			continue
		}
		v, err := s.evalComputation(so, state)
		if err != nil {
			return &EvalError{ObjectID: so.ID, Step: step, Cause: err}
		}
		state[so.VariableIndex] = v
	}
	return nil
}

// evalComputation dispatches a SimulationObject's Computation against
// state, the exhaustive match over the tagged sum the design notes call
// for.
func (s *Solver) evalComputation(so compiler.SimulationObject, state State) (variant.Value, error) {
	switch so.Computation.Kind {
	case compiler.ComputationFormula:
		v, err := binder.Eval(so.Computation.Formula.Expr, state)
		if err != nil {
			return variant.Value{}, err
		}
		d, err := v.AsDouble()
		if err != nil {
			return variant.Value{}, err
		}
		return variant.Double(d), nil

	case compiler.ComputationGraphicalFunction:
		param := state.Get(so.Computation.GFParameterIndex)
		return so.Computation.GraphicalFunction.Call([]variant.Value{param})

	case compiler.ComputationDelay:
		time := state.Get(s.Model.TimeVariableIndex).Double
		dt := state.Get(s.Model.TimeDeltaVariableIndex).Double
		return evalDelay(state, time, dt, so.Computation.Delay)

	default:
		return variant.Value{}, fmt.Errorf("solver: unrecognised computation kind %d", so.Computation.Kind)
	}
}
