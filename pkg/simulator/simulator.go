// Package simulator wraps a CompiledModel and a Solver into the run loop
// that produces a recorded output trace (§4.6).
package simulator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockflow/sdsim/pkg/compiler"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/solver"
	"github.com/stockflow/sdsim/pkg/variant"
)

// tracer is resolved against whatever TracerProvider the host process has
// installed via otel.SetTracerProvider; absent one, the otel package's
// default is a no-op implementation, so a Simulator traces for free with
// zero behavioural effect when nobody has configured tracing.
var tracer = otel.Tracer("github.com/stockflow/sdsim/pkg/simulator")

// State is the simulation state vector, re-exported from solver so
// callers never need to import both packages just to read a trace.
type State = solver.State

// RunError wraps an evaluation failure encountered mid-run; the
// Simulator halts on it but keeps whatever trace was already recorded
// (§7 "Evaluation errors during a run... halt the run; the Simulator
// preserves output collected up to the prior step").
type RunError struct {
	Step  int
	Cause error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("simulator: run failed at step %d: %v", e.Step, e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }

// OverrideError reports an override keyed by an id the model does not
// recognise (§7 "overrides for unknown ids are an error").
type OverrideError struct {
	ID ids.ObjectID
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("simulator: override for unknown object %s", e.ID)
}

// Simulator drives a Solver over a CompiledModel, recording one State
// per step into an output trace. A Simulator owns its current state
// exclusively; nothing else may mutate it mid-step (§5).
type Simulator struct {
	Model      *compiler.CompiledModel
	Solver     *solver.Solver
	Integrator solver.Integrator

	initialTime float64
	timeDelta   float64

	currentStep int
	currentTime float64
	current     State

	trace []State

	observers []Observer
}

// New builds a Simulator over model using integrator (solver.Euler{} or
// solver.RK4{}) for stepping.
func New(model *compiler.CompiledModel, integrator solver.Integrator) *Simulator {
	return &Simulator{
		Model:       model,
		Solver:      solver.New(model),
		Integrator:  integrator,
		initialTime: model.SimulationDefaults.InitialTime,
		timeDelta:   model.SimulationDefaults.TimeDelta,
	}
}

// AddObserver registers an Observer to be notified on Initialize/Step/Run.
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Initialize validates overrides against the model, runs Solver.Initialize,
// and resets the output trace.
func (s *Simulator) Initialize(overrides map[ids.ObjectID]variant.Value) error {
	for id := range overrides {
		if _, ok := s.Model.VariableIndexOf(id); !ok {
			return &OverrideError{ID: id}
		}
	}

	state, err := s.Solver.Initialize(overrides)
	if err != nil {
		return err
	}

	s.currentStep = 0
	s.currentTime = s.initialTime
	s.current = state
	s.trace = []State{append(State(nil), state...)}

	for _, o := range s.observers {
		obs := o
		safeNotify(func() { obs.OnInitialize(s.current) })
	}
	return nil
}

// Step advances the simulation by one time_delta using the configured
// Integrator, appending the resulting state to the trace.
func (s *Simulator) Step() error { return s.StepContext(context.Background()) }

// StepContext is Step with a span recorded under ctx, one per step.
func (s *Simulator) StepContext(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "simulator.Step", trace.WithAttributes(
		attribute.Int("sdsim.step", s.currentStep+1),
		attribute.Float64("sdsim.time", s.currentTime),
	))
	defer span.End()

	next, err := s.Integrator.Compute(s.Solver, s.current, s.currentTime, s.timeDelta, s.currentStep+1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &RunError{Step: s.currentStep + 1, Cause: err}
	}

	s.currentStep++
	s.currentTime += s.timeDelta
	s.current = next
	s.trace = append(s.trace, append(State(nil), next...))

	for _, o := range s.observers {
		obs := o
		step := s.currentStep
		cur := s.current
		safeNotify(func() { obs.OnStep(step, cur) })
	}
	return nil
}

// Run steps the simulation n times, stopping early (and returning the
// error) if a step fails; the trace retains everything recorded before
// the failure.
func (s *Simulator) Run(n int) error { return s.RunContext(context.Background(), n) }

// RunContext is Run with one parent span covering the whole run and one
// child span per step (via StepContext).
func (s *Simulator) RunContext(ctx context.Context, n int) error {
	ctx, span := tracer.Start(ctx, "simulator.Run", trace.WithAttributes(attribute.Int("sdsim.steps", n)))
	defer span.End()

	for i := 0; i < n; i++ {
		if err := s.StepContext(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	for _, o := range s.observers {
		obs := o
		steps := s.currentStep
		final := s.current
		safeNotify(func() { obs.OnRun(steps, final) })
	}
	return nil
}

// CurrentState returns the most recently recorded state.
func (s *Simulator) CurrentState() State { return s.current }

// CurrentTime returns the simulation clock value at the current step.
func (s *Simulator) CurrentTime() float64 { return s.currentTime }

// DataSeries returns the recorded value of state-vector slot index at
// every recorded step, in order.
func (s *Simulator) DataSeries(index int) []float64 {
	out := make([]float64, len(s.trace))
	for i, st := range s.trace {
		out[i] = st.Get(index).Double
	}
	return out
}

// TimePoints returns the simulation-clock value of every recorded step.
func (s *Simulator) TimePoints() []float64 {
	out := make([]float64, len(s.trace))
	t := s.initialTime
	for i := range s.trace {
		out[i] = t
		t += s.timeDelta
	}
	return out
}
