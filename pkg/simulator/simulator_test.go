package simulator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/stockflow/sdsim/pkg/compiler"
	"github.com/stockflow/sdsim/pkg/frame"
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
	"github.com/stockflow/sdsim/pkg/simulator"
	"github.com/stockflow/sdsim/pkg/solver"
	"github.com/stockflow/sdsim/pkg/variant"
)

func formula(s string) model.Attributes {
	return model.Attributes{model.AttrFormula: variant.String(s)}
}

func kettleCupModel(t *testing.T) (*compiler.CompiledModel, map[string]ids.ObjectID) {
	t.Helper()
	s := model.NewStore()
	objIDs := map[string]ids.ObjectID{}

	kettle, err := s.AddObject(&model.Object{Type: model.TypeStock, Name: "kettle", Attributes: formula("1000")})
	require.NoError(t, err)
	cup, err := s.AddObject(&model.Object{Type: model.TypeStock, Name: "cup", Attributes: formula("0")})
	require.NoError(t, err)
	pour, err := s.AddObject(&model.Object{Type: model.TypeFlow, Name: "pour", Attributes: formula("100")})
	require.NoError(t, err)
	_, err = s.AddEdge(&model.Edge{Type: model.TypeDrains, From: kettle, To: pour})
	require.NoError(t, err)
	_, err = s.AddEdge(&model.Edge{Type: model.TypeFills, From: pour, To: cup})
	require.NoError(t, err)
	objIDs["kettle"], objIDs["cup"], objIDs["pour"] = kettle, cup, pour

	result := frame.Run(s)
	view := frame.NewView(s)
	cm, err := compiler.Compile(view, result.ASTs, funcs.NewBuiltinTable())
	require.NoError(t, err)
	return cm, objIDs
}

type recordingObserver struct {
	initialized int
	steps       []int
	runs        []int
}

func (r *recordingObserver) OnInitialize(state simulator.State) { r.initialized++ }
func (r *recordingObserver) OnStep(step int, state simulator.State) { r.steps = append(r.steps, step) }
func (r *recordingObserver) OnRun(steps int, final simulator.State) { r.runs = append(r.runs, steps) }

func TestSimulator_RunProducesTrace(t *testing.T) {
	cm, objIDs := kettleCupModel(t)
	sim := simulator.New(cm, solver.Euler{})
	obs := &recordingObserver{}
	sim.AddObserver(obs)

	require.NoError(t, sim.Initialize(nil))
	require.NoError(t, sim.Run(2))

	kettleIdx, _ := cm.VariableIndexOf(objIDs["kettle"])
	cupIdx, _ := cm.VariableIndexOf(objIDs["cup"])

	kettleSeries := sim.DataSeries(kettleIdx)
	cupSeries := sim.DataSeries(cupIdx)

	require.Len(t, kettleSeries, 3) // initial + 2 steps
	assert.Equal(t, []float64{1000, 900, 800}, kettleSeries)
	assert.Equal(t, []float64{0, 100, 200}, cupSeries)

	assert.Equal(t, 1, obs.initialized)
	assert.Equal(t, []int{1, 2}, obs.steps)
	assert.Equal(t, []int{2}, obs.runs)
}

func TestSimulator_UnknownOverrideIsError(t *testing.T) {
	cm, _ := kettleCupModel(t)
	sim := simulator.New(cm, solver.Euler{})
	err := sim.Initialize(map[ids.ObjectID]variant.Value{"not-a-real-id": variant.Double(1)})
	require.Error(t, err)
	var overrideErr *simulator.OverrideError
	assert.ErrorAs(t, err, &overrideErr)
}

func TestSimulator_TimePoints(t *testing.T) {
	cm, _ := kettleCupModel(t)
	sim := simulator.New(cm, solver.Euler{})
	require.NoError(t, sim.Initialize(nil))
	require.NoError(t, sim.Run(3))
	assert.Equal(t, []float64{0, 1, 2, 3}, sim.TimePoints())
}

// TestSimulator_TracingSpans confirms RunContext/StepContext record one
// span per step plus a parent span for the run, exercising the otel
// wiring (§9 Tracing) rather than merely trusting it compiles.
func TestSimulator_TracingSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prevProvider := otel.GetTracerProvider()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prevProvider)

	cm, _ := kettleCupModel(t)
	sim := simulator.New(cm, solver.Euler{})
	require.NoError(t, sim.Initialize(nil))
	require.NoError(t, sim.RunContext(context.Background(), 2))
	require.NoError(t, tp.ForceFlush(context.Background()))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "simulator.Run")
	assert.Equal(t, 2, countName(names, "simulator.Step"))
}

func countName(names []string, want string) int {
	n := 0
	for _, name := range names {
		if name == want {
			n++
		}
	}
	return n
}

// TestSimulator_ConcurrentDeterminism is TP7: a shared, immutable
// CompiledModel drives N independently-stepped Simulators concurrently,
// and every one produces the same trace.
func TestSimulator_ConcurrentDeterminism(t *testing.T) {
	cm, objIDs := kettleCupModel(t)
	const n = 8

	var wg sync.WaitGroup
	traces := make([][]float64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sim := simulator.New(cm, solver.Euler{})
			require.NoError(t, sim.Initialize(nil))
			require.NoError(t, sim.Run(5))
			idx, _ := cm.VariableIndexOf(objIDs["kettle"])
			traces[i] = sim.DataSeries(idx)
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, traces[0], traces[i])
	}
}
