package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockflow/sdsim/pkg/compiler"
	"github.com/stockflow/sdsim/pkg/frame"
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
	"github.com/stockflow/sdsim/pkg/variant"
)

func formula(s string) model.Attributes {
	return model.Attributes{model.AttrFormula: variant.String(s)}
}

// newKettleCupStore builds the kettle-pours-cup fixture from scenario S2: stocks
// kettle/cup, flow pour, Drains kettle->pour, Fills pour->cup.
func newKettleCupStore(t *testing.T) (*model.Store, map[string]*model.Object) {
	t.Helper()
	s := model.NewStore()
	objs := map[string]*model.Object{}

	add := func(name string, typ model.ObjectType, attrs model.Attributes) *model.Object {
		o := &model.Object{Type: typ, Name: name, Attributes: attrs}
		_, err := s.AddObject(o)
		require.NoError(t, err)
		objs[name] = o
		return o
	}

	kettle := add("kettle", model.TypeStock, formula("1000"))
	cup := add("cup", model.TypeStock, formula("0"))
	pour := add("pour", model.TypeFlow, formula("100"))

	_, err := s.AddEdge(&model.Edge{Type: model.TypeDrains, From: kettle.ID, To: pour.ID})
	require.NoError(t, err)
	_, err = s.AddEdge(&model.Edge{Type: model.TypeFills, From: pour.ID, To: cup.ID})
	require.NoError(t, err)

	return s, objs
}

func compileStore(t *testing.T, s *model.Store) (*compiler.CompiledModel, error) {
	t.Helper()
	result := frame.Run(s)
	view := frame.NewView(s)
	return compiler.Compile(view, result.ASTs, funcs.NewBuiltinTable())
}

func TestCompile_KettlePoursCup(t *testing.T) {
	s, objs := newKettleCupStore(t)
	cm, err := compileStore(t, s)
	require.NoError(t, err)
	require.NotNil(t, cm)

	require.Len(t, cm.Stocks, 2)
	pourIdx, ok := cm.VariableIndexOf(objs["pour"].ID)
	require.True(t, ok)

	kettleStock, ok := stockFor(cm, objs["kettle"].ID)
	require.True(t, ok)
	assert.Equal(t, []int{pourIdx}, kettleStock.Outflows)
	assert.Empty(t, kettleStock.Inflows)

	cupStock, ok := stockFor(cm, objs["cup"].ID)
	require.True(t, ok)
	assert.Equal(t, []int{pourIdx}, cupStock.Inflows)
	assert.Empty(t, cupStock.Outflows)
}

func stockFor(cm *compiler.CompiledModel, id ids.ObjectID) (compiler.CompiledStock, bool) {
	for _, st := range cm.Stocks {
		if st.ID == id {
			return st, true
		}
	}
	return compiler.CompiledStock{}, false
}

func TestCompile_DuplicateNames(t *testing.T) {
	s := model.NewStore()
	_, err := s.AddObject(&model.Object{Type: model.TypeStock, Name: "things", Attributes: formula("1")})
	require.NoError(t, err)
	_, err = s.AddObject(&model.Object{Type: model.TypeStock, Name: "things", Attributes: formula("2")})
	require.NoError(t, err)
	_, err = s.AddObject(&model.Object{Type: model.TypeStock, Name: "a", Attributes: formula("1")})
	require.NoError(t, err)
	_, err = s.AddObject(&model.Object{Type: model.TypeStock, Name: "b", Attributes: formula("1")})
	require.NoError(t, err)

	_, err = compileStore(t, s)
	require.Error(t, err)

	issuesErr, ok := err.(*frame.NodeIssuesError)
	require.True(t, ok)
	count := 0
	for _, list := range issuesErr.Issues {
		for _, iss := range list {
			if iss.Kind == frame.DuplicateName {
				count++
			}
		}
	}
	assert.Equal(t, 2, count)
}

func TestCompile_GraphicalFunction(t *testing.T) {
	s := model.NewStore()
	input, err := s.AddObject(&model.Object{Type: model.TypeAuxiliary, Name: "x", Attributes: formula("1")})
	require.NoError(t, err)
	gf, err := s.AddObject(&model.Object{
		Type: model.TypeGraphicalFunction, Name: "curve",
		Attributes: model.Attributes{
			model.AttrPoints: variant.Value{Type: variant.TypePointArray, Points: []variant.Point{{X: 1, Y: 10}, {X: 2, Y: 20}}},
		},
	})
	require.NoError(t, err)
	_, err = s.AddEdge(&model.Edge{Type: model.TypeParameter, From: input, To: gf})
	require.NoError(t, err)

	cm, err := compileStore(t, s)
	require.NoError(t, err)
	require.Len(t, cm.GraphicalFunctions(), 1)
}

func TestCompile_MissingDelayInitialValue(t *testing.T) {
	s := model.NewStore()
	input, err := s.AddObject(&model.Object{Type: model.TypeAuxiliary, Name: "x", Attributes: formula("1")})
	require.NoError(t, err)
	delay, err := s.AddObject(&model.Object{
		Type: model.TypeDelay, Name: "d",
		Attributes: model.Attributes{model.AttrDuration: variant.Double(3)},
	})
	require.NoError(t, err)
	_, err = s.AddEdge(&model.Edge{Type: model.TypeParameter, From: input, To: delay})
	require.NoError(t, err)

	_, err = compileStore(t, s)
	require.Error(t, err)
	issuesErr, ok := err.(*frame.NodeIssuesError)
	require.True(t, ok)
	found := false
	for _, list := range issuesErr.Issues {
		for _, iss := range list {
			if iss.Kind == frame.MissingDelayInitialValue {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestCompile_ParameterCycleFails(t *testing.T) {
	s := model.NewStore()
	a, err := s.AddObject(&model.Object{Type: model.TypeAuxiliary, Name: "a", Attributes: formula("b")})
	require.NoError(t, err)
	b, err := s.AddObject(&model.Object{Type: model.TypeAuxiliary, Name: "b", Attributes: formula("a")})
	require.NoError(t, err)
	_, err = s.AddEdge(&model.Edge{Type: model.TypeParameter, From: b, To: a})
	require.NoError(t, err)
	_, err = s.AddEdge(&model.Edge{Type: model.TypeParameter, From: a, To: b})
	require.NoError(t, err)

	_, err = compileStore(t, s)
	require.Error(t, err)
	issuesErr, ok := err.(*frame.NodeIssuesError)
	require.True(t, ok)
	for _, list := range issuesErr.Issues {
		for _, iss := range list {
			assert.Equal(t, frame.ComputationCycle, iss.Kind)
		}
	}
}
