package compiler

import (
	"github.com/rs/zerolog/log"

	"github.com/stockflow/sdsim/pkg/binder"
	"github.com/stockflow/sdsim/pkg/exprlang"
	"github.com/stockflow/sdsim/pkg/frame"
	"github.com/stockflow/sdsim/pkg/funcs"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
	"github.com/stockflow/sdsim/pkg/variant"
)

// builtinNames are the reserved identifiers every formula may reference
// without a Parameter edge.
var builtinNames = map[string]bool{"time": true, "time_delta": true}

// Compile turns a transformed frame into a CompiledModel, or an
// aggregated *frame.NodeIssuesError. functions is the builtin function
// table every bound expression resolves calls against.
func Compile(view *frame.View, asts *frame.ASTCache, functions *funcs.Table) (*CompiledModel, error) {
	issues := newIssues()

	nodes := view.SimulationNodes()
	checkDuplicateNames(nodes, issues)
	if !issues.empty() {
		return nil, issues.err()
	}

	ordered, err := view.TopologicalSort(nodes, model.TypeParameter)
	if err != nil {
		attachCycle(err, issues, compIssueKind())
		return nil, issues.err()
	}

	c := &compilation{
		view:      view,
		asts:      asts,
		functions: functions,
		symbols:   binder.MapSymbolTable{},
		byID:      make(map[ids.ObjectID]int),
		byName:    make(map[string]int),
	}
	c.allocateBuiltins()

	for _, o := range ordered {
		c.compileNode(o, issues)
	}
	if !issues.empty() {
		return nil, issues.err()
	}

	cm := c.assemble(view, issues)
	if !issues.empty() {
		return nil, issues.err()
	}
	return cm, nil
}

func compIssueKind() frame.IssueKind { return frame.ComputationCycle }

func checkDuplicateNames(nodes []*model.Object, issues *issueSet) {
	byName := make(map[string][]*model.Object)
	for _, o := range nodes {
		if o.Name == "" {
			continue
		}
		byName[o.Name] = append(byName[o.Name], o)
	}
	for name, group := range byName {
		if len(group) < 2 {
			continue
		}
		for _, o := range group {
			issues.add(o.ID, frame.NodeIssue{Kind: frame.DuplicateName, Name: name})
		}
	}
}

func attachCycle(err error, issues *issueSet, kind frame.IssueKind) {
	cyc, ok := err.(*frame.GraphCycle)
	if !ok {
		return
	}
	for _, id := range cyc.Nodes {
		issues.add(id, frame.NodeIssue{Kind: kind})
	}
}

// compilation carries the growing state-variable table and symbol table
// while nodes compile in topological order.
type compilation struct {
	view      *frame.View
	asts      *frame.ASTCache
	functions *funcs.Table
	symbols   binder.MapSymbolTable

	stateVars []StateVariable
	byID      map[ids.ObjectID]int
	byName    map[string]int
	results   []compiledNode
}

func (c *compilation) allocateBuiltins() {
	c.allocate(StateVariable{Content: ContentBuiltin, TimeKind: TimeNow, ValueType: variant.TypeDouble, Name: "time"})
	c.allocate(StateVariable{Content: ContentBuiltin, TimeKind: TimeDelta, ValueType: variant.TypeDouble, Name: "time_delta"})
}

func (c *compilation) allocate(sv StateVariable) int {
	sv.Index = len(c.stateVars)
	c.stateVars = append(c.stateVars, sv)
	if sv.Name != "" {
		c.byName[sv.Name] = sv.Index
		c.symbols[sv.Name] = struct {
			Index int
			Type  variant.Type
		}{sv.Index, sv.ValueType}
	}
	if sv.Content == ContentObject || sv.Content == ContentInternalState {
		c.byID[sv.ObjectID] = sv.Index
	}
	return sv.Index
}

// compiledNode pairs a built Computation with the object it belongs to,
// bucketed after every node has compiled.
type compiledNode struct {
	obj  *model.Object
	comp Computation
	vt   variant.Type
}

func (c *compilation) compileNode(o *model.Object, issues *issueSet) {
	switch o.Type {
	case model.TypeGraphicalFunction:
		c.compileGraphicalFunction(o, issues)
	case model.TypeDelay:
		c.compileDelay(o, issues)
	default:
		c.compileFormula(o, issues)
	}
}

func (c *compilation) compileFormula(o *model.Object, issues *issueSet) {
	ast, ok := c.asts.Get(o.ID)
	if !ok {
		// No formula attribute at all (e.g. a Stock with only a literal
		// initial-value constant folded at authoring time, or a Stock
		// whose value is driven purely by flows): treat as the constant
		// zero formula so every simulation object still has a
		// Computation and a state slot.
		ast = exprlang.Literal{Value: variant.Double(0)}
	}

	required := exprlang.FreeVars(ast)
	for b := range builtinNames {
		delete(required, b)
	}

	provided := map[string]bool{}
	for _, e := range c.view.IncomingParameters(o.ID) {
		src, err := c.view.Reader().ObjectByID(e.From)
		if err != nil {
			continue
		}
		provided[src.Name] = true
		if !required[src.Name] {
			issues.add(o.ID, frame.NodeIssue{Kind: frame.UnusedInput, Name: src.Name})
		}
	}
	for name := range required {
		if !provided[name] {
			issues.add(o.ID, frame.NodeIssue{Kind: frame.UnknownParameter, Name: name})
		}
	}
	if len(issues.forNode(o.ID)) > 0 {
		return
	}

	bound, err := binder.Bind(ast, c.symbols, c.functions)
	if err != nil {
		issues.add(o.ID, frame.NodeIssue{Kind: frame.ExpressionError, Err: err})
		return
	}

	c.allocate(StateVariable{
		Content: ContentObject, ObjectID: o.ID, ValueType: variant.TypeDouble, Name: o.Name,
	})
	c.results = append(c.results, compiledNode{
		obj: o,
		vt:  variant.TypeDouble,
		comp: Computation{
			Kind:    ComputationFormula,
			Formula: BoundFormula{Expr: bound},
		},
	})
}

func (c *compilation) compileGraphicalFunction(o *model.Object, issues *issueSet) {
	params := c.view.IncomingParameters(o.ID)
	if len(params) != 1 {
		issues.add(o.ID, frame.NodeIssue{Kind: frame.MissingRequiredParameter})
		return
	}
	paramIdx, ok := c.byID[params[0].From]
	if !ok {
		issues.add(o.ID, frame.NodeIssue{Kind: frame.MissingRequiredParameter})
		return
	}

	points := o.Points(model.AttrPoints)
	if interp := o.AttributeString(model.AttrInterpolation, model.InterpolationStep); interp != "" && interp != model.InterpolationStep {
		log.Warn().Str("node", o.Name).Str("interpolation", interp).
			Msg("only step interpolation is implemented; falling back to nearest-point")
	}

	fn := buildGraphicalFunction(o.Name, points)

	c.allocate(StateVariable{Content: ContentObject, ObjectID: o.ID, ValueType: variant.TypeDouble, Name: o.Name})
	c.results = append(c.results, compiledNode{
		obj: o,
		vt:  variant.TypeDouble,
		comp: Computation{
			Kind:              ComputationGraphicalFunction,
			GraphicalFunction: fn,
			GFParameterIndex:  paramIdx,
		},
	})
}

func (c *compilation) compileDelay(o *model.Object, issues *issueSet) {
	params := c.view.IncomingParameters(o.ID)
	if len(params) != 1 {
		issues.add(o.ID, frame.NodeIssue{Kind: frame.MissingRequiredParameter})
		return
	}
	paramIdx, ok := c.byID[params[0].From]
	if !ok {
		issues.add(o.ID, frame.NodeIssue{Kind: frame.MissingRequiredParameter})
		return
	}

	duration := o.AttributeDouble(model.AttrDuration, 0)
	var initial variant.Value
	hasInitial := false
	if v, err := o.Attribute(model.AttrInitialValue); err == nil {
		initial = v
		hasInitial = true
	}
	if !hasInitial {
		// Treated as a hard compile-time failure rather than deferring to
		// the first step where time < duration: a delay with no initial
		// value can never be simulated, so there is nothing to gain by
		// waiting until runtime to say so.
		issues.add(o.ID, frame.NodeIssue{Kind: frame.MissingDelayInitialValue})
		return
	}

	queueIdx := c.allocate(StateVariable{
		Content: ContentInternalState, ObjectID: o.ID, ValueType: variant.TypeDoubleArray,
		Name: o.Name + "$queue",
	})
	c.allocate(StateVariable{Content: ContentObject, ObjectID: o.ID, ValueType: variant.TypeDouble, Name: o.Name})

	c.results = append(c.results, compiledNode{
		obj: o,
		vt:  variant.TypeDouble,
		comp: Computation{
			Kind: ComputationDelay,
			Delay: CompiledDelay{
				QueueStateIndex:     queueIdx,
				Duration:            duration,
				InitialValue:        initial,
				HasInitialValue:     hasInitial,
				ParameterStateIndex: paramIdx,
				ValueType:           variant.TypeDouble,
			},
		},
	})
}
