package compiler

import (
	"sort"

	"github.com/stockflow/sdsim/pkg/frame"
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
)

// assemble buckets the compiled nodes by type, orders stocks by implicit
// flow dependency, and builds the final CompiledModel (§4.4 steps 5-9).
func (c *compilation) assemble(view *frame.View, issues *issueSet) *CompiledModel {
	var simObjs []SimulationObject
	var stockObjs []*model.Object
	var flows []CompiledFlow
	var auxiliaries []SimulationObject

	for _, r := range c.results {
		idx := c.byID[r.obj.ID]
		switch r.obj.Type {
		case model.TypeStock:
			simObjs = append(simObjs, SimulationObject{
				ID: r.obj.ID, Kind: KindStock, VariableIndex: idx, ValueType: r.vt,
				Computation: r.comp, Name: r.obj.Name,
			})
			stockObjs = append(stockObjs, r.obj)
		case model.TypeFlow:
			so := SimulationObject{
				ID: r.obj.ID, Kind: KindFlow, VariableIndex: idx, ValueType: r.vt,
				Computation: r.comp, Name: r.obj.Name,
			}
			simObjs = append(simObjs, so)
			flows = append(flows, CompiledFlow{ID: r.obj.ID, VariableIndex: idx, Priority: r.obj.Priority()})
		default: // Auxiliary, GraphicalFunction, Delay
			so := SimulationObject{
				ID: r.obj.ID, Kind: KindAuxiliary, VariableIndex: idx, ValueType: r.vt,
				Computation: r.comp, Name: r.obj.Name,
			}
			simObjs = append(simObjs, so)
			auxiliaries = append(auxiliaries, so)
		}
	}

	orderedStocks := sortStocks(view, stockObjs, issues)
	if !issues.empty() {
		return nil
	}

	var compiledStocks []CompiledStock
	stockAt := map[ids.ObjectID]int{}
	for _, o := range orderedStocks {
		var inflows, outflows []int
		for _, e := range view.IncomingFills(o.ID) {
			if idx, ok := c.byID[e.From]; ok {
				inflows = append(inflows, idx)
			}
		}
		type outflowRef struct {
			idx      int
			priority int
		}
		var refs []outflowRef
		for _, e := range view.OutgoingDrains(o.ID) {
			if idx, ok := c.byID[e.To]; ok {
				target, err := view.Reader().ObjectByID(e.To)
				priority := 0
				if err == nil {
					priority = target.Priority()
				}
				refs = append(refs, outflowRef{idx: idx, priority: priority})
			}
		}
		sort.SliceStable(refs, func(i, j int) bool { return refs[i].priority < refs[j].priority })
		for _, r := range refs {
			outflows = append(outflows, r.idx)
		}

		allowsNegative := o.AttributeBool(model.AttrAllowsNegative, true)
		delayedInflow := o.AttributeBool(model.AttrDelayedInflow, false)

		stockAt[o.ID] = len(compiledStocks)
		compiledStocks = append(compiledStocks, CompiledStock{
			ID:             o.ID,
			VariableIndex:  c.byID[o.ID],
			AllowsNegative: allowsNegative,
			DelayedInflow:  delayedInflow,
			Inflows:        inflows,
			Outflows:       outflows,
		})
	}

	var bindings []CompiledControlBinding
	for _, e := range view.ValueBindings() {
		if idx, ok := c.byID[e.To]; ok {
			bindings = append(bindings, CompiledControlBinding{ControlID: e.From, TargetVariableIndex: idx})
		}
	}

	defaults := DefaultSimulationDefaults()
	for _, o := range view.Reader().Objects() {
		if o.Type != model.TypeSimulationDefaults {
			continue
		}
		defaults.InitialTime = o.AttributeDouble(model.AttrInitialTime, defaults.InitialTime)
		defaults.TimeDelta = o.AttributeDouble(model.AttrTimeDelta, defaults.TimeDelta)
		defaults.Steps = int(o.AttributeDouble(model.AttrSteps, float64(defaults.Steps)))
		break
	}

	return &CompiledModel{
		StateVariables:         c.stateVars,
		TimeVariableIndex:      0,
		TimeDeltaVariableIndex: 1,
		SimulationObjects:      simObjs,
		Stocks:                 compiledStocks,
		Flows:                  flows,
		Auxiliaries:            auxiliaries,
		ValueBindings:          bindings,
		Functions:              c.functions,
		SimulationDefaults:     defaults,
		byID:                   c.byID,
		byName:                 c.byName,
		stockAt:                stockAt,
	}
}

// sortStocks orders stocks by the implicit stock->stock graph (§4.4 step
// 6). A cycle is tolerated only if every stock on it has DelayedInflow
// set; in that case the cycle's edges are dropped from the dependency
// graph and the sort retried, since a delayed inflow breaks the
// same-step ordering requirement.
func sortStocks(view *frame.View, stocks []*model.Object, issues *issueSet) []*model.Object {
	byID := make(map[ids.ObjectID]*model.Object, len(stocks))
	vertices := make([]ids.ObjectID, len(stocks))
	for i, o := range stocks {
		byID[o.ID] = o
		vertices[i] = o.ID
	}

	adjacency := make(map[ids.ObjectID][]ids.ObjectID)
	for _, o := range stocks {
		for _, e := range view.OutgoingImplicitFlows(o.ID) {
			if _, ok := byID[e.To]; ok {
				adjacency[o.ID] = append(adjacency[o.ID], e.To)
			}
		}
	}

	for attempt := 0; attempt < len(stocks)+1; attempt++ {
		order, err := frame.TopologicalSort(vertices, adjacency)
		if err == nil {
			out := make([]*model.Object, len(order))
			for i, id := range order {
				out[i] = byID[id]
			}
			return out
		}
		cyc, ok := err.(*frame.GraphCycle)
		if !ok {
			return nil
		}
		allDelayed := true
		cycleSet := make(map[ids.ObjectID]bool, len(cyc.Nodes))
		for _, id := range cyc.Nodes {
			cycleSet[id] = true
			if !byID[id].AttributeBool(model.AttrDelayedInflow, false) {
				allDelayed = false
			}
		}
		if !allDelayed {
			for _, id := range cyc.Nodes {
				issues.add(id, frame.NodeIssue{Kind: frame.FlowCycle})
			}
			return nil
		}
		for u, targets := range adjacency {
			if !cycleSet[u] {
				continue
			}
			var kept []ids.ObjectID
			for _, v := range targets {
				if !cycleSet[v] {
					kept = append(kept, v)
				}
			}
			adjacency[u] = kept
		}
	}
	for _, o := range stocks {
		issues.add(o.ID, frame.NodeIssue{Kind: frame.FlowCycle})
	}
	return nil
}
