package frame

import (
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
)

// syncImplicitFlows is the implicit-flows pass: for every Flow with both
// a Drains edge from some stock A and a Fills edge to some stock B,
// ensure exactly one ImplicitFlow edge A->B exists in the system plane,
// and remove any ImplicitFlow edges that no longer correspond to a live
// Drains+Fills pair. The resulting A->B edges are the stock-dependency
// graph used later for non-negative arbitration ordering.
func syncImplicitFlows(m Mutator) {
	wanted := make(map[[2]ids.ObjectID]bool)
	for _, flow := range m.Objects() {
		if flow.Type != model.TypeFlow {
			continue
		}
		drains := m.IncomingEdges(flow.ID, model.TypeDrains)
		fills := m.OutgoingEdges(flow.ID, model.TypeFills)
		if len(drains) == 0 || len(fills) == 0 {
			continue
		}
		for _, d := range drains {
			for _, f := range fills {
				if d.From == f.To {
					continue // A == B: draining and filling the same stock is not an implicit dependency
				}
				wanted[[2]ids.ObjectID{d.From, f.To}] = true
			}
		}
	}

	existing := m.EdgesOfType(model.TypeImplicitFlow)
	present := make(map[[2]ids.ObjectID]ids.ObjectID, len(existing))
	for _, e := range existing {
		key := [2]ids.ObjectID{e.From, e.To}
		if present[key] != "" {
			m.RemoveEdge(e.ID) // duplicate of one already kept
			continue
		}
		present[key] = e.ID
		if !wanted[key] {
			m.RemoveEdge(e.ID)
			delete(present, key)
		}
	}

	for key := range wanted {
		if _, ok := present[key]; ok {
			continue
		}
		m.AddEdge(&model.Edge{
			Type: model.TypeImplicitFlow,
			From: key[0],
			To:   key[1],
		})
	}
}
