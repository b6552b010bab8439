package frame

import (
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
)

// View is the read-only projection the compiler queries (§4.2). It holds
// no state of its own beyond the Reader it wraps; every method is a pure
// query.
type View struct {
	r Reader
}

// NewView wraps a Reader.
func NewView(r Reader) *View { return &View{r: r} }

// Reader exposes the underlying Reader, for components (the Transform
// pass, the Compiler) that need raw access alongside View's projections.
func (v *View) Reader() Reader { return v.r }

// SimulationNodes returns every object whose type participates in
// simulation (Formula-bearing, GraphicalFunction, or Delay).
func (v *View) SimulationNodes() []*model.Object {
	var out []*model.Object
	for _, o := range v.r.Objects() {
		if o.Type.IsSimulationType() {
			out = append(out, o)
		}
	}
	return out
}

// NamedObjects returns every object that declares a non-empty name.
func (v *View) NamedObjects() []*model.Object {
	var out []*model.Object
	for _, o := range v.r.Objects() {
		if o.Name != "" {
			out = append(out, o)
		}
	}
	return out
}

// ObjectByName looks up an object by its declared name.
func (v *View) ObjectByName(name string) (*model.Object, bool) {
	o, err := v.r.ObjectByName(name)
	if err != nil {
		return nil, false
	}
	return o, true
}

// IncomingParameters returns the Parameter edges whose To matches id: the
// set of named values this node's formula may reference.
func (v *View) IncomingParameters(id ids.ObjectID) []*model.Edge {
	return v.r.IncomingEdges(id, model.TypeParameter)
}

// OutgoingDrains returns the Drains edges originating at id (stock -> flow).
func (v *View) OutgoingDrains(id ids.ObjectID) []*model.Edge {
	return v.r.OutgoingEdges(id, model.TypeDrains)
}

// IncomingDrains returns the Drains edges terminating at id.
func (v *View) IncomingDrains(id ids.ObjectID) []*model.Edge {
	return v.r.IncomingEdges(id, model.TypeDrains)
}

// OutgoingFills returns the Fills edges originating at id (flow -> stock).
func (v *View) OutgoingFills(id ids.ObjectID) []*model.Edge {
	return v.r.OutgoingEdges(id, model.TypeFills)
}

// IncomingFills returns the Fills edges terminating at id.
func (v *View) IncomingFills(id ids.ObjectID) []*model.Edge {
	return v.r.IncomingEdges(id, model.TypeFills)
}

// OutgoingImplicitFlows returns the ImplicitFlow edges originating at id.
func (v *View) OutgoingImplicitFlows(id ids.ObjectID) []*model.Edge {
	return v.r.OutgoingEdges(id, model.TypeImplicitFlow)
}

// IncomingImplicitFlows returns the ImplicitFlow edges terminating at id.
func (v *View) IncomingImplicitFlows(id ids.ObjectID) []*model.Edge {
	return v.r.IncomingEdges(id, model.TypeImplicitFlow)
}

// Charts returns every Chart object.
func (v *View) Charts() []*model.Object {
	var out []*model.Object
	for _, o := range v.r.Objects() {
		if o.Type == model.TypeChart {
			out = append(out, o)
		}
	}
	return out
}

// ValueBindings returns every ValueBinding edge.
func (v *View) ValueBindings() []*model.Edge {
	return v.r.EdgesOfType(model.TypeValueBinding)
}

// TopologicalSort orders nodes by the edges of the given type restricted
// to endpoints within nodes, returning *GraphCycle if the induced graph
// has one.
func (v *View) TopologicalSort(nodes []*model.Object, edgeType model.ObjectType) ([]*model.Object, error) {
	inSet := make(map[ids.ObjectID]bool, len(nodes))
	byID := make(map[ids.ObjectID]*model.Object, len(nodes))
	order := make([]ids.ObjectID, len(nodes))
	for i, n := range nodes {
		inSet[n.ID] = true
		byID[n.ID] = n
		order[i] = n.ID
	}

	adjacency := make(map[ids.ObjectID][]ids.ObjectID)
	for _, e := range v.r.EdgesOfType(edgeType) {
		if inSet[e.From] && inSet[e.To] {
			adjacency[e.From] = append(adjacency[e.From], e.To)
		}
	}

	sorted, err := topologicalSort(order, adjacency)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Object, len(sorted))
	for i, id := range sorted {
		out[i] = byID[id]
	}
	return out, nil
}
