// Package frame implements the read-only query layer the compiler runs
// against (the "Frame View" of the specification), plus the
// pre-compilation transform passes that prepare a frame for compilation.
// View and the compiler-facing queries never mutate the underlying design
// graph; the one exception is the implicit-flows pass, which adds and
// removes the system-synthesised ImplicitFlow edges through a Mutator.
package frame

import (
	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
)

// Reader is the narrow surface the core depends on (§6): enumerate
// objects/edges by type, read attributes by name, look up by name or id,
// iterate neighbours by edge type. model.Store satisfies this
// structurally; so does any other backing store, such as the illustrative
// Postgres adapter.
type Reader interface {
	Objects() []*model.Object
	Edges() []*model.Edge
	ObjectByID(id ids.ObjectID) (*model.Object, error)
	ObjectByName(name string) (*model.Object, error)
	EdgesOfType(t model.ObjectType) []*model.Edge
	OutgoingEdges(id ids.ObjectID, t model.ObjectType) []*model.Edge
	IncomingEdges(id ids.ObjectID, t model.ObjectType) []*model.Edge
}
