package model

import (
	"fmt"

	"github.com/stockflow/sdsim/pkg/ids"
)

// Store is a simple in-memory, mutable multigraph implementation of the
// design graph. It is deliberately minimal: no undo/redo, no persistence,
// no change notifications — those belong to the external collaborator the
// specification places out of scope. Store exists so the compiler has a
// concrete, easily-constructed Reader to compile against in tests and
// examples, and so the illustrative Postgres adapter has something to load
// into before handing a read-only view to the compiler.
type Store struct {
	objects []*Object
	edges   []*Edge

	byID   map[ids.ObjectID]*Object
	byName map[string]*Object
}

// NewStore returns an empty design graph.
func NewStore() *Store {
	return &Store{
		byID:   make(map[ids.ObjectID]*Object),
		byName: make(map[string]*Object),
	}
}

// AddObject inserts a node/unstructured object, assigning it a fresh id if
// one was not already set. Duplicate ids are rejected; duplicate names are
// allowed at this layer (DuplicateName is a compile-time diagnostic, not a
// store-level invariant — two stocks may share a name right up until
// compilation rejects them).
func (s *Store) AddObject(o *Object) (ids.ObjectID, error) {
	if o.ID.Empty() {
		o.ID = ids.New()
	}
	if _, exists := s.byID[o.ID]; exists {
		return "", fmt.Errorf("model: object id %s already exists", o.ID)
	}
	s.objects = append(s.objects, o)
	s.byID[o.ID] = o
	if o.Name != "" {
		if _, taken := s.byName[o.Name]; !taken {
			s.byName[o.Name] = o
		}
	}
	return o.ID, nil
}

// AddEdge inserts an edge, validating that both endpoints already exist.
func (s *Store) AddEdge(e *Edge) (ids.ObjectID, error) {
	if e.From == e.To {
		return "", ErrSelfEdge
	}
	if _, ok := s.byID[e.From]; !ok {
		return "", fmt.Errorf("%w: from=%s", ErrInvalidEdgeEnds, e.From)
	}
	if _, ok := s.byID[e.To]; !ok {
		return "", fmt.Errorf("%w: to=%s", ErrInvalidEdgeEnds, e.To)
	}
	if e.ID.Empty() {
		e.ID = ids.New()
	}
	s.edges = append(s.edges, e)
	return e.ID, nil
}

// RemoveEdge deletes the first edge matching id, if any.
func (s *Store) RemoveEdge(id ids.ObjectID) {
	for i, e := range s.edges {
		if e.ID == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return
		}
	}
}

// Objects returns every object in the graph (nodes and unstructured alike).
func (s *Store) Objects() []*Object {
	return s.objects
}

// Edges returns every edge in the graph.
func (s *Store) Edges() []*Edge {
	return s.edges
}

// ObjectByID looks up an object by id.
func (s *Store) ObjectByID(id ids.ObjectID) (*Object, error) {
	o, ok := s.byID[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return o, nil
}

// ObjectByName looks up an object by its declared name.
func (s *Store) ObjectByName(name string) (*Object, error) {
	o, ok := s.byName[name]
	if !ok {
		return nil, ErrNameNotFound
	}
	return o, nil
}

// EdgesOfType returns every edge of the given type.
func (s *Store) EdgesOfType(t ObjectType) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingEdges returns edges of the given type whose From matches id.
func (s *Store) OutgoingEdges(id ids.ObjectID, t ObjectType) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.Type == t && e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns edges of the given type whose To matches id.
func (s *Store) IncomingEdges(id ids.ObjectID, t ObjectType) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.Type == t && e.To == id {
			out = append(out, e)
		}
	}
	return out
}
