package postgresframe

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
)

// Reader is a frame.Reader loaded once from Postgres and held entirely in
// memory thereafter. It satisfies the same narrow surface model.Store
// does, so the compiler cannot tell the difference between a design graph
// that lives in a test fixture and one that lives in a database — that
// indifference is the point of the Reader interface.
//
// Reader takes no write path: refreshing a snapshot means constructing a
// new one with Load.
type Reader struct {
	objects []*model.Object
	edges   []*model.Edge

	byID   map[ids.ObjectID]*model.Object
	byName map[string]*model.Object
}

// Load reads every object and edge row into memory and builds a Reader.
func Load(ctx context.Context, db *bun.DB) (*Reader, error) {
	var objRows []objectRow
	if err := db.NewSelect().Model(&objRows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("postgresframe: load objects: %w", err)
	}
	var edgeRows []edgeRow
	if err := db.NewSelect().Model(&edgeRows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("postgresframe: load edges: %w", err)
	}

	r := &Reader{
		byID:   make(map[ids.ObjectID]*model.Object, len(objRows)),
		byName: make(map[string]*model.Object, len(objRows)),
	}
	for i := range objRows {
		o := objRows[i].toObject()
		r.objects = append(r.objects, o)
		r.byID[o.ID] = o
		if o.Name != "" {
			if _, taken := r.byName[o.Name]; !taken {
				r.byName[o.Name] = o
			}
		}
	}
	for i := range edgeRows {
		r.edges = append(r.edges, edgeRows[i].toEdge())
	}
	return r, nil
}

// Persist writes every object and edge in s into the database, replacing
// whatever rows already exist for those ids. It is the one write path this
// package offers, meant for seeding a snapshot from an in-memory
// model.Store — not for incremental synchronization.
func Persist(ctx context.Context, db *bun.DB, s *model.Store) error {
	objs := s.Objects()
	rows := make([]*objectRow, len(objs))
	for i, o := range objs {
		rows[i] = fromObject(o)
	}
	if len(rows) > 0 {
		if _, err := db.NewInsert().Model(&rows).
			On("CONFLICT (id) DO UPDATE").
			Set("type = EXCLUDED.type, name = EXCLUDED.name, attributes = EXCLUDED.attributes").
			Exec(ctx); err != nil {
			return fmt.Errorf("postgresframe: persist objects: %w", err)
		}
	}

	edges := s.Edges()
	edgeRows := make([]*edgeRow, len(edges))
	for i, e := range edges {
		edgeRows[i] = fromEdge(e)
	}
	if len(edgeRows) > 0 {
		if _, err := db.NewInsert().Model(&edgeRows).
			On("CONFLICT (id) DO UPDATE").
			Set("type = EXCLUDED.type, from_id = EXCLUDED.from_id, to_id = EXCLUDED.to_id, attributes = EXCLUDED.attributes").
			Exec(ctx); err != nil {
			return fmt.Errorf("postgresframe: persist edges: %w", err)
		}
	}
	return nil
}

func (r *Reader) Objects() []*model.Object { return r.objects }
func (r *Reader) Edges() []*model.Edge     { return r.edges }

func (r *Reader) ObjectByID(id ids.ObjectID) (*model.Object, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, model.ErrObjectNotFound
	}
	return o, nil
}

func (r *Reader) ObjectByName(name string) (*model.Object, error) {
	o, ok := r.byName[name]
	if !ok {
		return nil, model.ErrNameNotFound
	}
	return o, nil
}

func (r *Reader) EdgesOfType(t model.ObjectType) []*model.Edge {
	var out []*model.Edge
	for _, e := range r.edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *Reader) OutgoingEdges(id ids.ObjectID, t model.ObjectType) []*model.Edge {
	var out []*model.Edge
	for _, e := range r.edges {
		if e.Type == t && e.From == id {
			out = append(out, e)
		}
	}
	return out
}

func (r *Reader) IncomingEdges(id ids.ObjectID, t model.ObjectType) []*model.Edge {
	var out []*model.Edge
	for _, e := range r.edges {
		if e.Type == t && e.To == id {
			out = append(out, e)
		}
	}
	return out
}
