package postgresframe

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/uptrace/bun"

	"github.com/stockflow/sdsim/pkg/ids"
	"github.com/stockflow/sdsim/pkg/model"
)

// attributesJSON adapts model.Attributes to a JSONB column: Value,
// Scan give bun a plain encoding/json round trip through driver.Value.
type attributesJSON model.Attributes

func (a attributesJSON) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *attributesJSON) Scan(value interface{}) error {
	if value == nil {
		*a = attributesJSON{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("postgresframe: attributes column is neither []byte nor string")
	}
	if len(raw) == 0 {
		*a = attributesJSON{}
		return nil
	}
	return json.Unmarshal(raw, (*model.Attributes)(a))
}

// objectRow is the row shape for the design_graph_objects table: one row
// per Stock, Flow, Auxiliary, GraphicalFunction, Delay, Control, Chart, or
// ChartSeries node.
type objectRow struct {
	bun.BaseModel `bun:"table:design_graph_objects,alias:o"`

	ID         string         `bun:"id,pk,type:uuid"`
	Type       string         `bun:"type,notnull"`
	Name       string         `bun:"name,notnull"`
	Attributes attributesJSON `bun:"attributes,type:jsonb,notnull,default:'{}'"`
}

// edgeRow is the row shape for the design_graph_edges table: Parameter,
// Drains, Fills, ImplicitFlow, or ValueBinding connections between two
// objectRow ids.
type edgeRow struct {
	bun.BaseModel `bun:"table:design_graph_edges,alias:e"`

	ID         string         `bun:"id,pk,type:uuid"`
	Type       string         `bun:"type,notnull"`
	FromID     string         `bun:"from_id,notnull,type:uuid"`
	ToID       string         `bun:"to_id,notnull,type:uuid"`
	Attributes attributesJSON `bun:"attributes,type:jsonb,notnull,default:'{}'"`
}

func (r *objectRow) toObject() *model.Object {
	return &model.Object{
		ID:         ids.ObjectID(r.ID),
		Type:       model.ObjectType(r.Type),
		Name:       r.Name,
		Attributes: model.Attributes(r.Attributes),
	}
}

func (r *edgeRow) toEdge() *model.Edge {
	return &model.Edge{
		ID:         ids.ObjectID(r.ID),
		Type:       model.ObjectType(r.Type),
		From:       ids.ObjectID(r.FromID),
		To:         ids.ObjectID(r.ToID),
		Attributes: model.Attributes(r.Attributes),
	}
}

func fromObject(o *model.Object) *objectRow {
	return &objectRow{
		ID:         string(o.ID),
		Type:       string(o.Type),
		Name:       o.Name,
		Attributes: attributesJSON(o.Attributes),
	}
}

func fromEdge(e *model.Edge) *edgeRow {
	return &edgeRow{
		ID:         string(e.ID),
		Type:       string(e.Type),
		FromID:     string(e.From),
		ToID:       string(e.To),
		Attributes: attributesJSON(e.Attributes),
	}
}
