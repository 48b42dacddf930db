package message

import (
	"image/color"
	"slices"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/xviz/packer"
	"go.viam.com/xviz/tree"
)

// StateUpdate is one frame of XVIZ data.
type StateUpdate struct {
	UpdateType UpdateType  `json:"update_type"`
	Updates    []StreamSet `json:"updates"`
}

// StreamSet holds every stream's data at one timestamp.
type StreamSet struct {
	// Timestamp is nil when no stream stamped the frame.
	Timestamp    *float64                    `json:"timestamp,omitempty"`
	Poses        map[string]Pose             `json:"poses,omitempty"`
	Primitives   map[string]PrimitiveState   `json:"primitives,omitempty"`
	Variables    map[string]VariableState    `json:"variables,omitempty"`
	TimeSeries   []TimeSeriesState           `json:"time_series,omitempty"`
	UIPrimitives map[string]UIPrimitiveState `json:"ui_primitives,omitempty"`
	Links        map[string]Link             `json:"links,omitempty"`
}

// MapOrigin anchors a pose on the globe.
type MapOrigin struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// Pose is the position and orientation (roll, pitch, yaw) of a frame of reference.
type Pose struct {
	Timestamp   float64    `json:"timestamp"`
	MapOrigin   *MapOrigin `json:"map_origin,omitempty"`
	Position    *r3.Vector `json:"position,omitempty"`
	Orientation *r3.Vector `json:"orientation,omitempty"`
}

// PrimitiveBase carries the fields shared by all primitives.
type PrimitiveBase struct {
	ObjectID string         `json:"object_id,omitempty"`
	Style    map[string]any `json:"style,omitempty"`
	Classes  []string       `json:"classes,omitempty"`
}

// Polygon is a closed shape.
type Polygon struct {
	Vertices []r3.Vector   `json:"vertices"`
	Base     PrimitiveBase `json:"base,omitempty"`
}

// Polyline is an open path.
type Polyline struct {
	Vertices []r3.Vector   `json:"vertices"`
	Base     PrimitiveBase `json:"base,omitempty"`
}

// Point is a point cloud with optional per-point colors.
type Point struct {
	Points []r3.Vector   `json:"points"`
	Colors []color.NRGBA `json:"colors,omitempty"`
	Base   PrimitiveBase `json:"base,omitempty"`
}

// Circle is a disc in the plane of its center.
type Circle struct {
	Center r3.Vector     `json:"center"`
	Radius float64       `json:"radius"`
	Base   PrimitiveBase `json:"base,omitempty"`
}

// Text is a label.
type Text struct {
	Position r3.Vector     `json:"position"`
	Text     string        `json:"text"`
	Base     PrimitiveBase `json:"base,omitempty"`
}

// Image is an encoded image.
type Image struct {
	Data     []byte        `json:"data"`
	Format   string        `json:"format,omitempty"`
	WidthPx  int           `json:"width_px,omitempty"`
	HeightPx int           `json:"height_px,omitempty"`
	Position *r3.Vector    `json:"position,omitempty"`
	Base     PrimitiveBase `json:"base,omitempty"`
}

// Stadium is a capsule between two points.
type Stadium struct {
	Start  r3.Vector     `json:"start"`
	End    r3.Vector     `json:"end"`
	Radius float64       `json:"radius"`
	Base   PrimitiveBase `json:"base,omitempty"`
}

// PrimitiveState is every primitive of one stream in a frame.
type PrimitiveState struct {
	Polygons  []Polygon  `json:"polygons,omitempty"`
	Polylines []Polyline `json:"polylines,omitempty"`
	Points    []Point    `json:"points,omitempty"`
	Circles   []Circle   `json:"circles,omitempty"`
	Texts     []Text     `json:"texts,omitempty"`
	Images    []Image    `json:"images,omitempty"`
	Stadiums  []Stadium  `json:"stadiums,omitempty"`
}

// Values holds one typed list of scalars. Exactly one field is set.
type Values struct {
	Doubles []float64 `json:"doubles,omitempty"`
	Int32s  []int32   `json:"int32s,omitempty"`
	Bools   []bool    `json:"bools,omitempty"`
	Strings []string  `json:"strings,omitempty"`
}

// Type returns the scalar type of the set field.
func (v Values) Type() ScalarType {
	switch {
	case v.Doubles != nil:
		return ScalarFloat
	case v.Int32s != nil:
		return ScalarInt32
	case v.Bools != nil:
		return ScalarBool
	case v.Strings != nil:
		return ScalarString
	default:
		return ""
	}
}

// Len returns the number of values.
func (v Values) Len() int {
	return len(v.Doubles) + len(v.Int32s) + len(v.Bools) + len(v.Strings)
}

// Variable is one list of values, optionally tied to an object.
type Variable struct {
	Values   Values `json:"values"`
	ObjectID string `json:"object_id,omitempty"`
}

// VariableState is every variable of one stream in a frame.
type VariableState struct {
	Variables []Variable `json:"variables"`
}

// TimeSeriesState is a group of time series streams sampled at the same time for the same
// object. Values[i] belongs to Streams[i].
type TimeSeriesState struct {
	Timestamp float64  `json:"timestamp"`
	Streams   []string `json:"streams"`
	Values    Values   `json:"values"`
	ObjectID  string   `json:"object_id,omitempty"`
}

// TreeTableColumn is a column of a tree table.
type TreeTableColumn struct {
	DisplayText string `json:"display_text"`
	Type        string `json:"type"`
	Unit        string `json:"unit,omitempty"`
}

// TreeTableNode is a row of a tree table. Parent is nil for roots.
type TreeTableNode struct {
	ID           int      `json:"id"`
	Parent       *int     `json:"parent,omitempty"`
	ColumnValues []string `json:"column_values,omitempty"`
}

// TreeTable is a hierarchical table.
type TreeTable struct {
	Columns []TreeTableColumn `json:"columns"`
	Nodes   []TreeTableNode   `json:"nodes"`
}

// UIPrimitiveState is the UI data of one stream in a frame.
type UIPrimitiveState struct {
	TreeTable *TreeTable `json:"treetable,omitempty"`
}

// Link attaches a stream to the pose stream it is expressed in.
type Link struct {
	TargetPose string `json:"target_pose"`
}

// MessageType implements Message.
func (s *StateUpdate) MessageType() string {
	return TypeStateUpdate
}

// Timestamps returns the timestamps of every update that has one, sorted ascending.
func (s *StateUpdate) Timestamps() []float64 {
	ts := lo.FilterMap(s.Updates, func(u StreamSet, _ int) (float64, bool) {
		if u.Timestamp == nil {
			return 0, false
		}
		return *u.Timestamp, true
	})
	slices.Sort(ts)
	return ts
}

// Tree implements Message. Geometry is flattened into packer.Vectors so binary encoders can
// move it into buffers.
func (s *StateUpdate) Tree() map[string]any {
	updates := make([]any, 0, len(s.Updates))
	for _, u := range s.Updates {
		updates = append(updates, u.tree())
	}
	return map[string]any{
		"update_type": string(s.UpdateType),
		"updates":     updates,
	}
}

func (u StreamSet) tree() map[string]any {
	out := map[string]any{}
	if u.Timestamp != nil {
		out["timestamp"] = *u.Timestamp
	}
	if len(u.Poses) > 0 {
		poses := make(map[string]any, len(u.Poses))
		for id, p := range u.Poses {
			poses[id] = p.tree()
		}
		out["poses"] = poses
	}
	if len(u.Primitives) > 0 {
		primitives := make(map[string]any, len(u.Primitives))
		for id, p := range u.Primitives {
			primitives[id] = p.tree()
		}
		out["primitives"] = primitives
	}
	if len(u.Variables) > 0 {
		variables := make(map[string]any, len(u.Variables))
		for id, v := range u.Variables {
			entries := make([]any, 0, len(v.Variables))
			for _, variable := range v.Variables {
				entry := map[string]any{"values": variable.Values.tree()}
				if variable.ObjectID != "" {
					entry["base"] = map[string]any{"object_id": variable.ObjectID}
				}
				entries = append(entries, entry)
			}
			variables[id] = map[string]any{"variables": entries}
		}
		out["variables"] = variables
	}
	if len(u.TimeSeries) > 0 {
		series := make([]any, 0, len(u.TimeSeries))
		for _, ts := range u.TimeSeries {
			entry := map[string]any{
				"timestamp": ts.Timestamp,
				"streams":   stringsToAny(ts.Streams),
				"values":    ts.Values.tree(),
			}
			if ts.ObjectID != "" {
				entry["object_id"] = ts.ObjectID
			}
			series = append(series, entry)
		}
		out["time_series"] = series
	}
	if len(u.UIPrimitives) > 0 {
		ui := make(map[string]any, len(u.UIPrimitives))
		for id, p := range u.UIPrimitives {
			entry := map[string]any{}
			if p.TreeTable != nil {
				entry["treetable"] = p.TreeTable.tree()
			}
			ui[id] = entry
		}
		out["ui_primitives"] = ui
	}
	if len(u.Links) > 0 {
		links := make(map[string]any, len(u.Links))
		for child, l := range u.Links {
			links[child] = map[string]any{"target_pose": l.TargetPose}
		}
		out["links"] = links
	}
	return out
}

func (p Pose) tree() map[string]any {
	out := map[string]any{"timestamp": p.Timestamp}
	if p.MapOrigin != nil {
		out["map_origin"] = map[string]any{
			"longitude": p.MapOrigin.Longitude,
			"latitude":  p.MapOrigin.Latitude,
			"altitude":  p.MapOrigin.Altitude,
		}
	}
	if p.Position != nil {
		out["position"] = vectorArray(*p.Position)
	}
	if p.Orientation != nil {
		out["orientation"] = vectorArray(*p.Orientation)
	}
	return out
}

func (p PrimitiveState) tree() map[string]any {
	out := map[string]any{}
	if len(p.Polygons) > 0 {
		out["polygons"] = lo.Map(p.Polygons, func(v Polygon, _ int) any {
			return withBase(map[string]any{"vertices": flatten(v.Vertices)}, v.Base)
		})
	}
	if len(p.Polylines) > 0 {
		out["polylines"] = lo.Map(p.Polylines, func(v Polyline, _ int) any {
			return withBase(map[string]any{"vertices": flatten(v.Vertices)}, v.Base)
		})
	}
	if len(p.Points) > 0 {
		out["points"] = lo.Map(p.Points, func(v Point, _ int) any {
			entry := map[string]any{"points": flatten(v.Points)}
			if len(v.Colors) > 0 {
				entry["colors"] = flattenColors(v.Colors)
			}
			return withBase(entry, v.Base)
		})
	}
	if len(p.Circles) > 0 {
		out["circles"] = lo.Map(p.Circles, func(v Circle, _ int) any {
			return withBase(map[string]any{"center": vectorArray(v.Center), "radius": v.Radius}, v.Base)
		})
	}
	if len(p.Texts) > 0 {
		out["texts"] = lo.Map(p.Texts, func(v Text, _ int) any {
			return withBase(map[string]any{"position": vectorArray(v.Position), "text": v.Text}, v.Base)
		})
	}
	if len(p.Images) > 0 {
		out["images"] = lo.Map(p.Images, func(v Image, _ int) any {
			entry := map[string]any{"data": append([]uint8(nil), v.Data...)}
			if v.Format != "" {
				entry["format"] = v.Format
			}
			if v.WidthPx > 0 {
				entry["width_px"] = float64(v.WidthPx)
			}
			if v.HeightPx > 0 {
				entry["height_px"] = float64(v.HeightPx)
			}
			if v.Position != nil {
				entry["position"] = vectorArray(*v.Position)
			}
			return withBase(entry, v.Base)
		})
	}
	if len(p.Stadiums) > 0 {
		out["stadiums"] = lo.Map(p.Stadiums, func(v Stadium, _ int) any {
			return withBase(map[string]any{
				"start":  vectorArray(v.Start),
				"end":    vectorArray(v.End),
				"radius": v.Radius,
			}, v.Base)
		})
	}
	return out
}

func (v Values) tree() map[string]any {
	switch {
	case v.Doubles != nil:
		return map[string]any{"doubles": append([]float64(nil), v.Doubles...)}
	case v.Int32s != nil:
		return map[string]any{"int32s": append([]int32(nil), v.Int32s...)}
	case v.Bools != nil:
		return map[string]any{"bools": lo.Map(v.Bools, func(b bool, _ int) any { return b })}
	case v.Strings != nil:
		return map[string]any{"strings": stringsToAny(v.Strings)}
	default:
		return map[string]any{}
	}
}

func (t *TreeTable) tree() map[string]any {
	columns := lo.Map(t.Columns, func(c TreeTableColumn, _ int) any {
		col := map[string]any{"display_text": c.DisplayText, "type": c.Type}
		if c.Unit != "" {
			col["unit"] = c.Unit
		}
		return col
	})
	nodes := lo.Map(t.Nodes, func(n TreeTableNode, _ int) any {
		node := map[string]any{"id": float64(n.ID)}
		if n.Parent != nil {
			node["parent"] = float64(*n.Parent)
		}
		if n.ColumnValues != nil {
			node["column_values"] = stringsToAny(n.ColumnValues)
		}
		return node
	})
	return map[string]any{"columns": columns, "nodes": nodes}
}

func withBase(entry map[string]any, base PrimitiveBase) map[string]any {
	b := map[string]any{}
	if base.ObjectID != "" {
		b["object_id"] = base.ObjectID
	}
	if len(base.Style) > 0 {
		b["style"] = cloneMap(base.Style)
	}
	if len(base.Classes) > 0 {
		b["classes"] = stringsToAny(base.Classes)
	}
	if len(b) > 0 {
		entry["base"] = b
	}
	return entry
}

func vectorArray(v r3.Vector) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// flatten packs vertices as float32 xyz triples, the precision XVIZ uses for geometry.
func flatten(vs []r3.Vector) packer.Vectors {
	data := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		data = append(data, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return packer.Vectors{Data: data, Size: 3}
}

func flattenColors(cs []color.NRGBA) packer.Vectors {
	data := make([]uint8, 0, 4*len(cs))
	for _, c := range cs {
		data = append(data, c.R, c.G, c.B, c.A)
	}
	return packer.Vectors{Data: data, Size: 4}
}

func stringsToAny(ss []string) []any {
	return lo.Map(ss, func(s string, _ int) any { return s })
}

func cloneMap(m map[string]any) map[string]any {
	cloned, err := tree.Rewrite(m, nil)
	if err != nil {
		return m
	}
	return cloned.(map[string]any)
}
