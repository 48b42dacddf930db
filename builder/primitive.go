package builder

import (
	"image/color"
	"maps"
	"slices"

	"github.com/golang/geo/r3"

	"go.viam.com/xviz/message"
)

type primitiveEntry struct {
	kind     message.PrimitiveType
	set      fields
	vertices []r3.Vector
	colors   []color.NRGBA
	center   r3.Vector
	end      r3.Vector
	radius   float64
	text     string
	data     []byte
	format   string
	position *r3.Vector
	widthPx  int
	heightPx int
	base     message.PrimitiveBase
}

// PrimitiveBuilder adds primitives to one stream. Each shape call starts a new primitive and
// the other setters apply to the latest one.
type PrimitiveBuilder struct {
	b        *Builder
	stream   string
	declared message.PrimitiveType
	enabled  bool
}

// Primitive scopes the builder to the primitive stream id.
func (b *Builder) Primitive(id string) (*PrimitiveBuilder, error) {
	s, enabled, err := b.scope(id, message.CategoryPrimitive)
	if err != nil {
		return nil, err
	}
	return &PrimitiveBuilder{b: b, stream: id, declared: s.PrimitiveType, enabled: enabled}, nil
}

// Polygon adds a closed polygon.
func (pb *PrimitiveBuilder) Polygon(vertices []r3.Vector) error {
	return pb.shape(message.PrimitivePolygon, func(e *primitiveEntry) {
		e.vertices = append([]r3.Vector(nil), vertices...)
	})
}

// Polyline adds an open path.
func (pb *PrimitiveBuilder) Polyline(vertices []r3.Vector) error {
	return pb.shape(message.PrimitivePolyline, func(e *primitiveEntry) {
		e.vertices = append([]r3.Vector(nil), vertices...)
	})
}

// Points adds a point cloud.
func (pb *PrimitiveBuilder) Points(points []r3.Vector) error {
	return pb.shape(message.PrimitivePoint, func(e *primitiveEntry) {
		e.vertices = append([]r3.Vector(nil), points...)
	})
}

// Circle adds a circle.
func (pb *PrimitiveBuilder) Circle(center r3.Vector, radius float64) error {
	return pb.shape(message.PrimitiveCircle, func(e *primitiveEntry) {
		e.center = center
		e.radius = radius
	})
}

// Text adds a text label.
func (pb *PrimitiveBuilder) Text(position r3.Vector, text string) error {
	return pb.shape(message.PrimitiveText, func(e *primitiveEntry) {
		e.center = position
		e.text = text
	})
}

// Image adds an encoded image, e.g. format "png".
func (pb *PrimitiveBuilder) Image(data []byte, format string) error {
	return pb.shape(message.PrimitiveImage, func(e *primitiveEntry) {
		e.data = append([]byte(nil), data...)
		e.format = format
	})
}

// Stadium adds a capsule from start to end.
func (pb *PrimitiveBuilder) Stadium(start, end r3.Vector, radius float64) error {
	return pb.shape(message.PrimitiveStadium, func(e *primitiveEntry) {
		e.center = start
		e.end = end
		e.radius = radius
	})
}

// ID sets the object id of the current primitive.
func (pb *PrimitiveBuilder) ID(id string) error {
	return pb.modify("id", nil, func(e *primitiveEntry) { e.base.ObjectID = id })
}

// Style sets per-object style of the current primitive.
func (pb *PrimitiveBuilder) Style(style map[string]any) error {
	return pb.modify("style", nil, func(e *primitiveEntry) { e.base.Style = maps.Clone(style) })
}

// Classes sets the style classes of the current primitive.
func (pb *PrimitiveBuilder) Classes(classes ...string) error {
	return pb.modify("classes", nil, func(e *primitiveEntry) {
		e.base.Classes = append([]string(nil), classes...)
	})
}

// Colors sets per-point colors of the current point primitive.
func (pb *PrimitiveBuilder) Colors(colors []color.NRGBA) error {
	return pb.modify("colors", []message.PrimitiveType{message.PrimitivePoint}, func(e *primitiveEntry) {
		e.colors = append([]color.NRGBA(nil), colors...)
	})
}

// Position places the current image primitive.
func (pb *PrimitiveBuilder) Position(position r3.Vector) error {
	return pb.modify("position", []message.PrimitiveType{message.PrimitiveImage}, func(e *primitiveEntry) {
		e.position = &position
	})
}

// Dimensions sets the pixel size of the current image primitive.
func (pb *PrimitiveBuilder) Dimensions(widthPx, heightPx int) error {
	return pb.modify("dimensions", []message.PrimitiveType{message.PrimitiveImage}, func(e *primitiveEntry) {
		e.widthPx = widthPx
		e.heightPx = heightPx
	})
}

func (pb *PrimitiveBuilder) shape(kind message.PrimitiveType, apply func(*primitiveEntry)) error {
	if err := pb.b.checkOpen(pb.stream); err != nil {
		return err
	}
	if !pb.enabled {
		return nil
	}
	if pb.declared != "" && pb.declared != kind {
		return &CategoryMismatchError{Stream: pb.stream, Want: string(pb.declared), Got: string(kind)}
	}
	if pb.b.baseline != nil && pb.b.baseline.Has(pb.stream) {
		return &PersistentModeViolationError{Stream: pb.stream, Field: string(kind)}
	}
	e := &primitiveEntry{kind: kind, set: fields{}}
	apply(e)
	pb.b.primitives[pb.stream] = append(pb.b.primitives[pb.stream], e)
	pb.b.touch()
	return nil
}

func (pb *PrimitiveBuilder) modify(field string, only []message.PrimitiveType, apply func(*primitiveEntry)) error {
	if err := pb.b.checkOpen(pb.stream); err != nil {
		return err
	}
	if !pb.enabled {
		return nil
	}
	entries := pb.b.primitives[pb.stream]
	if len(entries) == 0 {
		return &NoPrimitiveError{Stream: pb.stream, Field: field}
	}
	e := entries[len(entries)-1]
	if only != nil && !slices.Contains(only, e.kind) {
		return &UnsupportedFieldError{Stream: pb.stream, Field: field, Primitive: e.kind}
	}
	if err := e.set.set(pb.stream, field); err != nil {
		return err
	}
	apply(e)
	return nil
}

func (b *Builder) finishPrimitives(update *message.StreamSet) {
	if len(b.primitives) == 0 {
		return
	}
	update.Primitives = make(map[string]message.PrimitiveState, len(b.primitives))
	for id, entries := range b.primitives {
		var ps message.PrimitiveState
		for _, e := range entries {
			switch e.kind {
			case message.PrimitivePolygon:
				ps.Polygons = append(ps.Polygons, message.Polygon{Vertices: e.vertices, Base: e.base})
			case message.PrimitivePolyline:
				ps.Polylines = append(ps.Polylines, message.Polyline{Vertices: e.vertices, Base: e.base})
			case message.PrimitivePoint:
				ps.Points = append(ps.Points, message.Point{Points: e.vertices, Colors: e.colors, Base: e.base})
			case message.PrimitiveCircle:
				ps.Circles = append(ps.Circles, message.Circle{Center: e.center, Radius: e.radius, Base: e.base})
			case message.PrimitiveText:
				ps.Texts = append(ps.Texts, message.Text{Position: e.center, Text: e.text, Base: e.base})
			case message.PrimitiveImage:
				ps.Images = append(ps.Images, message.Image{
					Data:     e.data,
					Format:   e.format,
					WidthPx:  e.widthPx,
					HeightPx: e.heightPx,
					Position: e.position,
					Base:     e.base,
				})
			case message.PrimitiveStadium:
				ps.Stadiums = append(ps.Stadiums, message.Stadium{Start: e.center, End: e.end, Radius: e.radius, Base: e.base})
			}
		}
		update.Primitives[id] = ps
	}
}
