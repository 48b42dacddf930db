package builder

import (
	"maps"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/xviz/message"
)

// MetadataBuilder declares the streams of a log.
type MetadataBuilder struct {
	streams   map[string]*StreamDeclaration
	order     []string
	set       fields
	startTime *float64
	endTime   *float64
	ui        map[string]any
}

// NewMetadata returns an empty metadata builder.
func NewMetadata() *MetadataBuilder {
	return &MetadataBuilder{
		streams: map[string]*StreamDeclaration{},
		set:     fields{},
		ui:      map[string]any{},
	}
}

// StreamDeclaration describes one stream. Each field can be set once.
type StreamDeclaration struct {
	id   string
	set  fields
	meta message.StreamMetadata
}

// Stream declares the stream id.
func (mb *MetadataBuilder) Stream(id string) (*StreamDeclaration, error) {
	if _, ok := mb.streams[id]; ok {
		return nil, &DuplicateAssignmentError{Stream: id, Field: "declaration"}
	}
	d := &StreamDeclaration{id: id, set: fields{}}
	mb.streams[id] = d
	mb.order = append(mb.order, id)
	return d, nil
}

// StartTime sets the start of the log.
func (mb *MetadataBuilder) StartTime(ts float64) error {
	if err := mb.set.set("", "start_time"); err != nil {
		return err
	}
	mb.startTime = &ts
	return nil
}

// EndTime sets the end of the log.
func (mb *MetadataBuilder) EndTime(ts float64) error {
	if err := mb.set.set("", "end_time"); err != nil {
		return err
	}
	mb.endTime = &ts
	return nil
}

// UI adds a named panel to the UI configuration.
func (mb *MetadataBuilder) UI(name string, panel map[string]any) error {
	if _, ok := mb.ui[name]; ok {
		return &DuplicateAssignmentError{Stream: name, Field: "ui panel"}
	}
	mb.ui[name] = maps.Clone(panel)
	return nil
}

// GetMetadata returns the declared metadata. Every stream needs a category.
func (mb *MetadataBuilder) GetMetadata() (*message.Metadata, error) {
	md := &message.Metadata{
		Version: message.ProtocolVersion,
		Streams: make(map[string]message.StreamMetadata, len(mb.streams)),
	}
	var errs error
	for _, id := range mb.order {
		d := mb.streams[id]
		if d.meta.Category == "" {
			errs = multierr.Append(errs, &ValidationError{Stream: id, Reason: "no category"})
			continue
		}
		md.Streams[id] = d.meta
	}
	if errs != nil {
		return nil, errs
	}
	if mb.startTime != nil || mb.endTime != nil {
		md.LogInfo = &message.LogInfo{}
		if mb.startTime != nil {
			md.LogInfo.StartTime = *mb.startTime
		}
		if mb.endTime != nil {
			md.LogInfo.EndTime = *mb.endTime
		}
	}
	if len(mb.ui) > 0 {
		md.UIConfig = maps.Clone(mb.ui)
	}
	return md, nil
}

// Category sets the category of the stream.
func (d *StreamDeclaration) Category(c message.Category) error {
	if !slices.Contains(categories, c) {
		return errors.Errorf("stream %q: unknown category %q", d.id, c)
	}
	if err := d.set.set(d.id, "category"); err != nil {
		return err
	}
	d.meta.Category = c
	return nil
}

// Type sets the primitive type of a PRIMITIVE stream or the scalar type of a TIME_SERIES or
// VARIABLE stream. The category must be set first.
func (d *StreamDeclaration) Type(t string) error {
	switch d.meta.Category {
	case message.CategoryPrimitive:
		if !slices.Contains(primitiveTypes, message.PrimitiveType(t)) {
			return errors.Errorf("stream %q: unknown primitive type %q", d.id, t)
		}
		if err := d.set.set(d.id, "type"); err != nil {
			return err
		}
		d.meta.PrimitiveType = message.PrimitiveType(t)
	case message.CategoryTimeSeries, message.CategoryVariable:
		if !slices.Contains(scalarTypes, message.ScalarType(t)) {
			return errors.Errorf("stream %q: unknown scalar type %q", d.id, t)
		}
		if err := d.set.set(d.id, "type"); err != nil {
			return err
		}
		d.meta.ScalarType = message.ScalarType(t)
	default:
		return errors.Errorf("stream %q: category %q has no type", d.id, d.meta.Category)
	}
	return nil
}

// Unit sets the unit of the stream's values.
func (d *StreamDeclaration) Unit(unit string) error {
	if err := d.set.set(d.id, "unit"); err != nil {
		return err
	}
	d.meta.Unit = unit
	return nil
}

// Coordinate sets the coordinate system of the stream, e.g. IDENTITY or VEHICLE_RELATIVE.
func (d *StreamDeclaration) Coordinate(coordinate string) error {
	if err := d.set.set(d.id, "coordinate"); err != nil {
		return err
	}
	d.meta.Coordinate = coordinate
	return nil
}

// StreamStyle sets the default style of every object in the stream.
func (d *StreamDeclaration) StreamStyle(style map[string]any) error {
	if err := d.set.set(d.id, "stream_style"); err != nil {
		return err
	}
	d.meta.StreamStyle = maps.Clone(style)
	return nil
}

var (
	categories = []message.Category{
		message.CategoryPose,
		message.CategoryPrimitive,
		message.CategoryTimeSeries,
		message.CategoryVariable,
		message.CategoryUIPrimitive,
	}
	primitiveTypes = []message.PrimitiveType{
		message.PrimitivePolygon,
		message.PrimitivePolyline,
		message.PrimitivePoint,
		message.PrimitiveCircle,
		message.PrimitiveText,
		message.PrimitiveImage,
		message.PrimitiveStadium,
	}
	scalarTypes = []message.ScalarType{
		message.ScalarFloat,
		message.ScalarInt32,
		message.ScalarString,
		message.ScalarBool,
	}
)
