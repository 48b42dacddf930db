package builder

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/xviz/message"
)

// A Validator checks a finished frame against its metadata.
type Validator interface {
	Validate(meta *message.Metadata, su *message.StateUpdate) error
}

// ValidatorFunc adapts a function to a Validator.
type ValidatorFunc func(meta *message.Metadata, su *message.StateUpdate) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(meta *message.Metadata, su *message.StateUpdate) error {
	return f(meta, su)
}

// StructuralValidator checks shape arity and that scalar values match their declared type.
type StructuralValidator struct{}

// Validate implements Validator. All problems are reported together.
func (StructuralValidator) Validate(meta *message.Metadata, su *message.StateUpdate) error {
	var errs error
	for _, update := range su.Updates {
		for _, id := range sortedKeys(update.Primitives) {
			errs = multierr.Append(errs, validatePrimitives(id, update.Primitives[id]))
		}
		for _, id := range sortedKeys(update.Variables) {
			for _, v := range update.Variables[id].Variables {
				errs = multierr.Append(errs, validateScalar(meta, id, v.Values.Type()))
			}
		}
		for _, ts := range update.TimeSeries {
			for _, id := range ts.Streams {
				errs = multierr.Append(errs, validateScalar(meta, id, ts.Values.Type()))
			}
		}
	}
	return errs
}

func validatePrimitives(id string, ps message.PrimitiveState) error {
	var errs error
	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, &ValidationError{Stream: id, Reason: fmt.Sprintf(format, args...)})
	}
	for i, p := range ps.Polygons {
		if len(p.Vertices) < 3 {
			invalid("polygon %d has %d vertices, needs at least 3", i, len(p.Vertices))
		}
	}
	for i, p := range ps.Polylines {
		if len(p.Vertices) < 2 {
			invalid("polyline %d has %d vertices, needs at least 2", i, len(p.Vertices))
		}
	}
	for i, p := range ps.Points {
		if len(p.Colors) > 0 && len(p.Colors) != len(p.Points) {
			invalid("point %d has %d colors for %d points", i, len(p.Colors), len(p.Points))
		}
	}
	for i, c := range ps.Circles {
		if c.Radius <= 0 {
			invalid("circle %d has radius %v", i, c.Radius)
		}
	}
	for i, s := range ps.Stadiums {
		if s.Radius <= 0 {
			invalid("stadium %d has radius %v", i, s.Radius)
		}
	}
	for i, img := range ps.Images {
		if len(img.Data) == 0 {
			invalid("image %d has no data", i)
		}
	}
	return errs
}

func validateScalar(meta *message.Metadata, id string, got message.ScalarType) error {
	s, ok := meta.Stream(id)
	if !ok || s.ScalarType == "" || s.ScalarType == got {
		return nil
	}
	return &ValidationError{Stream: id, Reason: fmt.Sprintf("declared %s, got %s values", s.ScalarType, got)}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
