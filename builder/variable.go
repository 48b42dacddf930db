package builder

import (
	"go.viam.com/xviz/message"
)

type variableEntry struct {
	set      fields
	values   *message.Values
	objectID string
}

// VariableBuilder fills one variable entry of a stream. Values and ID can each be set once.
type VariableBuilder struct {
	b      *Builder
	stream string
	entry  *variableEntry
}

// Variable starts a new entry on the variable stream id.
func (b *Builder) Variable(id string) (*VariableBuilder, error) {
	_, enabled, err := b.scope(id, message.CategoryVariable)
	if err != nil {
		return nil, err
	}
	vb := &VariableBuilder{b: b, stream: id}
	if enabled {
		vb.entry = &variableEntry{set: fields{}}
		b.variables[id] = append(b.variables[id], vb.entry)
	}
	return vb, nil
}

// Values sets the values of the entry: []float64, []float32, []int32, []int, []bool or []string.
func (vb *VariableBuilder) Values(values any) error {
	if err := vb.b.checkOpen(vb.stream); err != nil {
		return err
	}
	if vb.entry == nil {
		return nil
	}
	vs, err := toValues(values)
	if err != nil {
		return &ValidationError{Stream: vb.stream, Reason: err.Error()}
	}
	if err := vb.entry.set.set(vb.stream, "values"); err != nil {
		return err
	}
	vb.entry.values = &vs
	vb.b.touch()
	return nil
}

// ID ties the entry to an object.
func (vb *VariableBuilder) ID(id string) error {
	if err := vb.b.checkOpen(vb.stream); err != nil {
		return err
	}
	if vb.entry == nil {
		return nil
	}
	if err := vb.entry.set.set(vb.stream, "id"); err != nil {
		return err
	}
	vb.entry.objectID = id
	return nil
}

func (b *Builder) finishVariables(update *message.StreamSet) {
	for id, entries := range b.variables {
		var state message.VariableState
		for _, e := range entries {
			if e.values == nil {
				b.logger.Debugw("dropping variable entry without values", "stream", id)
				continue
			}
			state.Variables = append(state.Variables, message.Variable{Values: *e.values, ObjectID: e.objectID})
		}
		if len(state.Variables) == 0 {
			continue
		}
		if update.Variables == nil {
			update.Variables = map[string]message.VariableState{}
		}
		update.Variables[id] = state
	}
}
