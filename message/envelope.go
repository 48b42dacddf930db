package message

import (
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Envelope keys.
const (
	EnvelopeTypeKey = "type"
	EnvelopeDataKey = "data"
)

// Envelope is the outermost wrapper of every written message.
type Envelope struct {
	Type string
	Data map[string]any
}

// Wrap puts m in an envelope.
func Wrap(m Message) Envelope {
	return Envelope{Type: m.MessageType(), Data: m.Tree()}
}

// Tree returns the envelope as a message tree.
func (e Envelope) Tree() map[string]any {
	return map[string]any{
		EnvelopeTypeKey: e.Type,
		EnvelopeDataKey: e.Data,
	}
}

// IsStateUpdate reports whether the envelope carries a state update.
func (e Envelope) IsStateUpdate() bool {
	return e.Type == TypeStateUpdate
}

// EnvelopeFromTree unwraps a decoded tree.
func EnvelopeFromTree(t any) (Envelope, error) {
	m, ok := t.(map[string]any)
	if !ok {
		return Envelope{}, errors.Errorf("envelope must be an object, got %T", t)
	}
	typ, ok := m[EnvelopeTypeKey].(string)
	if !ok {
		return Envelope{}, errors.Errorf("envelope is missing %q", EnvelopeTypeKey)
	}
	data, ok := m[EnvelopeDataKey].(map[string]any)
	if !ok {
		return Envelope{}, errors.Errorf("envelope %q has no %q object", typ, EnvelopeDataKey)
	}
	return Envelope{Type: typ, Data: data}, nil
}

// Raw is an already built message tree, e.g. one read back from a log.
type Raw struct {
	Type string
	Data map[string]any
}

// MessageType implements Message.
func (r Raw) MessageType() string {
	return r.Type
}

// Tree implements Message.
func (r Raw) Tree() map[string]any {
	return r.Data
}

// Timestamps returns every "timestamp" directly under the updates of a raw state update.
// Numeric strings are accepted; other non-numbers are an error.
func Timestamps(data map[string]any) ([]float64, error) {
	updates, _ := data["updates"].([]any)
	var out []float64
	for i, u := range updates {
		update, ok := u.(map[string]any)
		if !ok {
			continue
		}
		raw, ok := update["timestamp"]
		if !ok {
			continue
		}
		ts, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "updates[%d].timestamp", i)
		}
		out = append(out, ts)
	}
	return out, nil
}
