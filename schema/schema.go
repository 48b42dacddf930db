// Package schema generates JSON schemas of the XVIZ documents.
package schema

import (
	"encoding/json"
	"slices"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var documents = map[string]any{
	"envelope":     &Envelope{},
	"metadata":     &Metadata{},
	"state_update": &StateUpdate{},
	"frame_index":  &FrameIndex{},
}

// Names returns the names of the documents with a schema, sorted.
func Names() []string {
	names := lo.Keys(documents)
	slices.Sort(names)
	return names
}

// Generate reflects the schema of the named document.
func Generate(name string) (*jsonschema.Schema, error) {
	doc, ok := documents[name]
	if !ok {
		return nil, errors.Errorf("no schema named %q", name)
	}
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
	}
	return r.Reflect(doc), nil
}

// JSON returns the indented JSON schema of the named document.
func JSON(name string) ([]byte, error) {
	s, err := Generate(name)
	if err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "marshaling %s schema", name)
	}
	return b, nil
}
