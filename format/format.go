// Package format encodes envelopes into the XVIZ wire formats and recognizes them again.
package format

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/xviz/container"
	"go.viam.com/xviz/message"
	"go.viam.com/xviz/tree"
)

// Format is an XVIZ wire format.
type Format int

// Formats.
const (
	Unknown Format = iota
	// JSONString is JSON text held in a string.
	JSONString
	// JSONBuffer is JSON text held in bytes.
	JSONBuffer
	// Binary is the XVIZ binary container.
	Binary
	// Protobuf is a PBE1 prefixed google.protobuf.Value.
	Protobuf
)

var names = map[Format]string{
	Unknown:    "unknown",
	JSONString: "json_string",
	JSONBuffer: "json_buffer",
	Binary:     "binary",
	Protobuf:   "protobuf",
}

func (f Format) String() string {
	if name, ok := names[f]; ok {
		return name
	}
	return "unknown"
}

// Extension is the file extension of artifacts written in the format.
func (f Format) Extension() string {
	switch f {
	case Binary:
		return ".glb"
	case Protobuf:
		return ".pbe"
	default:
		return ".json"
	}
}

// Formats returns every supported format.
func Formats() []Format {
	return []Format{JSONString, JSONBuffer, Binary, Protobuf}
}

// Parse returns the format with the given name. "json" is accepted for JSONString.
func Parse(name string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "json" {
		return JSONString, nil
	}
	for f, n := range names {
		if f != Unknown && n == normalized {
			return f, nil
		}
	}
	return Unknown, &UnknownFormatError{Name: name}
}

// Options configures encoding.
type Options struct {
	// MinArraySize is passed to the binary container.
	MinArraySize int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{MinArraySize: tree.DefaultMinArraySize}
}

// Encode serializes env. The result is a string for JSONString and []byte otherwise.
func Encode(env message.Envelope, f Format, opts Options) (any, error) {
	switch f {
	case JSONString:
		b, err := json.Marshal(env.Tree())
		if err != nil {
			return nil, errors.Wrap(err, "marshaling json")
		}
		return string(b), nil
	case JSONBuffer:
		b, err := json.Marshal(env.Tree())
		if err != nil {
			return nil, errors.Wrap(err, "marshaling json")
		}
		return b, nil
	case Binary:
		return container.Encode(env.Tree(), container.Options{MinArraySize: opts.MinArraySize})
	case Protobuf:
		return encodeProtobuf(env)
	default:
		return nil, &UnknownFormatError{Name: f.String()}
	}
}

// Sniff recognizes the format of data, a string or []byte.
func Sniff(data any) Format {
	switch d := data.(type) {
	case string:
		if json.Valid([]byte(d)) {
			return JSONString
		}
	case []byte:
		switch {
		case container.IsContainer(d):
			return Binary
		case bytes.HasPrefix(d, protobufMagic[:]):
			return Protobuf
		case json.Valid(d):
			return JSONBuffer
		}
	}
	return Unknown
}

// Decode recognizes and decodes data back into an envelope.
func Decode(data any) (message.Envelope, error) {
	var (
		decoded any
		err     error
	)
	switch f := Sniff(data); f {
	case JSONString:
		err = json.Unmarshal([]byte(data.(string)), &decoded)
	case JSONBuffer:
		err = json.Unmarshal(data.([]byte), &decoded)
	case Binary:
		decoded, err = container.Decode(data.([]byte))
	case Protobuf:
		decoded, err = decodeProtobuf(data.([]byte))
	default:
		return message.Envelope{}, &UnrecognizedDataError{Type: typeName(data)}
	}
	if err != nil {
		return message.Envelope{}, err
	}
	return message.EnvelopeFromTree(decoded)
}

func typeName(data any) string {
	switch data.(type) {
	case string:
		return "string"
	case []byte:
		return "[]byte"
	case nil:
		return "nil"
	default:
		return "unsupported"
	}
}
