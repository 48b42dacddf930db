// Package container implements the self-describing XVIZ binary container: a JSON skeleton
// chunk and a packed binary chunk behind a magic number and version.
//
// Layout, all integers little-endian uint32:
//
//	magic "XVIZ" | version | jsonLength | json (space padded) | binLength | payload (zero padded)
//
// The JSON chunk is the document {"buffers": [descriptor...], "data": skeleton}.
package container

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"

	"go.viam.com/xviz/packer"
	"go.viam.com/xviz/tree"
)

// Version is the only container version this package reads and writes.
const Version uint32 = 2

const (
	headerSize = 12
	// BuffersKey is the reserved JSON key holding the buffer descriptors.
	BuffersKey = "buffers"
	// DataKey is the reserved JSON key holding the tokenized tree.
	DataKey = "data"
)

// Magic identifies an XVIZ container.
var Magic = [4]byte{'X', 'V', 'I', 'Z'}

// Options configures encoding.
type Options struct {
	// MinArraySize is the length below which numeric arrays are written inline as JSON numbers.
	MinArraySize int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{MinArraySize: tree.DefaultMinArraySize}
}

type document struct {
	Buffers []packer.Descriptor `json:"buffers"`
	Data    any                 `json:"data"`
}

type rawDocument struct {
	Buffers []packer.Descriptor `json:"buffers"`
	Data    json.RawMessage     `json:"data"`
}

// Encode tokenizes t, packs its numeric arrays and emits a container. The same tree always
// encodes to the same bytes.
//
// Everything outside the packed arrays goes through JSON, so after Decode scalar numbers and
// inline arrays come back as float64 and []any of float64, whatever Go type they had.
func Encode(t any, opts Options) ([]byte, error) {
	skeleton, arrays, err := tree.Tokenize(t, opts.MinArraySize)
	if err != nil {
		return nil, err
	}
	payload, descs, err := packer.Pack(arrays)
	if err != nil {
		return nil, err
	}
	if descs == nil {
		descs = []packer.Descriptor{}
	}
	jsonChunk, err := json.Marshal(document{Buffers: descs, Data: skeleton})
	if err != nil {
		return nil, errors.Wrap(err, "marshaling container json chunk")
	}

	jsonLen := packer.Pad(len(jsonChunk))
	binLen := packer.Pad(len(payload))
	out := make([]byte, 0, headerSize+jsonLen+4+binLen)
	out = append(out, Magic[:]...)
	out = binary.LittleEndian.AppendUint32(out, Version)
	out = binary.LittleEndian.AppendUint32(out, uint32(jsonLen))
	out = append(out, jsonChunk...)
	out = append(out, bytes.Repeat([]byte{' '}, jsonLen-len(jsonChunk))...)
	out = binary.LittleEndian.AppendUint32(out, uint32(binLen))
	out = append(out, payload...)
	out = append(out, make([]byte, binLen-len(payload))...)
	return out, nil
}

// IsContainer reports whether b starts with the container magic. It does not validate the rest.
func IsContainer(b []byte) bool {
	return len(b) >= len(Magic) && bytes.Equal(b[:len(Magic)], Magic[:])
}

// Decode validates and decodes a container back into a tree. Any failure means the whole
// container is unusable; nothing is partially decoded. Packed arrays keep their element kind;
// every other number is a float64.
func Decode(b []byte) (any, error) {
	if !IsContainer(b) {
		return nil, &InvalidMagicError{Got: firstBytes(b, len(Magic))}
	}
	if len(b) < headerSize {
		return nil, &CorruptContainerError{ByteOffset: len(b), Reason: "truncated header"}
	}
	if version := binary.LittleEndian.Uint32(b[4:8]); version != Version {
		return nil, &UnsupportedVersionError{Version: version}
	}

	// lengths are compared against what remains so no sum can wrap
	jsonLen := uint64(binary.LittleEndian.Uint32(b[8:12]))
	if jsonLen > uint64(len(b)-headerSize) || uint64(len(b)-headerSize)-jsonLen < 4 {
		return nil, &CorruptContainerError{ByteOffset: headerSize, Reason: "json chunk exceeds container"}
	}
	jsonEnd := headerSize + int(jsonLen)
	binLen := uint64(binary.LittleEndian.Uint32(b[jsonEnd : jsonEnd+4]))
	binStart := jsonEnd + 4
	if binLen != uint64(len(b)-binStart) {
		return nil, &CorruptContainerError{ByteOffset: jsonEnd, Reason: "binary chunk length does not match container size"}
	}

	var doc rawDocument
	if err := json.Unmarshal(b[headerSize:jsonEnd], &doc); err != nil {
		return nil, &CorruptContainerError{ByteOffset: headerSize, Reason: "invalid json chunk: " + err.Error()}
	}
	var skeleton any
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &skeleton); err != nil {
			return nil, &CorruptContainerError{ByteOffset: headerSize, Reason: "invalid data: " + err.Error()}
		}
	}

	arrays, err := packer.Unpack(b[binStart:], doc.Buffers)
	if err != nil {
		return nil, err
	}
	return tree.Detokenize(skeleton, arrays)
}

func firstBytes(b []byte, n int) []byte {
	if len(b) < n {
		n = len(b)
	}
	return append([]byte(nil), b[:n]...)
}
