// Package packer packs homogeneous numeric arrays into one contiguous, 4-byte aligned binary
// region and describes each array with a BufferDescriptor.
package packer

import "fmt"

// Kind is the element kind of a numeric array.
type Kind uint8

// The supported element kinds.
const (
	KindInvalid Kind = iota
	Float64
	Float32
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
)

// kindTags is the versioned kind<->tag table shared by encoder and decoder. It must stay a
// bijection.
var kindTags = map[Kind]string{
	Float64: "d",
	Float32: "f",
	Int8:    "b",
	Uint8:   "B",
	Int16:   "h",
	Uint16:  "H",
	Int32:   "i",
	Uint32:  "I",
}

var tagKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTags))
	for k, tag := range kindTags {
		m[tag] = k
	}
	return m
}()

// Tag returns the single-character tag for k, or "" for an unknown kind.
func (k Kind) Tag() string {
	return kindTags[k]
}

// KindFromTag returns the kind for a descriptor tag.
func KindFromTag(tag string) (Kind, bool) {
	k, ok := tagKinds[tag]
	return k, ok
}

// ElementSize returns the byte width of one element of kind k.
func (k Kind) ElementSize() int {
	switch k {
	case Float64:
		return 8
	case Float32, Int32, Uint32:
		return 4
	case Int16, Uint16:
		return 2
	case Int8, Uint8:
		return 1
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}
