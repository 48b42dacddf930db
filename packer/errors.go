package packer

import (
	"fmt"
	"reflect"
)

// UnsupportedTypeError is returned at encode time for an array whose element kind has no tag.
// Arrays are never coerced to another kind.
type UnsupportedTypeError struct {
	// Index is the position of the array in the packed list, or -1 when unknown.
	Index int
	Type  reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("packer: unsupported numeric array type %v", e.Type)
	}
	return fmt.Sprintf("packer: unsupported numeric array type %v at buffer %d", e.Type, e.Index)
}

// CorruptBufferError is returned when a descriptor does not fit the binary payload it describes.
type CorruptBufferError struct {
	Index         int
	ByteOffset    int
	ByteLength    int
	PayloadLength int
	Reason        string
}

func (e *CorruptBufferError) Error() string {
	return fmt.Sprintf("packer: corrupt buffer %d (offset %d, length %d, payload %d): %s",
		e.Index, e.ByteOffset, e.ByteLength, e.PayloadLength, e.Reason)
}
