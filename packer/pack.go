package packer

import (
	"encoding/binary"
	"reflect"

	"github.com/pkg/errors"
)

// Alignment is the byte boundary every packed array starts on.
const Alignment = 4

// Descriptor locates one packed array inside the binary payload.
type Descriptor struct {
	ByteOffset int    `json:"byteOffset" mapstructure:"byteOffset"`
	ByteLength int    `json:"byteLength" mapstructure:"byteLength"`
	Type       string `json:"type" mapstructure:"type"`
	Size       int    `json:"size" mapstructure:"size"`
}

// Pad returns n rounded up to the next multiple of Alignment.
func Pad(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// Pack copies each array little-endian into one payload. Every array starts at a 4-byte aligned
// offset; padding bytes are zero and are not counted in the descriptor's ByteLength. Descriptors
// are returned in input order.
func Pack(arrays []any) ([]byte, []Descriptor, error) {
	descs := make([]Descriptor, 0, len(arrays))
	total := 0
	for i, arr := range arrays {
		kind, ok := KindOf(arr)
		if !ok {
			return nil, nil, &UnsupportedTypeError{Index: i, Type: reflect.TypeOf(arr)}
		}
		size := 1
		data := arr
		if vec, isVec := arr.(Vectors); isVec {
			if err := vec.validate(); err != nil {
				return nil, nil, errors.Wrapf(err, "buffer %d", i)
			}
			size = vec.Size
			data = vec.Data
		}
		byteLength := sliceLen(data) * kind.ElementSize()
		descs = append(descs, Descriptor{
			ByteOffset: total,
			ByteLength: byteLength,
			Type:       kind.Tag(),
			Size:       size,
		})
		total = Pad(total + byteLength)
	}

	payload := make([]byte, 0, total)
	for i, arr := range arrays {
		if vec, isVec := arr.(Vectors); isVec {
			arr = vec.Data
		}
		var err error
		payload, err = binary.Append(payload, binary.LittleEndian, arr)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "packing buffer %d", i)
		}
		for len(payload) < Pad(len(payload)) {
			payload = append(payload, 0)
		}
	}
	return payload, descs, nil
}

// Unpack rebuilds the arrays described by descs from payload. Each array is newly allocated and
// holds ByteLength/elementSize elements of the declared kind.
func Unpack(payload []byte, descs []Descriptor) ([]any, error) {
	arrays := make([]any, 0, len(descs))
	for i, desc := range descs {
		corrupt := func(reason string) error {
			return &CorruptBufferError{
				Index:         i,
				ByteOffset:    desc.ByteOffset,
				ByteLength:    desc.ByteLength,
				PayloadLength: len(payload),
				Reason:        reason,
			}
		}
		kind, ok := KindFromTag(desc.Type)
		if !ok {
			return nil, corrupt("unknown element type tag " + desc.Type)
		}
		if desc.ByteOffset < 0 || desc.ByteLength < 0 {
			return nil, corrupt("negative offset or length")
		}
		// compared without adding so huge offsets cannot wrap
		if desc.ByteOffset > len(payload) || desc.ByteLength > len(payload)-desc.ByteOffset {
			return nil, corrupt("buffer exceeds payload")
		}
		elemSize := kind.ElementSize()
		if desc.ByteLength%elemSize != 0 {
			return nil, corrupt("length is not a multiple of the element size")
		}
		count := desc.ByteLength / elemSize
		size := desc.Size
		if size <= 0 {
			size = 1
		}
		if count%size != 0 {
			return nil, corrupt("length is not a multiple of the component size")
		}

		data := makeSlice(kind, count)
		if _, err := binary.Decode(payload[desc.ByteOffset:desc.ByteOffset+desc.ByteLength], binary.LittleEndian, data); err != nil {
			return nil, errors.Wrap(corrupt("decode failed"), err.Error())
		}
		if size > 1 {
			arrays = append(arrays, Vectors{Data: data, Size: size})
		} else {
			arrays = append(arrays, data)
		}
	}
	return arrays, nil
}
