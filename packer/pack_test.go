package packer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"go.viam.com/test"
)

func TestPackAlignment(t *testing.T) {
	arrays := []any{
		[]int8{3, 2, 3},
		[]uint16{6, 2, 4, 5},
		[]float32{8, 2, 4, 5},
	}
	payload, descs, err := Pack(arrays)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, descs, test.ShouldResemble, []Descriptor{
		{ByteOffset: 0, ByteLength: 3, Type: "b", Size: 1},
		{ByteOffset: 4, ByteLength: 8, Type: "H", Size: 1},
		{ByteOffset: 12, ByteLength: 16, Type: "f", Size: 1},
	})
	test.That(t, payload, test.ShouldHaveLength, 28)
	// padding after the int8 array is zero filled
	test.That(t, payload[3], test.ShouldEqual, byte(0))

	unpacked, err := Unpack(payload, descs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, unpacked, test.ShouldResemble, arrays)
}

func TestPackAllKinds(t *testing.T) {
	arrays := []any{
		[]float64{1.5, -2.25},
		[]float32{0.5},
		[]int8{-1, 127},
		[]uint8{255, 0, 1},
		[]int16{-300},
		[]uint16{65535},
		[]int32{-70000, 70000},
		[]uint32{4000000000},
		Vectors{Data: []float32{1, 2, 3, 4, 5, 6}, Size: 3},
	}
	payload, descs, err := Pack(arrays)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, descs, test.ShouldHaveLength, len(arrays))
	for i := 1; i < len(descs); i++ {
		test.That(t, descs[i].ByteOffset%Alignment, test.ShouldEqual, 0)
		test.That(t, descs[i].ByteOffset, test.ShouldBeGreaterThanOrEqualTo, descs[i-1].ByteOffset+descs[i-1].ByteLength)
	}
	test.That(t, descs[8].Size, test.ShouldEqual, 3)

	unpacked, err := Unpack(payload, descs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, unpacked, test.ShouldResemble, arrays)
}

func TestPackDeterministic(t *testing.T) {
	arrays := []any{[]uint8{1, 2, 3, 4, 5}, []float64{3.14}}
	first, _, err := Pack(arrays)
	test.That(t, err, test.ShouldBeNil)
	second, _, err := Pack(arrays)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first, test.ShouldResemble, second)
}

func TestPackUnsupportedType(t *testing.T) {
	_, _, err := Pack([]any{[]float32{1}, []int64{1, 2}})
	var unsupported *UnsupportedTypeError
	test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)
	test.That(t, unsupported.Index, test.ShouldEqual, 1)

	_, _, err = Pack([]any{Vectors{Data: []float32{1, 2}, Size: 3}})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestUnpackCorrupt(t *testing.T) {
	payload, descs, err := Pack([]any{[]float32{1, 2, 3}})
	test.That(t, err, test.ShouldBeNil)

	for _, tc := range []struct {
		name string
		desc Descriptor
	}{
		{"past end", Descriptor{ByteOffset: 4, ByteLength: 12, Type: "f"}},
		{"unknown tag", Descriptor{ByteOffset: 0, ByteLength: 12, Type: "q"}},
		{"ragged", Descriptor{ByteOffset: 0, ByteLength: 10, Type: "f"}},
		{"ragged components", Descriptor{ByteOffset: 0, ByteLength: 12, Type: "f", Size: 2}},
		{"negative offset", Descriptor{ByteOffset: -4, ByteLength: 4, Type: "f"}},
		{"negative length", Descriptor{ByteOffset: 0, ByteLength: -4, Type: "f"}},
		{"offset wraps", Descriptor{ByteOffset: math.MaxInt, ByteLength: 8, Type: "B"}},
		{"length wraps", Descriptor{ByteOffset: 8, ByteLength: math.MaxInt, Type: "B"}},
		{"length near max", Descriptor{ByteOffset: 0, ByteLength: math.MaxInt - 3, Type: "B"}},
		{"offset just past end", Descriptor{ByteOffset: 13, ByteLength: 0, Type: "B"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unpack(payload, []Descriptor{descs[0], tc.desc})
			var corrupt *CorruptBufferError
			test.That(t, errors.As(err, &corrupt), test.ShouldBeTrue)
			test.That(t, corrupt.Index, test.ShouldEqual, 1)
		})
	}
}

func TestKindTagsBijective(t *testing.T) {
	seen := map[string]Kind{}
	for _, k := range []Kind{Float64, Float32, Int8, Uint8, Int16, Uint16, Int32, Uint32} {
		tag := k.Tag()
		test.That(t, tag, test.ShouldHaveLength, 1)
		_, dup := seen[tag]
		test.That(t, dup, test.ShouldBeFalse)
		seen[tag] = k
		back, ok := KindFromTag(tag)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, back, test.ShouldEqual, k)
	}
	test.That(t, KindInvalid.Tag(), test.ShouldEqual, "")
}

func TestVectorsJSON(t *testing.T) {
	out, err := json.Marshal(Vectors{Data: []uint8{255, 0, 0, 255, 0, 255, 0, 255}, Size: 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `[[255,0,0,255],[0,255,0,255]]`)

	out, err = json.Marshal(Vectors{Data: []float32{0.5, 1, 2}, Size: 3})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `[[0.5,1,2]]`)
}

func TestToNumbers(t *testing.T) {
	test.That(t, ToNumbers([]float32{0.1, 2}), test.ShouldResemble, []any{0.1, 2.0})
	test.That(t, ToNumbers([]int16{-3}), test.ShouldResemble, []any{-3.0})
	test.That(t, ToNumbers(Vectors{Data: []uint8{1, 2, 3, 4}, Size: 2}), test.ShouldResemble,
		[]any{[]any{1.0, 2.0}, []any{3.0, 4.0}})
}
