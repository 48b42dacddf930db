package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"

	"go.viam.com/xviz/packer"
)

func longFloats(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) * 0.5
	}
	return out
}

func TestTokenizeRoundTrip(t *testing.T) {
	points := packer.Vectors{Data: longFloats(60), Size: 3}
	colors := packer.Vectors{Data: make([]uint8, 80), Size: 4}
	input := map[string]any{
		"type": "xviz/state_update",
		"data": map[string]any{
			"updates": []any{
				map[string]any{
					"timestamp": 1000.5,
					"primitives": map[string]any{
						"/lidar": map[string]any{
							"points": []any{
								map[string]any{"points": points, "colors": colors},
							},
						},
					},
					"values": []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
				},
			},
		},
	}

	skeleton, arrays, err := Tokenize(input, DefaultMinArraySize)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arrays, test.ShouldHaveLength, 3)

	primitives := skeleton.(map[string]any)["data"].(map[string]any)["updates"].([]any)[0].(map[string]any)
	test.That(t, primitives["values"], test.ShouldEqual, "$$$2")

	decoded, err := Detokenize(skeleton, arrays)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(input, decoded), test.ShouldBeEmpty)
}

func TestTokenizeInlinesSmallArrays(t *testing.T) {
	input := map[string]any{"position": []float64{1, 2, 3}, "orientation": []float32{0.1, 0, 0}}
	skeleton, arrays, err := Tokenize(input, DefaultMinArraySize)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arrays, test.ShouldBeEmpty)
	test.That(t, skeleton, test.ShouldResemble, map[string]any{
		"position":    []any{1.0, 2.0, 3.0},
		"orientation": []any{0.1, 0.0, 0.0},
	})
}

func TestTokenizeThresholdZeroPromotesEverything(t *testing.T) {
	input := []any{[]int8{1}, "label", []uint32{}}
	skeleton, arrays, err := Tokenize(input, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, skeleton, test.ShouldResemble, []any{"$$$0", "label", "$$$1"})

	decoded, err := Detokenize(skeleton, arrays)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(input, decoded), test.ShouldBeEmpty)
}

func TestTokenizeEscapesTokenLikeStrings(t *testing.T) {
	input := map[string]any{"text": "$$$0", "other": "$$$$weird", "buf": longFloats(25)}
	skeleton, arrays, err := Tokenize(input, DefaultMinArraySize)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, skeleton.(map[string]any)["text"], test.ShouldEqual, "$$$$0")

	decoded, err := Detokenize(skeleton, arrays)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(input, decoded), test.ShouldBeEmpty)
}

func TestDetokenizeDangling(t *testing.T) {
	_, err := Detokenize(map[string]any{"a": []any{"$$$3"}}, []any{[]float32{1}})
	var dangling *DanglingTokenError
	test.That(t, errors.As(err, &dangling), test.ShouldBeTrue)
	test.That(t, dangling.Index, test.ShouldEqual, 3)
	test.That(t, dangling.Count, test.ShouldEqual, 1)

	_, err = Detokenize(map[string]any{"v": "$$$99999999999999999999999"}, nil)
	test.That(t, errors.As(err, &dangling), test.ShouldBeTrue)
	test.That(t, dangling.Token, test.ShouldEqual, "$$$99999999999999999999999")
	test.That(t, dangling.Index, test.ShouldEqual, -1)
}

func TestTokenizeUnsupportedSlice(t *testing.T) {
	_, _, err := Tokenize(map[string]any{"ids": []int64{1, 2}}, 0)
	var unsupported *packer.UnsupportedTypeError
	test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)
}

func TestDetokenizeDoesNotAlias(t *testing.T) {
	arrays := []any{longFloats(30)}
	skeleton := map[string]any{"nested": []any{"$$$0"}}
	decoded, err := Detokenize(skeleton, arrays)
	test.That(t, err, test.ShouldBeNil)

	decoded.(map[string]any)["nested"].([]any)[0].([]float32)[0] = 99
	decoded.(map[string]any)["nested"] = "changed"
	test.That(t, arrays[0].([]float32)[0], test.ShouldEqual, float32(0))
	test.That(t, skeleton["nested"], test.ShouldResemble, []any{"$$$0"})
}

func TestRewriteSeesEnclosingKey(t *testing.T) {
	input := map[string]any{
		"update_type": "SNAPSHOT",
		"streams":     []any{map[string]any{"category": "POSE"}, "POSE"},
	}
	var keys []string
	out, err := Rewrite(input, func(key string, leaf any) (any, bool, error) {
		keys = append(keys, key)
		if key == "category" {
			return 6, true, nil
		}
		return nil, false, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.(map[string]any)["streams"].([]any)[0], test.ShouldResemble, map[string]any{"category": 6})
	test.That(t, out.(map[string]any)["streams"].([]any)[1], test.ShouldEqual, "POSE")
	test.That(t, keys, test.ShouldContain, "streams")
}

func TestParseToken(t *testing.T) {
	for _, tc := range []struct {
		in    string
		idx   int
		token bool
	}{
		{"$$$0", 0, true},
		{"$$$12", 12, true},
		{"$$$", 0, false},
		{"$$$1a", 0, false},
		{"$$$$1", 0, false},
		{"$$$99999999999999999999999", -1, true},
		{"#/accessors/1", 0, false},
	} {
		t.Run(tc.in, func(t *testing.T) {
			idx, ok := ParseToken(tc.in)
			test.That(t, ok, test.ShouldEqual, tc.token)
			test.That(t, idx, test.ShouldEqual, tc.idx)
		})
	}
}
