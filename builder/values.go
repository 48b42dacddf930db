package builder

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"go.viam.com/xviz/message"
)

// toValues converts a Go list into typed XVIZ values.
func toValues(v any) (message.Values, error) {
	switch vs := v.(type) {
	case []float64:
		return message.Values{Doubles: append([]float64{}, vs...)}, nil
	case []float32:
		return message.Values{Doubles: lo.Map(vs, func(f float32, _ int) float64 { return float64(f) })}, nil
	case []int32:
		return message.Values{Int32s: append([]int32{}, vs...)}, nil
	case []int:
		ints := make([]int32, 0, len(vs))
		for _, i := range vs {
			i32, err := toInt32(i)
			if err != nil {
				return message.Values{}, err
			}
			ints = append(ints, i32)
		}
		return message.Values{Int32s: ints}, nil
	case []bool:
		return message.Values{Bools: append([]bool{}, vs...)}, nil
	case []string:
		return message.Values{Strings: append([]string{}, vs...)}, nil
	default:
		return message.Values{}, errors.Errorf("unsupported values type %T", v)
	}
}

// toValue converts a single Go scalar into a one element value list.
func toValue(v any) (message.Values, error) {
	switch x := v.(type) {
	case float64:
		return message.Values{Doubles: []float64{x}}, nil
	case float32:
		return message.Values{Doubles: []float64{float64(x)}}, nil
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		i32, err := toInt32(x)
		if err != nil {
			return message.Values{}, err
		}
		return message.Values{Int32s: []int32{i32}}, nil
	case bool:
		return message.Values{Bools: []bool{x}}, nil
	case string:
		return message.Values{Strings: []string{x}}, nil
	default:
		return message.Values{}, errors.Errorf("unsupported value type %T", v)
	}
}

// toInt32 converts an integer to int32, rejecting values the conversion would wrap.
func toInt32(v any) (int32, error) {
	i64, err := cast.ToInt64E(v)
	if err != nil {
		return 0, err
	}
	if i64 < math.MinInt32 || i64 > math.MaxInt32 {
		return 0, errors.Errorf("integer value %d is out of the INT32 range", i64)
	}
	return int32(i64), nil
}

func appendValues(dst *message.Values, src message.Values) {
	dst.Doubles = append(dst.Doubles, src.Doubles...)
	dst.Int32s = append(dst.Int32s, src.Int32s...)
	dst.Bools = append(dst.Bools, src.Bools...)
	dst.Strings = append(dst.Strings, src.Strings...)
}
