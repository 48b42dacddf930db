package packer

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// Vectors is a flat numeric slice grouped into fixed-size components, e.g. xyz points with
// Size 3 or rgba colors with Size 4. Data must be one of the supported native numeric slices.
// A Vectors with Size 1 packs like its flat Data and decodes back to the flat slice.
type Vectors struct {
	Data any
	Size int
}

// Len returns the number of vectors.
func (v Vectors) Len() int {
	if v.Size <= 0 {
		return 0
	}
	return sliceLen(v.Data) / v.Size
}

// At returns the components of vector i as float64s.
func (v Vectors) At(i int) []float64 {
	rv := reflect.ValueOf(v.Data)
	out := make([]float64, v.Size)
	for c := 0; c < v.Size; c++ {
		elem := rv.Index(i*v.Size + c)
		switch elem.Kind() {
		case reflect.Float32:
			out[c] = widenFloat32(elem.Float())
		case reflect.Float64:
			out[c] = elem.Float()
		case reflect.Int8, reflect.Int16, reflect.Int32:
			out[c] = float64(elem.Int())
		default:
			out[c] = float64(elem.Uint())
		}
	}
	return out
}

// MarshalJSON renders the vectors as nested JSON arrays.
func (v Vectors) MarshalJSON() ([]byte, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(v.Data)
	nested := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		nested = append(nested, rv.Slice(i*v.Size, (i+1)*v.Size).Interface())
	}
	if _, ok := v.Data.([]uint8); ok {
		// []uint8 would otherwise be base64 encoded.
		for i := range nested {
			nested[i] = bytesToInts(nested[i].([]uint8))
		}
	}
	return json.Marshal(nested)
}

func (v Vectors) validate() error {
	if v.Size <= 0 {
		return errors.Errorf("vectors size must be positive, got %d", v.Size)
	}
	if _, ok := kindOfSlice(v.Data); !ok {
		return &UnsupportedTypeError{Index: -1, Type: reflect.TypeOf(v.Data)}
	}
	if n := sliceLen(v.Data); n%v.Size != 0 {
		return errors.Errorf("vectors length %d is not a multiple of size %d", n, v.Size)
	}
	return nil
}

// IsArray reports whether v is a numeric array leaf: a supported native slice or Vectors.
func IsArray(v any) bool {
	_, ok := KindOf(v)
	return ok
}

// KindOf reports the element kind of a numeric array leaf.
func KindOf(v any) (Kind, bool) {
	if vec, ok := v.(Vectors); ok {
		return kindOfSlice(vec.Data)
	}
	return kindOfSlice(v)
}

// Len returns the number of elements of a numeric array leaf, counting vectors rather than
// their components.
func Len(v any) int {
	if vec, ok := v.(Vectors); ok {
		return vec.Len()
	}
	return sliceLen(v)
}

func kindOfSlice(v any) (Kind, bool) {
	switch v.(type) {
	case []float64:
		return Float64, true
	case []float32:
		return Float32, true
	case []int8:
		return Int8, true
	case []uint8:
		return Uint8, true
	case []int16:
		return Int16, true
	case []uint16:
		return Uint16, true
	case []int32:
		return Int32, true
	case []uint32:
		return Uint32, true
	default:
		return KindInvalid, false
	}
}

func sliceLen(v any) int {
	switch s := v.(type) {
	case []float64:
		return len(s)
	case []float32:
		return len(s)
	case []int8:
		return len(s)
	case []uint8:
		return len(s)
	case []int16:
		return len(s)
	case []uint16:
		return len(s)
	case []int32:
		return len(s)
	case []uint32:
		return len(s)
	default:
		return 0
	}
}

// makeSlice allocates a native slice of kind k with n elements.
func makeSlice(k Kind, n int) any {
	switch k {
	case Float64:
		return make([]float64, n)
	case Float32:
		return make([]float32, n)
	case Int8:
		return make([]int8, n)
	case Uint8:
		return make([]uint8, n)
	case Int16:
		return make([]int16, n)
	case Uint16:
		return make([]uint16, n)
	case Int32:
		return make([]int32, n)
	case Uint32:
		return make([]uint32, n)
	default:
		return nil
	}
}

// ToNumbers converts a numeric array leaf into a JSON friendly []any of numbers. Vectors become
// nested arrays.
func ToNumbers(v any) []any {
	if vec, ok := v.(Vectors); ok && vec.Size > 1 {
		out := make([]any, 0, vec.Len())
		for i := 0; i < vec.Len(); i++ {
			comps := vec.At(i)
			inner := make([]any, len(comps))
			for c, f := range comps {
				inner[c] = f
			}
			out = append(out, inner)
		}
		return out
	} else if ok {
		v = vec.Data
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		elem := rv.Index(i)
		switch elem.Kind() {
		case reflect.Float32:
			out[i] = widenFloat32(elem.Float())
		case reflect.Float64:
			out[i] = elem.Float()
		case reflect.Int8, reflect.Int16, reflect.Int32:
			out[i] = float64(elem.Int())
		default:
			out[i] = float64(elem.Uint())
		}
	}
	return out
}

func bytesToInts(b []uint8) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// widenFloat32 returns the float64 with the shortest decimal form of a float32 value, so 0.1f
// becomes 0.1 rather than 0.10000000149011612.
func widenFloat32(f float64) float64 {
	widened, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', -1, 32), 64)
	if err != nil {
		return f
	}
	return widened
}
