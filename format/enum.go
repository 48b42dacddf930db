package format

import (
	"github.com/spf13/cast"

	"go.viam.com/xviz/tree"
)

// enumTables maps the enum fields of the protocol to their protobuf numbers.
var enumTables = map[string]map[string]int{
	"update_type": {
		"SNAPSHOT":       1,
		"INCREMENTAL":    2,
		"COMPLETE_STATE": 3,
		"PERSISTENT":     4,
	},
	"category": {
		"PRIMITIVE":       1,
		"TIME_SERIES":     2,
		"VARIABLE":        3,
		"ANNOTATION":      4,
		"FUTURE_INSTANCE": 5,
		"POSE":            6,
		"UI_PRIMITIVE":    7,
	},
	"primitive_type": {
		"CIRCLE":   1,
		"IMAGE":    2,
		"POINT":    3,
		"POLYGON":  4,
		"POLYLINE": 5,
		"STADIUM":  6,
		"TEXT":     7,
	},
	"scalar_type": {
		"FLOAT":  1,
		"INT32":  2,
		"STRING": 3,
		"BOOL":   4,
	},
}

var enumNames = invertTables(enumTables)

func invertTables(tables map[string]map[string]int) map[string]map[int]string {
	out := make(map[string]map[int]string, len(tables))
	for field, table := range tables {
		inverted := make(map[int]string, len(table))
		for name, n := range table {
			inverted[n] = name
		}
		out[field] = inverted
	}
	return out
}

// enumsToNumbers replaces enum names with their numbers.
func enumsToNumbers(t any) (any, error) {
	return tree.Rewrite(t, func(key string, leaf any) (any, bool, error) {
		table, ok := enumTables[key]
		if !ok {
			return nil, false, nil
		}
		name, ok := leaf.(string)
		if !ok {
			return nil, false, nil
		}
		n, ok := table[name]
		if !ok {
			return nil, false, &UnknownEnumError{Field: key, Value: name}
		}
		return float64(n), true, nil
	})
}

// enumsToNames replaces enum numbers with their names.
func enumsToNames(t any) (any, error) {
	return tree.Rewrite(t, func(key string, leaf any) (any, bool, error) {
		table, ok := enumNames[key]
		if !ok {
			return nil, false, nil
		}
		if _, isName := leaf.(string); isName {
			return nil, false, nil
		}
		n, err := cast.ToIntE(leaf)
		if err != nil {
			return nil, false, &UnknownEnumError{Field: key, Value: leaf}
		}
		name, ok := table[n]
		if !ok {
			return nil, false, &UnknownEnumError{Field: key, Value: leaf}
		}
		return name, true, nil
	})
}
