// Package tree walks JSON-like message trees made of map[string]any, []any, scalars and
// numeric array leaves. The walk is shared by buffer tokenization and protobuf enum rewriting.
package tree

import (
	"maps"
	"slices"

	"github.com/pkg/errors"

	"go.viam.com/xviz/packer"
)

// LeafRule rewrites a single leaf. key is the map key the leaf is stored under, or the key of
// the closest enclosing map for leaves inside sequences. When handled is false the leaf is
// deep-copied unchanged.
type LeafRule func(key string, leaf any) (replacement any, handled bool, err error)

// Rewrite returns a deep copy of v with every leaf passed through rule. Maps and sequences are
// always copied so the result shares no mutable state with v. v must be acyclic.
func Rewrite(v any, rule LeafRule) (any, error) {
	return rewrite("", v, rule)
}

func rewrite(key string, v any, rule LeafRule) (any, error) {
	switch node := v.(type) {
	case map[string]any:
		if node == nil {
			return node, nil
		}
		out := make(map[string]any, len(node))
		// sorted so that rules with side effects (token numbering) are deterministic
		for _, k := range slices.Sorted(maps.Keys(node)) {
			child := node[k]
			rewritten, err := rewrite(k, child, rule)
			if err != nil {
				return nil, errors.Wrapf(err, "at %q", k)
			}
			out[k] = rewritten
		}
		return out, nil
	case []any:
		if node == nil {
			return node, nil
		}
		out := make([]any, len(node))
		for i, child := range node {
			rewritten, err := rewrite(key, child, rule)
			if err != nil {
				return nil, errors.Wrapf(err, "at [%d]", i)
			}
			out[i] = rewritten
		}
		return out, nil
	}

	if rule != nil {
		replacement, handled, err := rule(key, v)
		if err != nil {
			return nil, err
		}
		if handled {
			return replacement, nil
		}
	}
	return CloneLeaf(v), nil
}

// CloneLeaf copies numeric array leaves. Scalars are returned as is.
func CloneLeaf(v any) any {
	switch arr := v.(type) {
	case []float64:
		return append([]float64(nil), arr...)
	case []float32:
		return append([]float32(nil), arr...)
	case []int8:
		return append([]int8(nil), arr...)
	case []uint8:
		return append([]uint8(nil), arr...)
	case []int16:
		return append([]int16(nil), arr...)
	case []uint16:
		return append([]uint16(nil), arr...)
	case []int32:
		return append([]int32(nil), arr...)
	case []uint32:
		return append([]uint32(nil), arr...)
	case []string:
		return append([]string(nil), arr...)
	case packer.Vectors:
		return packer.Vectors{Data: CloneLeaf(arr.Data), Size: arr.Size}
	default:
		return v
	}
}
