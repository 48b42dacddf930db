package tree

import (
	"reflect"
	"strconv"
	"strings"

	"go.viam.com/xviz/packer"
)

const (
	// TokenPrefix starts every buffer reference token.
	TokenPrefix = "$$$"
	// DefaultMinArraySize is the length below which numeric arrays stay inline in the skeleton.
	DefaultMinArraySize = 20

	escapedPrefix = "$" + TokenPrefix
)

// Token returns the reference token for buffer index i.
func Token(i int) string {
	return TokenPrefix + strconv.Itoa(i)
}

// ParseToken returns the buffer index encoded in s, if s is a token. A token whose digits do not
// fit an int is still a token and reports index -1, which no buffer matches.
func ParseToken(s string) (int, bool) {
	if !strings.HasPrefix(s, TokenPrefix) || strings.HasPrefix(s, escapedPrefix) {
		return 0, false
	}
	digits := s[len(TokenPrefix):]
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(digits)
	if err != nil {
		return -1, true
	}
	return idx, true
}

// Tokenize replaces every numeric array leaf of length >= minArraySize with a token naming its
// position in the returned arrays. Shorter arrays become plain JSON number arrays. Strings that
// already look like tokens are escaped with one extra "$".
func Tokenize(t any, minArraySize int) (skeleton any, arrays []any, err error) {
	skeleton, err = Rewrite(t, func(_ string, leaf any) (any, bool, error) {
		if s, ok := leaf.(string); ok {
			if strings.HasPrefix(s, TokenPrefix) {
				return "$" + s, true, nil
			}
			return s, true, nil
		}
		if packer.IsArray(leaf) {
			if packer.Len(leaf) < minArraySize {
				return packer.ToNumbers(leaf), true, nil
			}
			arrays = append(arrays, leaf)
			return Token(len(arrays) - 1), true, nil
		}
		if isUnsupportedNumericSlice(leaf) {
			return nil, false, &packer.UnsupportedTypeError{Index: len(arrays), Type: reflect.TypeOf(leaf)}
		}
		return nil, false, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return skeleton, arrays, nil
}

// Detokenize resolves every token in skeleton against arrays. The arrays placed in the result
// are copies.
func Detokenize(skeleton any, arrays []any) (any, error) {
	return Rewrite(skeleton, func(_ string, leaf any) (any, bool, error) {
		s, ok := leaf.(string)
		if !ok {
			return nil, false, nil
		}
		if strings.HasPrefix(s, escapedPrefix) {
			return s[1:], true, nil
		}
		if idx, isToken := ParseToken(s); isToken {
			if idx < 0 || idx >= len(arrays) {
				return nil, false, &DanglingTokenError{Token: s, Index: idx, Count: len(arrays)}
			}
			return CloneLeaf(arrays[idx]), true, nil
		}
		return s, true, nil
	})
}

func isUnsupportedNumericSlice(v any) bool {
	rt := reflect.TypeOf(v)
	if rt == nil || rt.Kind() != reflect.Slice {
		return false
	}
	switch rt.Elem().Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Uintptr,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}
