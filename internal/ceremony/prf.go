// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ceremony

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NormalizePRFOutput converts the pseudorandom evaluation output of a device
// credential into a canonical byte slice. Platforms hand it over in several
// shapes:
//   - []byte or a fixed [32]byte array;
//   - base64 or base64url text, padded or not;
//   - a JSON-decoded typed array: []any of numbers, or an object with
//     numeric keys ({"0": 12, "1": 200, ...});
//   - []int / []uint8 style integer slices.
//
// Anything else, an empty value or a number outside 0..255 yields
// [ErrInvalidPRFOutput]. The returned slice never aliases the input.
func NormalizePRFOutput(v any) ([]byte, error) {
	var out []byte
	var err error

	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: missing", ErrInvalidPRFOutput)
	case []byte:
		out = append([]byte(nil), val...)
	case [32]byte:
		out = append([]byte(nil), val[:]...)
	case *[32]byte:
		if val == nil {
			return nil, fmt.Errorf("%w: missing", ErrInvalidPRFOutput)
		}
		out = append([]byte(nil), val[:]...)
	case string:
		out, err = decodeBase64Any(val)
	case []int:
		out, err = fromInts(len(val), func(i int) (float64, bool) { return float64(val[i]), true })
	case []any:
		out, err = fromInts(len(val), func(i int) (float64, bool) {
			f, ok := val[i].(float64)
			return f, ok
		})
	case map[string]any:
		out, err = fromIndexedObject(val)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidPRFOutput, v)
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPRFOutput)
	}
	return out, nil
}

func decodeBase64Any(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	}
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: string is not base64 or base64url", ErrInvalidPRFOutput)
}

func fromInts(n int, at func(i int) (float64, bool)) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		f, ok := at(i)
		if !ok || f < 0 || f > 255 || f != float64(int(f)) {
			return nil, fmt.Errorf("%w: element %d is not a byte", ErrInvalidPRFOutput, i)
		}
		out[i] = byte(f)
	}
	return out, nil
}

// fromIndexedObject handles the JSON form of a typed array, whose keys are
// the decimal indices 0..n-1.
func fromIndexedObject(m map[string]any) ([]byte, error) {
	idx := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric key %q", ErrInvalidPRFOutput, k)
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for want, got := range idx {
		if want != got {
			return nil, fmt.Errorf("%w: missing index %d", ErrInvalidPRFOutput, want)
		}
	}

	return fromInts(len(idx), func(i int) (float64, bool) {
		f, ok := m[strconv.Itoa(i)].(float64)
		return f, ok
	})
}
