//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package star holds the detached, store-agnostic view of graph elements as
// they appear in a star record: one vertex together with its incident edges.
// Edges only reference the other endpoint by identity, never by pointer, so a
// Vertex can be held without any of its neighbours being materialized.
package star

import (
	"encoding/json"
	"fmt"
	"math"
)

// NormalizeID turns a decoded identity into one of int64, float64, string or
// bool. Codecs disagree on number representations (json.Number, int8,
// uint32, ...), normalizing keeps identities comparable across codecs and
// usable as map keys.
func NormalizeID(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("identity is null")
	case string, bool, int64, float64:
		return t, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("identity %q is not a number", t.String())
		}
		return f, nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint:
		return normalizeUint(uint64(t))
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return normalizeUint(t)
	case float32:
		return float64(t), nil
	default:
		return nil, fmt.Errorf("identity of type %T is not a scalar", v)
	}
}

func normalizeUint(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("identity %d overflows int64", u)
	}
	return int64(u), nil
}

// NormalizeValue applies the number normalization of NormalizeID to property
// values. Non-scalar values are walked recursively, values that cannot be
// normalized are returned unchanged.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = NormalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = NormalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = NormalizeValue(val)
		}
		return out
	case nil, string, bool, []byte:
		return t
	}

	if n, err := NormalizeID(v); err == nil {
		return n
	}
	return v
}
