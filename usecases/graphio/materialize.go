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

package graphio

import (
	"sort"

	"github.com/weaviate/graphio/entities/star"
)

func requireID(tree map[string]any, field string) (any, error) {
	raw, ok := tree[field]
	if !ok {
		return nil, missingField(field)
	}
	id, err := star.NormalizeID(raw)
	if err != nil {
		return nil, invalidField(field, "%v", err)
	}
	return id, nil
}

func optionalID(tree map[string]any, field string) (any, error) {
	raw, ok := tree[field]
	if !ok || raw == nil {
		return nil, nil
	}
	id, err := star.NormalizeID(raw)
	if err != nil {
		return nil, invalidField(field, "%v", err)
	}
	return id, nil
}

func requireString(tree map[string]any, field string) (string, error) {
	raw, ok := tree[field]
	if !ok {
		return "", missingField(field)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidField(field, "must be a string, got %T", raw)
	}
	return s, nil
}

func requireValue(tree map[string]any, field string) (any, error) {
	raw, ok := tree[field]
	if !ok {
		return nil, missingField(field)
	}
	return star.NormalizeValue(raw), nil
}

func optionalMap(tree map[string]any, field string) (map[string]any, error) {
	raw, ok := tree[field]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, invalidField(field, "must be an object, got %T", raw)
	}
	return m, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizedProperties copies a flat property map normalizing every value.
func normalizedProperties(tree map[string]any, field string) (map[string]any, error) {
	props, err := optionalMap(tree, field)
	if err != nil || props == nil {
		return nil, err
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = star.NormalizeValue(v)
	}
	return out, nil
}

// materializeVertex builds a star vertex from a vertex record. Properties are
// read first, adjacency lists are only walked when dir asks for them.
func materializeVertex(tree map[string]any, dir star.Direction) (*star.Vertex, error) {
	id, err := requireID(tree, star.TokenID)
	if err != nil {
		return nil, err
	}
	label, err := requireString(tree, star.TokenLabel)
	if err != nil {
		return nil, err
	}
	props, err := materializeVertexProperties(tree)
	if err != nil {
		return nil, err
	}

	var outEdges, inEdges []star.Edge
	if dir.Includes(star.DirectionOut) {
		if outEdges, err = materializeAdjacency(tree, star.TokenOutE, star.TokenInV); err != nil {
			return nil, err
		}
	}
	if dir.Includes(star.DirectionIn) {
		if inEdges, err = materializeAdjacency(tree, star.TokenInE, star.TokenOutV); err != nil {
			return nil, err
		}
	}

	return star.NewVertex(id, label, props, outEdges, inEdges), nil
}

func materializeVertexProperties(tree map[string]any) ([]star.VertexProperty, error) {
	props, err := optionalMap(tree, star.TokenProperties)
	if err != nil || props == nil {
		return nil, err
	}

	var out []star.VertexProperty
	for _, key := range sortedKeys(props) {
		values, ok := props[key].([]any)
		if !ok {
			// a bare value is a single-valued property
			values = []any{props[key]}
		}
		for _, v := range values {
			p, err := materializeStarProperty(key, v)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// materializeStarProperty reads one element of a property list: either a bare
// value or an object {id?, value, properties?}.
func materializeStarProperty(key string, raw any) (star.VertexProperty, error) {
	field := star.TokenProperties + "." + key
	obj, ok := raw.(map[string]any)
	if !ok {
		return star.VertexProperty{Key: key, Value: star.NormalizeValue(raw)}, nil
	}
	if _, ok := obj[star.TokenValue]; !ok {
		// plain map valued property
		return star.VertexProperty{Key: key, Value: star.NormalizeValue(raw)}, nil
	}

	id, err := optionalID(obj, star.TokenID)
	if err != nil {
		return star.VertexProperty{}, invalidField(field, "%v", err)
	}
	meta, err := normalizedProperties(obj, star.TokenProperties)
	if err != nil {
		return star.VertexProperty{}, invalidField(field, "%v", err)
	}
	return star.VertexProperty{
		ID:         id,
		Key:        key,
		Value:      star.NormalizeValue(obj[star.TokenValue]),
		Properties: meta,
	}, nil
}

// materializeAdjacency reads outE or inE. otherField is the key carrying the
// opposite endpoint identity, inV for outE and outV for inE.
func materializeAdjacency(tree map[string]any, field, otherField string) ([]star.Edge, error) {
	adj, err := optionalMap(tree, field)
	if err != nil || adj == nil {
		return nil, err
	}

	var out []star.Edge
	for _, label := range sortedKeys(adj) {
		entries, ok := adj[label].([]any)
		if !ok {
			return nil, invalidField(field+"."+label, "must be a list, got %T", adj[label])
		}
		for i, raw := range entries {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, invalidField(field+"."+label, "entry %d must be an object, got %T", i, raw)
			}
			e, err := materializeStarEdge(entry, label, otherField)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func materializeStarEdge(entry map[string]any, label, otherField string) (star.Edge, error) {
	other, err := requireID(entry, otherField)
	if err != nil {
		return star.Edge{}, err
	}
	id, err := optionalID(entry, star.TokenID)
	if err != nil {
		return star.Edge{}, err
	}
	props, err := normalizedProperties(entry, star.TokenProperties)
	if err != nil {
		return star.Edge{}, err
	}
	return star.Edge{ID: id, Label: label, Other: other, Properties: props}, nil
}

func materializeEdge(tree map[string]any) (*star.DetachedEdge, error) {
	id, err := requireID(tree, star.TokenID)
	if err != nil {
		return nil, err
	}
	label, err := requireString(tree, star.TokenLabel)
	if err != nil {
		return nil, err
	}
	out, err := requireID(tree, star.TokenOut)
	if err != nil {
		return nil, err
	}
	outLabel, err := requireString(tree, star.TokenOutLabel)
	if err != nil {
		return nil, err
	}
	in, err := requireID(tree, star.TokenIn)
	if err != nil {
		return nil, err
	}
	inLabel, err := requireString(tree, star.TokenInLabel)
	if err != nil {
		return nil, err
	}
	props, err := normalizedProperties(tree, star.TokenProperties)
	if err != nil {
		return nil, err
	}
	return &star.DetachedEdge{
		ID:         id,
		Label:      label,
		Properties: props,
		Out:        star.Ref{ID: out, Label: outLabel},
		In:         star.Ref{ID: in, Label: inLabel},
	}, nil
}

// materializeVertexProperty reads a standalone vertex property record. The
// property key travels in the label field.
func materializeVertexProperty(tree map[string]any) (*star.DetachedVertexProperty, error) {
	id, err := requireID(tree, star.TokenID)
	if err != nil {
		return nil, err
	}
	key, err := requireString(tree, star.TokenLabel)
	if err != nil {
		return nil, err
	}
	value, err := requireValue(tree, star.TokenValue)
	if err != nil {
		return nil, err
	}
	meta, err := normalizedProperties(tree, star.TokenProperties)
	if err != nil {
		return nil, err
	}
	return &star.DetachedVertexProperty{ID: id, Key: key, Value: value, Properties: meta}, nil
}

func materializeProperty(tree map[string]any) (*star.DetachedProperty, error) {
	key, err := requireString(tree, star.TokenKey)
	if err != nil {
		return nil, err
	}
	value, err := requireValue(tree, star.TokenValue)
	if err != nil {
		return nil, err
	}
	return &star.DetachedProperty{Key: key, Value: value}, nil
}
