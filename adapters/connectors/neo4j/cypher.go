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

package neo4j

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/weaviate/graphio/entities/star"
)

// DefaultSourceIDKey is the property holding the identity an element was
// loaded with.
const DefaultSourceIDKey = "graphio_id"

// quote renders a label or key as a backtick quoted identifier.
func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func createVertexCypher(label string) string {
	return fmt.Sprintf("CREATE (v:%s $props) RETURN elementId(v) AS id", quote(label))
}

func createEdgeCypher(label string) string {
	return fmt.Sprintf("MATCH (a) WHERE elementId(a) = $out "+
		"MATCH (b) WHERE elementId(b) = $in "+
		"CREATE (a)-[r:%s $props]->(b) RETURN elementId(r) AS id", quote(label))
}

func vertexByIDCypher(key string) string {
	return fmt.Sprintf("MATCH (v) WHERE v.%s = $id "+
		"RETURN elementId(v) AS id, labels(v)[0] AS label LIMIT 1", quote(key))
}

func edgeByIDCypher(key string) string {
	return fmt.Sprintf("MATCH (a)-[r]->(b) WHERE r.%s = $id "+
		"RETURN elementId(r) AS id, type(r) AS label, "+
		"elementId(a) AS out, labels(a)[0] AS outLabel, a.%s AS outSource, "+
		"elementId(b) AS in, labels(b)[0] AS inLabel, b.%s AS inSource LIMIT 1",
		quote(key), quote(key), quote(key))
}

// vertexParams flattens vertex properties into a Neo4j property map. Keys
// with several values become lists; meta-properties have no Neo4j
// counterpart and are dropped.
func vertexParams(sourceKey string, id any, props []star.VertexProperty) (map[string]any, error) {
	values := map[string][]any{}
	var keys []string
	for _, p := range props {
		v, err := propertyValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Key, err)
		}
		if _, ok := values[p.Key]; !ok {
			keys = append(keys, p.Key)
		}
		values[p.Key] = append(values[p.Key], v)
	}

	out := make(map[string]any, len(keys)+1)
	for _, k := range keys {
		if len(values[k]) == 1 {
			out[k] = values[k][0]
		} else {
			out[k] = values[k]
		}
	}
	if id != nil {
		out[sourceKey] = id
	}
	return out, nil
}

func edgeParams(sourceKey string, id any, props map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(props)+1)
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := propertyValue(props[k])
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", k, err)
		}
		out[k] = v
	}
	if id != nil {
		out[sourceKey] = id
	}
	return out, nil
}

// propertyValue maps a value onto the Neo4j property types. Maps and mixed
// lists have no counterpart and are stored as JSON text.
func propertyValue(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("null values cannot be stored")
	case string, bool, int64, float64:
		return t, nil
	case []any:
		if homogeneous(t) {
			return t, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func homogeneous(list []any) bool {
	if len(list) == 0 {
		return true
	}
	first := fmt.Sprintf("%T", list[0])
	for _, v := range list {
		switch v.(type) {
		case string, bool, int64, float64:
		default:
			return false
		}
		if fmt.Sprintf("%T", v) != first {
			return false
		}
	}
	return true
}
