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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/graphio/entities/star"
)

func TestCypher(t *testing.T) {
	assert.Equal(t, "CREATE (v:`per``son` $props) RETURN elementId(v) AS id", createVertexCypher("per`son"))
	assert.Equal(t, "MATCH (a) WHERE elementId(a) = $out MATCH (b) WHERE elementId(b) = $in "+
		"CREATE (a)-[r:`knows` $props]->(b) RETURN elementId(r) AS id", createEdgeCypher("knows"))
	assert.Contains(t, vertexByIDCypher("src"), "v.`src` = $id")
	assert.Contains(t, edgeByIDCypher("src"), "r.`src` = $id")
}

func TestParams(t *testing.T) {
	t.Run("vertex", func(t *testing.T) {
		params, err := vertexParams("graphio_id", int64(1), []star.VertexProperty{
			{Key: "name", Value: "marko"},
			{Key: "name", Value: "okram", Properties: map[string]any{"since": int64(2010)}},
			{Key: "age", Value: int64(29)},
			{Key: "address", Value: map[string]any{"city": "Santa Fe"}},
			{Key: "tags", Value: []any{"a", "b"}},
			{Key: "mixed", Value: []any{"a", int64(1)}},
		})
		require.Nil(t, err)

		assert.Equal(t, map[string]any{
			"graphio_id": int64(1),
			"name":       []any{"marko", "okram"},
			"age":        int64(29),
			"address":    `{"city":"Santa Fe"}`,
			"tags":       []any{"a", "b"},
			"mixed":      `["a",1]`,
		}, params)
	})

	t.Run("edge", func(t *testing.T) {
		params, err := edgeParams("src", nil, map[string]any{"weight": 0.5})
		require.Nil(t, err)
		assert.Equal(t, map[string]any{"weight": 0.5}, params)
	})

	t.Run("null value", func(t *testing.T) {
		_, err := edgeParams("src", "e", map[string]any{"weight": nil})
		assert.NotNil(t, err)
	})
}
