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
	"context"

	"github.com/pkg/errors"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

type cacheEntry struct {
	// vertex keeps the adjacency replayed in the edge phase. Its properties
	// are dropped once the live vertex exists.
	vertex *star.Vertex
	live   graph.Vertex
	record int
}

// identityCache maps source identities to live vertices for the duration of
// one bulk load. Entries live in an arena in insertion order, neighbours are
// referenced by identity only.
type identityCache struct {
	entries []cacheEntry
	index   map[any]int
}

func newIdentityCache() *identityCache {
	return &identityCache{index: map[any]int{}}
}

func (c *identityCache) contains(id any) bool {
	_, ok := c.index[id]
	return ok
}

func (c *identityCache) add(v *star.Vertex, live graph.Vertex, record int) {
	trimmed := star.NewVertex(v.ID(), v.Label(), nil, v.OutEdges(), nil)
	c.index[v.ID()] = len(c.entries)
	c.entries = append(c.entries, cacheEntry{vertex: trimmed, live: live, record: record})
}

func (c *identityCache) len() int {
	return len(c.entries)
}

func (c *identityCache) lookup(_ context.Context, id any) (graph.Vertex, error) {
	slot, ok := c.index[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownVertex, "%v", id)
	}
	return c.entries[slot].live, nil
}
