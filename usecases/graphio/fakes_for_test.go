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

package graphio_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/graphio/adapters/repos/memgraph"
	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

var errCommitRejected = errors.New("commit rejected by store")

// countingGraph records how the loader drives a store. failOnEdge and
// failOnCommit make the n-th call of that kind fail.
type countingGraph struct {
	*memgraph.Graph
	commits      int
	failOnEdge   int
	failOnCommit int
	edgeCalls    int
	vertexCalls  int
}

func newCountingGraph(opts ...memgraph.Option) *countingGraph {
	return &countingGraph{Graph: memgraph.New(opts...)}
}

func (g *countingGraph) AddVertex(ctx context.Context, id any, label string,
	props []star.VertexProperty,
) (graph.Vertex, error) {
	g.vertexCalls++
	return g.Graph.AddVertex(ctx, id, label, props)
}

func (g *countingGraph) AddEdge(ctx context.Context, out, in graph.Vertex, label string, id any,
	props map[string]any,
) (graph.Edge, error) {
	g.edgeCalls++
	if g.failOnEdge > 0 && g.edgeCalls == g.failOnEdge {
		return nil, fmt.Errorf("constraint violation on edge %v", id)
	}
	return g.Graph.AddEdge(ctx, out, in, label, id, props)
}

func (g *countingGraph) Commit(ctx context.Context) error {
	g.commits++
	if g.failOnCommit > 0 && g.commits == g.failOnCommit {
		return errCommitRejected
	}
	return g.Graph.Commit(ctx)
}

func modernGraph(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/modern.json")
	require.Nil(t, err)
	return b
}

// triples lists every edge as out-label->in, sorted.
func triples(g *memgraph.Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, fmt.Sprintf("%v-%s->%v", e.OutVertex().ID(), e.Label(), e.InVertex().ID()))
	}
	sort.Strings(out)
	return out
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.Nil(t, err)
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

// plainGraph only offers the mandatory write capability.
type plainGraph struct {
	g *memgraph.Graph
}

func (p *plainGraph) AddVertex(ctx context.Context, id any, label string,
	props []star.VertexProperty,
) (graph.Vertex, error) {
	return p.g.AddVertex(ctx, id, label, props)
}

func (p *plainGraph) AddEdge(ctx context.Context, out, in graph.Vertex, label string, id any,
	props map[string]any,
) (graph.Edge, error) {
	return p.g.AddEdge(ctx, out, in, label, id, props)
}

func (p *plainGraph) SupportsTransactions() bool {
	return false
}

func (p *plainGraph) Commit(ctx context.Context) error {
	return nil
}

type fakeVertex struct {
	id    any
	label string
}

func (v *fakeVertex) ID() any       { return v.id }
func (v *fakeVertex) Label() string { return v.label }

type fakeVertexProperty struct {
	id    any
	key   string
	value any
}

func (p *fakeVertexProperty) ID() any       { return p.id }
func (p *fakeVertexProperty) Label() string { return p.key }
func (p *fakeVertexProperty) Key() string   { return p.key }
func (p *fakeVertexProperty) Value() any    { return p.value }

type mockGraph struct {
	mock.Mock
}

func (m *mockGraph) AddVertex(ctx context.Context, id any, label string,
	props []star.VertexProperty,
) (graph.Vertex, error) {
	args := m.Called(id, label, props)
	v, _ := args.Get(0).(graph.Vertex)
	return v, args.Error(1)
}

func (m *mockGraph) AddEdge(ctx context.Context, out, in graph.Vertex, label string, id any,
	props map[string]any,
) (graph.Edge, error) {
	args := m.Called(out, in, label, id, props)
	e, _ := args.Get(0).(graph.Edge)
	return e, args.Error(1)
}

func (m *mockGraph) SupportsTransactions() bool {
	return m.Called().Bool(0)
}

func (m *mockGraph) Commit(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *mockGraph) VertexProperties(ctx context.Context, v graph.Vertex,
	key string,
) ([]graph.VertexProperty, error) {
	args := m.Called(v, key)
	props, _ := args.Get(0).([]graph.VertexProperty)
	return props, args.Error(1)
}

func (m *mockGraph) Property(ctx context.Context, el graph.Element, key string) (graph.Property, error) {
	args := m.Called(el, key)
	p, _ := args.Get(0).(graph.Property)
	return p, args.Error(1)
}
