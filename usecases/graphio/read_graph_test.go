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
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/graphio/adapters/codec/graphson"
	"github.com/weaviate/graphio/adapters/codec/msgpack"
	"github.com/weaviate/graphio/adapters/repos/boltgraph"
	"github.com/weaviate/graphio/adapters/repos/memgraph"
	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/usecases/graphio"
)

var modernTriples = []string{
	"1-created->3",
	"1-knows->2",
	"1-knows->4",
	"4-created->3",
	"4-created->5",
	"6-created->3",
}

func TestReadGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("two vertex records", func(t *testing.T) {
		in := `{"id":1,"label":"person","properties":{"name":["a"]},"outE":{"knows":[{"inV":2}]}}
{"id":2,"label":"person","properties":{"name":["b"]}}`
		g := memgraph.New()

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(in), g)
		require.Nil(t, err)

		assert.Equal(t, 2, g.VertexCount())
		require.Equal(t, 1, g.EdgeCount())
		e := g.Edges()[0]
		assert.Equal(t, "knows", e.Label())
		assert.Equal(t, int64(1), e.OutVertex().ID())
		assert.Equal(t, int64(2), e.InVertex().ID())

		a, err := g.VertexByID(ctx, int64(1))
		require.Nil(t, err)
		name, err := g.Property(ctx, a, "name")
		require.Nil(t, err)
		assert.Equal(t, "a", name.Value())
	})

	t.Run("modern graph", func(t *testing.T) {
		g := memgraph.New()

		err := graphio.New(graphson.New()).ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)
		require.Nil(t, err)

		assert.Equal(t, 6, g.VertexCount())
		assert.Equal(t, 6, g.EdgeCount())
		assert.Equal(t, modernTriples, triples(g))

		// incoming adjacency is declared twice in the stream but only wired
		// once from the outgoing side
		e, err := g.EdgeByID(ctx, int64(7))
		require.Nil(t, err)
		assert.Equal(t, map[string]any{"weight": 0.5}, e.(*memgraph.Edge).Properties())
	})

	t.Run("record order does not matter", func(t *testing.T) {
		lines := strings.Split(strings.TrimSpace(string(modernGraph(t))), "\n")
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
		g := memgraph.New()

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(strings.Join(lines, "\n")), g)
		require.Nil(t, err)

		assert.Equal(t, 6, g.VertexCount())
		assert.Equal(t, modernTriples, triples(g))
	})

	t.Run("empty stream", func(t *testing.T) {
		g := newCountingGraph(memgraph.WithTransactions())

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(""), g)
		require.Nil(t, err)

		assert.Equal(t, 0, g.VertexCount())
		assert.Equal(t, 1, g.commits)
	})
}

func TestReadGraphCommitPacing(t *testing.T) {
	ctx := context.Background()
	// 6 vertices and 6 edges
	const mutations = 12

	for _, batchSize := range []int{1, 2, 5, 11, 12, 13, 10000} {
		t.Run(fmt.Sprintf("transactional store with batch size %d", batchSize), func(t *testing.T) {
			g := newCountingGraph(memgraph.WithTransactions())
			r := graphio.New(graphson.New(), graphio.WithBatchSize(batchSize))

			err := r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)
			require.Nil(t, err)

			assert.Equal(t, mutations/batchSize+1, g.commits)
			assert.Equal(t, g.commits, g.Commits())
		})
	}

	t.Run("store without transactions", func(t *testing.T) {
		g := newCountingGraph()
		r := graphio.New(graphson.New(), graphio.WithBatchSize(1))

		err := r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)
		require.Nil(t, err)

		assert.Equal(t, 0, g.commits)
	})

	t.Run("default batch size", func(t *testing.T) {
		r := graphio.New(graphson.New(), graphio.WithBatchSize(0))
		assert.Equal(t, graphio.DefaultBatchSize, r.BatchSize())
	})
}

func TestReadGraphFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("vertex without identity", func(t *testing.T) {
		in := `{"label":"person","properties":{"name":["a"]}}`
		g := newCountingGraph()

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(in), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, graphio.PhaseVertices, loadErr.Phase)
		assert.Equal(t, 1, loadErr.Record)
		assert.Contains(t, loadErr.Fragment, "person")
		assert.ErrorIs(t, err, graphio.ErrMalformedRecord)

		var malformed *graphio.MalformedRecordError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, "id", malformed.Field)
		assert.Equal(t, 0, g.vertexCalls)
	})

	t.Run("edge without endpoint", func(t *testing.T) {
		in := `{"id":1,"label":"person","outE":{"knows":[{"id":7}]}}`
		g := newCountingGraph()

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(in), g)

		var malformed *graphio.MalformedRecordError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, "inV", malformed.Field)
		assert.Equal(t, 0, g.vertexCalls)
	})

	t.Run("undecodable record", func(t *testing.T) {
		in := "{\"id\":1,\"label\":\"person\"}\n{not json\n"
		g := newCountingGraph()

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(in), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, 2, loadErr.Record)
		assert.Equal(t, `"{not json"`, loadErr.Fragment)
		assert.ErrorIs(t, err, graphio.ErrDecode)
		assert.Equal(t, 1, g.vertexCalls)
	})

	t.Run("duplicate vertex identity", func(t *testing.T) {
		in := "{\"id\":1,\"label\":\"person\"}\n{\"id\":1,\"label\":\"software\"}\n"
		g := newCountingGraph()

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(in), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, 2, loadErr.Record)
		assert.ErrorIs(t, err, graphio.ErrDuplicateVertex)
		assert.Equal(t, 1, g.vertexCalls)
	})

	t.Run("store rejects a vertex", func(t *testing.T) {
		g := memgraph.New()
		_, err := g.AddVertex(ctx, int64(2), "person", nil)
		require.Nil(t, err)

		err = graphio.New(graphson.New()).ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, graphio.PhaseVertices, loadErr.Phase)
		assert.Equal(t, 2, loadErr.Record)
		assert.ErrorIs(t, err, graph.ErrDuplicateID)
	})

	t.Run("fragments are truncated", func(t *testing.T) {
		in := `{"label":"` + strings.Repeat("x", 200) + `"}`

		err := graphio.New(graphson.New()).ReadGraph(ctx, strings.NewReader(in), memgraph.New())

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, fmt.Sprintf("%q", in[:64]), loadErr.Fragment)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		g := newCountingGraph()

		err := graphio.New(graphson.New()).ReadGraph(cctx, bytes.NewReader(modernGraph(t)), g)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, g.vertexCalls)
	})
}

func TestReadGraphPartialDurability(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown edge endpoint", func(t *testing.T) {
		in := `{"id":1,"label":"person","outE":{"knows":[{"id":7,"inV":2},{"id":8,"inV":99}]}}
{"id":2,"label":"person"}`
		g := newCountingGraph(memgraph.WithTransactions())
		r := graphio.New(graphson.New(), graphio.WithBatchSize(2))

		err := r.ReadGraph(ctx, strings.NewReader(in), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, graphio.PhaseEdges, loadErr.Phase)
		assert.Equal(t, 1, loadErr.Record)
		assert.ErrorIs(t, err, graphio.ErrUnknownVertex)

		// both vertices were committed, the first edge was still pending
		assert.Equal(t, 1, g.commits)
		require.Nil(t, g.Rollback(ctx))
		assert.Equal(t, 2, g.VertexCount())
		assert.Equal(t, 0, g.EdgeCount())
	})

	t.Run("store rejects an edge", func(t *testing.T) {
		g := newCountingGraph(memgraph.WithTransactions())
		g.failOnEdge = 5
		r := graphio.New(graphson.New(), graphio.WithBatchSize(4))

		err := r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, graphio.PhaseEdges, loadErr.Phase)
		assert.Contains(t, err.Error(), "constraint violation")

		// 6 vertices and 2 edges made it into the first two batches
		assert.Equal(t, 2, g.commits)
		require.Nil(t, g.Rollback(ctx))
		assert.Equal(t, 6, g.VertexCount())
		assert.Equal(t, 2, g.EdgeCount())
	})
}

func TestReadGraphCommitFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("batch commit in the vertex phase", func(t *testing.T) {
		g := newCountingGraph(memgraph.WithTransactions())
		g.failOnCommit = 1
		r := graphio.New(graphson.New(), graphio.WithBatchSize(4))

		err := r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, graphio.PhaseCommit, loadErr.Phase)
		assert.Equal(t, 4, loadErr.Record)
		assert.NotEmpty(t, loadErr.Fragment)
		assert.ErrorIs(t, err, errCommitRejected)
		assert.Equal(t, 1, g.commits)
		assert.Equal(t, 4, g.vertexCalls)
	})

	t.Run("batch commit in the edge phase", func(t *testing.T) {
		g := newCountingGraph(memgraph.WithTransactions())
		g.failOnCommit = 2
		r := graphio.New(graphson.New(), graphio.WithBatchSize(4))

		err := r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, graphio.PhaseCommit, loadErr.Phase)
		assert.NotEmpty(t, loadErr.Fragment)
		assert.ErrorIs(t, err, errCommitRejected)
		assert.Equal(t, 2, g.commits)
		assert.Equal(t, 2, g.edgeCalls)
	})

	t.Run("final commit", func(t *testing.T) {
		g := newCountingGraph(memgraph.WithTransactions())
		g.failOnCommit = 1
		r := graphio.New(graphson.New(), graphio.WithBatchSize(10000))

		err := r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), g)

		var loadErr *graphio.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, graphio.PhaseCommit, loadErr.Phase)
		assert.Equal(t, 6, loadErr.Record)
		assert.Empty(t, loadErr.Fragment)
		assert.ErrorIs(t, err, errCommitRejected)
		assert.Contains(t, err.Error(), "commit after 12 mutations")
	})
}

func TestReadGraphObservability(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	r := graphio.New(graphson.New(),
		graphio.WithLogger(logger),
		graphio.WithMetrics(graphio.NewMetrics(reg)),
		graphio.WithBatchSize(5),
	)

	require.Nil(t, r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), memgraph.New(memgraph.WithTransactions())))
	err := r.ReadGraph(ctx, strings.NewReader(`{"id":1}`), memgraph.New())
	require.NotNil(t, err)

	assert.Equal(t, float64(6), counterValue(t, reg, "graphio_load_vertices_total"))
	assert.Equal(t, float64(6), counterValue(t, reg, "graphio_load_edges_total"))
	assert.Equal(t, float64(3), counterValue(t, reg, "graphio_load_commits_total"))
	assert.Equal(t, float64(1), counterValue(t, reg, "graphio_load_failures_total"))

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "graph load failed", last.Message)
	assert.Equal(t, "graph_load", last.Data["action"])
	assert.Equal(t, graphio.PhaseVertices, last.Data["phase"])
}

func TestReadGraphMsgpack(t *testing.T) {
	ctx := context.Background()
	source := memgraph.New()
	require.Nil(t, graphio.New(graphson.New()).ReadGraph(ctx, bytes.NewReader(modernGraph(t)), source))

	var buf bytes.Buffer
	require.Nil(t, graphio.NewWriter(msgpack.New()).WriteGraph(ctx, &buf, source))

	target := memgraph.New()
	require.Nil(t, graphio.New(msgpack.New()).ReadGraph(ctx, &buf, target))

	assert.Equal(t, 6, target.VertexCount())
	assert.Equal(t, modernTriples, triples(target))
	lop, err := target.VertexByID(ctx, int64(3))
	require.Nil(t, err)
	lang, err := target.Property(ctx, lop, "lang")
	require.Nil(t, err)
	assert.Equal(t, "java", lang.Value())
}

func TestReadGraphBolt(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	t.Run("modern graph survives a reopen", func(t *testing.T) {
		dir := t.TempDir()
		s := boltgraph.NewStore(dir, logger)
		require.Nil(t, s.Open())

		r := graphio.New(graphson.New(), graphio.WithBatchSize(5))
		require.Nil(t, r.ReadGraph(ctx, bytes.NewReader(modernGraph(t)), s))
		require.Nil(t, s.Close())

		s = boltgraph.NewStore(dir, logger)
		require.Nil(t, s.Open())
		defer s.Close()

		vertices, edges, err := s.Counts()
		require.Nil(t, err)
		assert.Equal(t, 6, vertices)
		assert.Equal(t, 6, edges)

		e, err := s.EdgeByID(ctx, int64(10))
		require.Nil(t, err)
		assert.Equal(t, int64(4), e.OutVertex().ID())
		assert.Equal(t, int64(5), e.InVertex().ID())
	})

	t.Run("committed batches survive a failed load", func(t *testing.T) {
		in := `{"id":1,"label":"person","outE":{"knows":[{"id":7,"inV":2},{"id":8,"inV":99}]}}
{"id":2,"label":"person"}`
		dir := t.TempDir()
		s := boltgraph.NewStore(dir, logger)
		require.Nil(t, s.Open())

		err := graphio.New(graphson.New(), graphio.WithBatchSize(2)).ReadGraph(ctx, strings.NewReader(in), s)
		assert.ErrorIs(t, err, graphio.ErrUnknownVertex)
		require.Nil(t, s.Close())

		s = boltgraph.NewStore(dir, logger)
		require.Nil(t, s.Open())
		defer s.Close()

		vertices, edges, err := s.Counts()
		require.Nil(t, err)
		assert.Equal(t, 2, vertices)
		assert.Equal(t, 0, edges)
	})
}
