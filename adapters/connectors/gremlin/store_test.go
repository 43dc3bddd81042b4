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

package gremlin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

func TestDSL(t *testing.T) {
	t.Run("escaping", func(t *testing.T) {
		assert.Equal(t, `a\"b\$c\\d`, EscapeString(`a"b$c\d`))
	})

	t.Run("literals", func(t *testing.T) {
		tests := []struct {
			value    any
			expected string
		}{
			{value: "marko", expected: `"marko"`},
			{value: true, expected: "true"},
			{value: int64(29), expected: "(long) 29"},
			{value: 0.5, expected: "(double) 0.5"},
			{value: json.Number("4216"), expected: "4216L"},
			{value: []any{"a"}, expected: `"[\"a\"]"`},
		}
		for _, test := range tests {
			lit, err := Literal(test.value)
			require.Nil(t, err)
			assert.Equal(t, test.expected, lit)
		}

		_, err := Literal(nil)
		assert.NotNil(t, err)
	})

	t.Run("add vertex", func(t *testing.T) {
		s := NewStore(nil, "", nil)
		q, err := s.AddVertexQuery(int64(1), "person", []star.VertexProperty{
			{Key: "name", Value: "marko"},
			{Key: "name", Value: "okram", Properties: map[string]any{"since": int64(2010)}},
		})
		require.Nil(t, err)

		assert.Equal(t, `g.addV("person").property("graphio_id", (long) 1)`+
			`.property(list, "name", "marko")`+
			`.property(list, "name", "okram", "since", (long) 2010).id()`, q.String())
	})

	t.Run("add edge", func(t *testing.T) {
		s := NewStore(nil, "src", nil)
		out := &Vertex{remoteID: json.Number("4"), id: int64(1)}
		in := &Vertex{remoteID: "v-8", id: int64(2)}

		q, err := s.AddEdgeQuery(out, in, "knows", int64(7), map[string]any{"weight": 0.5, "a": "b"})
		require.Nil(t, err)

		assert.Equal(t, `g.V(4L).as("out").V("v-8").addE("knows").from("out")`+
			`.property("src", (long) 7).property("a", "b").property("weight", (double) 0.5).id()`, q.String())
	})
}

// fakeServer answers gremlin queries from a list of canned responses.
type fakeServer struct {
	t         *testing.T
	queries   []string
	responses []string
	failures  int
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, http.MethodPost, r.Method)
	assert.Equal(f.t, "application/vnd.gremlin-v1.0+json", r.Header.Get("Accept"))

	if f.failures > 0 {
		f.failures--
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":{"message":"warming up","code":500}}`))
		return
	}

	body, err := io.ReadAll(r.Body)
	require.Nil(f.t, err)
	var q httpQuery
	require.Nil(f.t, json.Unmarshal(body, &q))
	f.queries = append(f.queries, q.Gremlin)

	res := `{"result":{"data":[]},"status":{"code":200}}`
	if len(f.responses) > 0 {
		res = f.responses[0]
		f.responses = f.responses[1:]
	}
	w.Write([]byte(res))
}

func newTestStore(t *testing.T, f *fakeServer) *Store {
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	logger, _ := test.NewNullLogger()
	return NewStore(NewClient(server.URL, time.Second, logger), "", logger)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("load vertices and an edge", func(t *testing.T) {
		f := &fakeServer{t: t, responses: []string{
			`{"result":{"data":[4096]},"status":{"code":200}}`,
			`{"result":{"data":[8192]},"status":{"code":200}}`,
			`{"result":{"data":["4r-36g-7x1-6bc"]},"status":{"code":200}}`,
		}}
		s := newTestStore(t, f)

		a, err := s.AddVertex(ctx, int64(1), "person", nil)
		require.Nil(t, err)
		b, err := s.AddVertex(ctx, int64(2), "person", nil)
		require.Nil(t, err)
		e, err := s.AddEdge(ctx, a, b, "knows", nil, nil)
		require.Nil(t, err)

		assert.Equal(t, int64(1), a.ID())
		assert.Equal(t, json.Number("4096"), a.(*Vertex).RemoteID())
		assert.Equal(t, int64(2), e.InVertex().ID())
		assert.False(t, s.SupportsTransactions())
		assert.Equal(t, `g.V(4096L).as("out").V(8192L).addE("knows").from("out").id()`, f.queries[2])
	})

	t.Run("resolve a vertex", func(t *testing.T) {
		f := &fakeServer{t: t, responses: []string{
			`{"result":{"data":[{"id":4096,"label":"person"}]},"status":{"code":200}}`,
		}}
		s := newTestStore(t, f)

		v, err := s.VertexByID(ctx, "marko")
		require.Nil(t, err)

		assert.Equal(t, "person", v.Label())
		assert.Equal(t, json.Number("4096"), v.(*Vertex).RemoteID())
		assert.Equal(t, `g.V().has("graphio_id", "marko").limit(1)`+
			`.project("id", "label").by(__.id()).by(__.label())`, f.queries[0])
	})

	t.Run("resolve an edge", func(t *testing.T) {
		f := &fakeServer{t: t, responses: []string{
			`{"result":{"data":[{"id":"e1","label":"knows","out":1,"outLabel":"person","outSource":1,` +
				`"in":2,"inLabel":"person","inSource":2}]},"status":{"code":200}}`,
		}}
		s := newTestStore(t, f)

		e, err := s.EdgeByID(ctx, int64(7))
		require.Nil(t, err)

		assert.Equal(t, "knows", e.Label())
		assert.Equal(t, int64(1), e.OutVertex().ID())
		assert.Equal(t, int64(2), e.InVertex().ID())
	})

	t.Run("count elements", func(t *testing.T) {
		f := &fakeServer{t: t, responses: []string{
			`{"result":{"data":[6]},"status":{"code":200}}`,
			`{"result":{"data":[7]},"status":{"code":200}}`,
		}}
		s := newTestStore(t, f)

		vertices, edges, err := s.Counts(ctx)
		require.Nil(t, err)

		assert.Equal(t, 6, vertices)
		assert.Equal(t, 7, edges)
		assert.Equal(t, []string{"g.V().count()", "g.E().count()"}, f.queries)
	})

	t.Run("count without a result", func(t *testing.T) {
		s := newTestStore(t, &fakeServer{t: t})

		_, _, err := s.Counts(ctx)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "count vertices")
	})

	t.Run("missing element", func(t *testing.T) {
		s := newTestStore(t, &fakeServer{t: t})

		_, err := s.VertexByID(ctx, int64(1))
		assert.ErrorIs(t, err, graph.ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		s := newTestStore(t, &fakeServer{t: t, failures: 1})

		_, err := s.AddVertex(ctx, int64(1), "person", nil)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "warming up")
	})
}

func TestPing(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until the server answers", func(t *testing.T) {
		f := &fakeServer{t: t, failures: 2}
		s := newTestStore(t, f)

		require.Nil(t, s.client.Ping(ctx, 5*time.Second))
		assert.Equal(t, []string{"g.V().limit(0)"}, f.queries)
	})

	t.Run("gives up", func(t *testing.T) {
		s := newTestStore(t, &fakeServer{t: t, failures: 1000})

		err := s.client.Ping(ctx, 300*time.Millisecond)
		assert.NotNil(t, err)
	})
}

func TestRateLimit(t *testing.T) {
	f := &fakeServer{t: t}
	s := newTestStore(t, f)
	s.client.SetRateLimit(20)

	start := time.Now()
	for i := 0; i < 4; i++ {
		_, err := s.client.Execute(context.Background(), G.V().Limit(0))
		require.Nil(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Len(t, f.queries, 4)

	t.Run("waiting respects the context", func(t *testing.T) {
		s.client.SetRateLimit(0.01)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := s.client.Execute(ctx, G.V().Limit(0))
		assert.NotNil(t, err)
	})

	t.Run("zero removes the cap", func(t *testing.T) {
		s.client.SetRateLimit(0)
		start := time.Now()
		for i := 0; i < 10; i++ {
			_, err := s.client.Execute(context.Background(), G.V().Limit(0))
			require.Nil(t, err)
		}
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}
