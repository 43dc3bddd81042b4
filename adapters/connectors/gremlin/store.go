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
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

// DefaultSourceIDKey is the property holding the identity an element was
// loaded with. Gremlin servers assign their own element ids.
const DefaultSourceIDKey = "graphio_id"

type Vertex struct {
	remoteID any
	id       any
	label    string
}

func (v *Vertex) ID() any {
	return v.id
}

func (v *Vertex) Label() string {
	return v.label
}

// RemoteID is the id the server assigned.
func (v *Vertex) RemoteID() any {
	return v.remoteID
}

type Edge struct {
	remoteID any
	id       any
	label    string
	out, in  *Vertex
}

func (e *Edge) ID() any {
	return e.id
}

func (e *Edge) Label() string {
	return e.label
}

func (e *Edge) OutVertex() graph.Vertex {
	return e.out
}

func (e *Edge) InVertex() graph.Vertex {
	return e.in
}

// Store writes to a Gremlin Server over sessionless HTTP requests. Every
// request commits on its own, so the store reports no transaction support.
type Store struct {
	client      *Client
	sourceIDKey string
	logger      logrus.FieldLogger
}

func NewStore(client *Client, sourceIDKey string, logger logrus.FieldLogger) *Store {
	if sourceIDKey == "" {
		sourceIDKey = DefaultSourceIDKey
	}
	return &Store{client: client, sourceIDKey: sourceIDKey, logger: logger}
}

func (s *Store) SupportsTransactions() bool {
	return false
}

func (s *Store) Commit(ctx context.Context) error {
	return nil
}

// AddVertexQuery builds the traversal creating a vertex. Vertex property ids
// are server assigned and dropped.
func (s *Store) AddVertexQuery(id any, label string, props []star.VertexProperty) (*Query, error) {
	q := G.AddV(label)
	if id != nil {
		lit, err := Literal(id)
		if err != nil {
			return nil, errors.Wrap(err, "vertex id")
		}
		q = q.Property(s.sourceIDKey, lit)
	}
	for _, p := range props {
		lit, err := Literal(p.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "property %s", p.Key)
		}
		meta, err := metaLiterals(p.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "property %s", p.Key)
		}
		q = q.ListProperty(p.Key, lit, meta...)
	}
	return q.ID(), nil
}

// AddEdgeQuery builds the traversal creating an edge between two vertices
// known by their server ids.
func (s *Store) AddEdgeQuery(out, in *Vertex, label string, id any, props map[string]any) (*Query, error) {
	outLit, err := Literal(out.remoteID)
	if err != nil {
		return nil, errors.Wrap(err, "out vertex")
	}
	inLit, err := Literal(in.remoteID)
	if err != nil {
		return nil, errors.Wrap(err, "in vertex")
	}

	q := G.V(outLit).As("out").V(inLit).AddE(label).FromRef("out")
	if id != nil {
		lit, err := Literal(id)
		if err != nil {
			return nil, errors.Wrap(err, "edge id")
		}
		q = q.Property(s.sourceIDKey, lit)
	}
	for _, key := range sortedKeys(props) {
		lit, err := Literal(props[key])
		if err != nil {
			return nil, errors.Wrapf(err, "property %s", key)
		}
		q = q.Property(key, lit)
	}
	return q.ID(), nil
}

func (s *Store) AddVertex(ctx context.Context, id any, label string,
	props []star.VertexProperty,
) (graph.Vertex, error) {
	q, err := s.AddVertexQuery(id, label, props)
	if err != nil {
		return nil, err
	}
	remoteID, err := s.single(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "add vertex %v", id)
	}
	return &Vertex{remoteID: remoteID, id: id, label: label}, nil
}

func (s *Store) AddEdge(ctx context.Context, out, in graph.Vertex, label string, id any,
	props map[string]any,
) (graph.Edge, error) {
	outV, ok := out.(*Vertex)
	if !ok {
		return nil, errors.Errorf("out vertex of type %T does not belong to this store", out)
	}
	inV, ok := in.(*Vertex)
	if !ok {
		return nil, errors.Errorf("in vertex of type %T does not belong to this store", in)
	}
	q, err := s.AddEdgeQuery(outV, inV, label, id, props)
	if err != nil {
		return nil, err
	}
	remoteID, err := s.single(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "add edge %v", id)
	}
	return &Edge{remoteID: remoteID, id: id, label: label, out: outV, in: inV}, nil
}

func (s *Store) VertexByID(ctx context.Context, id any) (graph.Vertex, error) {
	lit, err := Literal(id)
	if err != nil {
		return nil, err
	}
	q := G.V().Has(s.sourceIDKey, lit).Limit(1).
		Project("id", "label").
		By(Current().ID()).
		By(Current().Label())
	row, err := s.row(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "vertex %v", id)
	}
	return &Vertex{remoteID: row["id"], id: id, label: fmt.Sprint(row["label"])}, nil
}

func (s *Store) EdgeByID(ctx context.Context, id any) (graph.Edge, error) {
	lit, err := Literal(id)
	if err != nil {
		return nil, err
	}
	q := G.E().Has(s.sourceIDKey, lit).Limit(1).
		Project("id", "label", "out", "outLabel", "outSource", "in", "inLabel", "inSource").
		By(Current().ID()).
		By(Current().Label()).
		By(Current().OutV().ID()).
		By(Current().OutV().Label()).
		By(Current().OutV().Values(s.sourceIDKey)).
		By(Current().InV().ID()).
		By(Current().InV().Label()).
		By(Current().InV().Values(s.sourceIDKey))
	row, err := s.row(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "edge %v", id)
	}
	return &Edge{
		remoteID: row["id"],
		id:       id,
		label:    fmt.Sprint(row["label"]),
		out:      &Vertex{remoteID: row["out"], id: sourceID(row["outSource"]), label: fmt.Sprint(row["outLabel"])},
		in:       &Vertex{remoteID: row["in"], id: sourceID(row["inSource"]), label: fmt.Sprint(row["inLabel"])},
	}, nil
}

// Counts returns the number of vertices and edges on the server.
func (s *Store) Counts(ctx context.Context) (vertices, edges int, err error) {
	if vertices, err = s.count(ctx, G.V().Count()); err != nil {
		return 0, 0, errors.Wrap(err, "count vertices")
	}
	if edges, err = s.count(ctx, G.E().Count()); err != nil {
		return 0, 0, errors.Wrap(err, "count edges")
	}
	return vertices, edges, nil
}

func (s *Store) count(ctx context.Context, q *Query) (int, error) {
	res, err := s.single(ctx, q)
	if err != nil {
		return 0, err
	}
	n, ok := res.(json.Number)
	if !ok {
		return 0, fmt.Errorf("unexpected count of type %T", res)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, errors.Wrapf(err, "parse count %q", n)
	}
	return int(i), nil
}

func (s *Store) single(ctx context.Context, q *Query) (any, error) {
	data, err := s.client.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(data) != 1 {
		return nil, fmt.Errorf("expected one result, got %d", len(data))
	}
	return data[0], nil
}

func (s *Store) row(ctx context.Context, q *Query) (map[string]any, error) {
	data, err := s.client.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, graph.ErrNotFound
	}
	row, ok := data[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result of type %T", data[0])
	}
	return row, nil
}

func metaLiterals(meta map[string]any) ([]string, error) {
	out := make([]string, 0, 2*len(meta))
	for _, key := range sortedKeys(meta) {
		lit, err := Literal(meta[key])
		if err != nil {
			return nil, err
		}
		out = append(out, key, lit)
	}
	return out, nil
}

// sourceID normalizes an identity read back from the server.
func sourceID(v any) any {
	if n, ok := v.(json.Number); ok {
		if id, err := star.NormalizeID(n); err == nil {
			return id
		}
	}
	return v
}
