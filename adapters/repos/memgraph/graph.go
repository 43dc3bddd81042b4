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

// Package memgraph is an in-memory graph store. It optionally emulates
// transactions: mutations made since the last commit can be rolled back.
package memgraph

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

type Vertex struct {
	id         any
	label      string
	properties []*VertexProperty
}

func (v *Vertex) ID() any       { return v.id }
func (v *Vertex) Label() string { return v.label }

func (v *Vertex) String() string {
	return fmt.Sprintf("v[%v]", v.id)
}

type Edge struct {
	id         any
	label      string
	out, in    *Vertex
	properties map[string]any
}

func (e *Edge) ID() any                 { return e.id }
func (e *Edge) Label() string           { return e.label }
func (e *Edge) OutVertex() graph.Vertex { return e.out }
func (e *Edge) InVertex() graph.Vertex  { return e.in }
func (e *Edge) Properties() map[string]any {
	out := make(map[string]any, len(e.properties))
	for k, v := range e.properties {
		out[k] = v
	}
	return out
}

func (e *Edge) String() string {
	return fmt.Sprintf("e[%v][%v-%s->%v]", e.id, e.out.id, e.label, e.in.id)
}

type VertexProperty struct {
	id    any
	key   string
	value any
	meta  map[string]any
}

func (p *VertexProperty) ID() any       { return p.id }
func (p *VertexProperty) Label() string { return p.key }
func (p *VertexProperty) Key() string   { return p.key }
func (p *VertexProperty) Value() any    { return p.value }

type Property struct {
	key   string
	value any
}

func (p *Property) Key() string { return p.key }
func (p *Property) Value() any  { return p.value }

// Graph is safe for concurrent use.
type Graph struct {
	sync.Mutex
	vertices    map[any]*Vertex
	vertexOrder []any
	edges       map[any]*Edge
	edgeOrder   []any

	transactional bool
	undo          []func()
	commits       int
	logger        logrus.FieldLogger
}

type Option func(*Graph)

// WithTransactions makes the graph report transaction support. Commit then
// makes pending mutations permanent and Rollback discards them.
func WithTransactions() Option {
	return func(g *Graph) {
		g.transactional = true
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

func New(opts ...Option) *Graph {
	g := &Graph{
		vertices: map[any]*Vertex{},
		edges:    map[any]*Edge{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		g.logger = l
	}
	return g
}

func (g *Graph) SupportsTransactions() bool {
	return g.transactional
}

func (g *Graph) AddVertex(ctx context.Context, id any, label string,
	props []star.VertexProperty,
) (graph.Vertex, error) {
	g.Lock()
	defer g.Unlock()

	if id == nil {
		id = uuid.NewString()
	}
	if _, ok := g.vertices[id]; ok {
		return nil, errors.Wrapf(graph.ErrDuplicateID, "vertex %v", id)
	}

	v := &Vertex{id: id, label: label}
	for _, p := range props {
		v.properties = append(v.properties, newVertexProperty(p.ID, p.Key, p.Value, p.Properties))
	}
	g.vertices[id] = v
	g.vertexOrder = append(g.vertexOrder, id)
	g.remember(func() {
		delete(g.vertices, id)
		g.vertexOrder = g.vertexOrder[:len(g.vertexOrder)-1]
	})
	return v, nil
}

func (g *Graph) AddEdge(ctx context.Context, out, in graph.Vertex, label string, id any,
	props map[string]any,
) (graph.Edge, error) {
	g.Lock()
	defer g.Unlock()

	outV, err := g.own(out)
	if err != nil {
		return nil, errors.Wrap(err, "out vertex")
	}
	inV, err := g.own(in)
	if err != nil {
		return nil, errors.Wrap(err, "in vertex")
	}
	if id == nil {
		id = uuid.NewString()
	}
	if _, ok := g.edges[id]; ok {
		return nil, errors.Wrapf(graph.ErrDuplicateID, "edge %v", id)
	}

	e := &Edge{id: id, label: label, out: outV, in: inV, properties: map[string]any{}}
	for k, v := range props {
		e.properties[k] = v
	}
	g.edges[id] = e
	g.edgeOrder = append(g.edgeOrder, id)
	g.remember(func() {
		delete(g.edges, id)
		g.edgeOrder = g.edgeOrder[:len(g.edgeOrder)-1]
	})
	return e, nil
}

// Commit is a no-op for a non-transactional graph.
func (g *Graph) Commit(ctx context.Context) error {
	g.Lock()
	defer g.Unlock()

	if !g.transactional {
		return nil
	}
	g.logger.WithField("action", "memgraph_commit").
		WithField("mutations", len(g.undo)).
		Debug("commit")
	g.undo = nil
	g.commits++
	return nil
}

// Rollback discards every mutation since the last commit.
func (g *Graph) Rollback(ctx context.Context) error {
	g.Lock()
	defer g.Unlock()

	if !g.transactional {
		return errors.Wrap(graph.ErrUnsupported, "rollback")
	}
	for i := len(g.undo) - 1; i >= 0; i-- {
		g.undo[i]()
	}
	g.undo = nil
	return nil
}

func (g *Graph) Commits() int {
	g.Lock()
	defer g.Unlock()
	return g.commits
}

func (g *Graph) VertexCount() int {
	g.Lock()
	defer g.Unlock()
	return len(g.vertices)
}

func (g *Graph) EdgeCount() int {
	g.Lock()
	defer g.Unlock()
	return len(g.edges)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	g.Lock()
	defer g.Unlock()

	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

func (g *Graph) VertexByID(ctx context.Context, id any) (graph.Vertex, error) {
	g.Lock()
	defer g.Unlock()

	v, ok := g.vertices[id]
	if !ok {
		return nil, errors.Wrapf(graph.ErrNotFound, "vertex %v", id)
	}
	return v, nil
}

func (g *Graph) EdgeByID(ctx context.Context, id any) (graph.Edge, error) {
	g.Lock()
	defer g.Unlock()

	e, ok := g.edges[id]
	if !ok {
		return nil, errors.Wrapf(graph.ErrNotFound, "edge %v", id)
	}
	return e, nil
}

func (g *Graph) AddVertexProperty(ctx context.Context, v graph.Vertex, id any, key string,
	value any, meta map[string]any,
) (graph.VertexProperty, error) {
	g.Lock()
	defer g.Unlock()

	host, err := g.own(v)
	if err != nil {
		return nil, err
	}
	p := newVertexProperty(id, key, value, meta)
	host.properties = append(host.properties, p)
	g.remember(func() {
		host.properties = host.properties[:len(host.properties)-1]
	})
	return p, nil
}

// SetProperty sets an edge property or a meta-property. On a vertex it
// replaces every value stored under key.
func (g *Graph) SetProperty(ctx context.Context, el graph.Element, key string,
	value any,
) (graph.Property, error) {
	g.Lock()
	defer g.Unlock()

	switch t := el.(type) {
	case *Edge:
		prev, had := t.properties[key]
		t.properties[key] = value
		g.remember(func() {
			if had {
				t.properties[key] = prev
			} else {
				delete(t.properties, key)
			}
		})
	case *VertexProperty:
		if t.meta == nil {
			t.meta = map[string]any{}
		}
		prev, had := t.meta[key]
		t.meta[key] = value
		g.remember(func() {
			if had {
				t.meta[key] = prev
			} else {
				delete(t.meta, key)
			}
		})
	case *Vertex:
		host, err := g.own(t)
		if err != nil {
			return nil, err
		}
		prev := host.properties
		kept := make([]*VertexProperty, 0, len(prev)+1)
		for _, p := range prev {
			if p.key != key {
				kept = append(kept, p)
			}
		}
		host.properties = append(kept, newVertexProperty(nil, key, value, nil))
		g.remember(func() {
			host.properties = prev
		})
	default:
		return nil, errors.Errorf("element of type %T does not belong to this graph", el)
	}
	return &Property{key: key, value: value}, nil
}

func (g *Graph) VertexProperties(ctx context.Context, v graph.Vertex, key string) ([]graph.VertexProperty, error) {
	g.Lock()
	defer g.Unlock()

	host, err := g.own(v)
	if err != nil {
		return nil, err
	}
	var out []graph.VertexProperty
	for _, p := range host.properties {
		if p.key == key {
			out = append(out, p)
		}
	}
	return out, nil
}

// Property reads a single property. On a vertex the first value stored
// under key is returned.
func (g *Graph) Property(ctx context.Context, el graph.Element, key string) (graph.Property, error) {
	g.Lock()
	defer g.Unlock()

	var (
		value any
		ok    bool
	)
	switch t := el.(type) {
	case *Edge:
		value, ok = t.properties[key]
	case *VertexProperty:
		value, ok = t.meta[key]
	case *Vertex:
		for _, p := range t.properties {
			if p.key == key {
				value, ok = p.value, true
				break
			}
		}
	default:
		return nil, errors.Errorf("element of type %T does not belong to this graph", el)
	}
	if !ok {
		return nil, errors.Wrapf(graph.ErrNotFound, "property %s of %v", key, el.ID())
	}
	return &Property{key: key, value: value}, nil
}

// StarVertices exports the graph as star vertices in insertion order, each
// with both adjacency lists.
func (g *Graph) StarVertices(ctx context.Context) ([]*star.Vertex, error) {
	g.Lock()
	defer g.Unlock()

	outE := map[any][]star.Edge{}
	inE := map[any][]star.Edge{}
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		props := e.Properties()
		outE[e.out.id] = append(outE[e.out.id],
			star.Edge{ID: e.id, Label: e.label, Other: e.in.id, Properties: props})
		inE[e.in.id] = append(inE[e.in.id],
			star.Edge{ID: e.id, Label: e.label, Other: e.out.id, Properties: props})
	}

	out := make([]*star.Vertex, 0, len(g.vertexOrder))
	for _, id := range g.vertexOrder {
		v := g.vertices[id]
		props := make([]star.VertexProperty, 0, len(v.properties))
		for _, p := range v.properties {
			props = append(props, star.VertexProperty{
				ID: p.id, Key: p.key, Value: p.value, Properties: p.meta,
			})
		}
		out = append(out, star.NewVertex(v.id, v.label, props, outE[id], inE[id]))
	}
	return out, nil
}

// own maps a handle back to the vertex stored under its identity.
func (g *Graph) own(v graph.Vertex) (*Vertex, error) {
	if v == nil {
		return nil, errors.Wrap(graph.ErrNotFound, "nil vertex")
	}
	stored, ok := g.vertices[v.ID()]
	if !ok {
		return nil, errors.Wrapf(graph.ErrNotFound, "vertex %v", v.ID())
	}
	return stored, nil
}

func (g *Graph) remember(undo func()) {
	if g.transactional {
		g.undo = append(g.undo, undo)
	}
}

func newVertexProperty(id any, key string, value any, meta map[string]any) *VertexProperty {
	if id == nil {
		id = uuid.NewString()
	}
	var m map[string]any
	if len(meta) > 0 {
		m = make(map[string]any, len(meta))
		for k, v := range meta {
			m[k] = v
		}
	}
	return &VertexProperty{id: id, key: key, value: value, meta: m}
}
