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
	"reflect"

	"github.com/pkg/errors"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

// VertexAttachFunc turns a star vertex into a live vertex of a store, either
// by creating it or by resolving an existing one.
type VertexAttachFunc func(ctx context.Context, v *star.Vertex) (graph.Vertex, error)

// EdgeAttachFunc turns a detached edge into a live edge.
type EdgeAttachFunc func(ctx context.Context, e *star.DetachedEdge) (graph.Edge, error)

// VertexPropertyAttachFunc turns a detached vertex property into a live one.
type VertexPropertyAttachFunc func(ctx context.Context,
	p *star.DetachedVertexProperty) (graph.VertexProperty, error)

// PropertyAttachFunc turns a detached property into a live one.
type PropertyAttachFunc func(ctx context.Context, p *star.DetachedProperty) (graph.Property, error)

// VertexLookup resolves an endpoint identity to a live vertex.
type VertexLookup func(ctx context.Context, id any) (graph.Vertex, error)

// CreateVertex creates the vertex in g, properties included.
func CreateVertex(g graph.Graph) VertexAttachFunc {
	return func(ctx context.Context, v *star.Vertex) (graph.Vertex, error) {
		live, err := g.AddVertex(ctx, v.ID(), v.Label(), v.Properties())
		if err != nil {
			return nil, errors.Wrapf(err, "create vertex %v", v.ID())
		}
		return live, nil
	}
}

// ResolveVertex finds the live vertex carrying the identity of the star
// vertex.
func ResolveVertex(r graph.Resolver) VertexAttachFunc {
	return func(ctx context.Context, v *star.Vertex) (graph.Vertex, error) {
		live, err := r.VertexByID(ctx, v.ID())
		if err != nil {
			return nil, errors.Wrapf(err, "resolve vertex %v", v.ID())
		}
		return live, nil
	}
}

// ResolverLookup resolves edge endpoints against the store.
func ResolverLookup(r graph.Resolver) VertexLookup {
	return r.VertexByID
}

// CreateEdge creates the edge in g between the endpoints found by lookup.
func CreateEdge(g graph.Graph, lookup VertexLookup) EdgeAttachFunc {
	return func(ctx context.Context, e *star.DetachedEdge) (graph.Edge, error) {
		out, err := lookup(ctx, e.Out.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "edge %v: out vertex %v", e.ID, e.Out.ID)
		}
		in, err := lookup(ctx, e.In.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "edge %v: in vertex %v", e.ID, e.In.ID)
		}
		live, err := g.AddEdge(ctx, out, in, e.Label, e.ID, e.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "create edge %v", e)
		}
		return live, nil
	}
}

// ResolveEdge finds the live edge carrying the identity of the snapshot.
func ResolveEdge(r graph.Resolver) EdgeAttachFunc {
	return func(ctx context.Context, e *star.DetachedEdge) (graph.Edge, error) {
		live, err := r.EdgeByID(ctx, e.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve edge %v", e.ID)
		}
		return live, nil
	}
}

// CreateVertexProperty adds the property to host. g must implement
// graph.PropertyWriter.
func CreateVertexProperty(g graph.Graph, host graph.Vertex) VertexPropertyAttachFunc {
	return func(ctx context.Context, p *star.DetachedVertexProperty) (graph.VertexProperty, error) {
		w, ok := g.(graph.PropertyWriter)
		if !ok {
			return nil, errors.Wrap(graph.ErrUnsupported, "add vertex property")
		}
		live, err := w.AddVertexProperty(ctx, host, p.ID, p.Key, p.Value, p.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "add vertex property %s to %v", p.Key, host.ID())
		}
		return live, nil
	}
}

// ResolveVertexProperty finds the property of host matching the snapshot, by
// identity when it has one, by value otherwise. g must implement
// graph.PropertyReader.
func ResolveVertexProperty(g graph.Graph, host graph.Vertex) VertexPropertyAttachFunc {
	return func(ctx context.Context, p *star.DetachedVertexProperty) (graph.VertexProperty, error) {
		r, ok := g.(graph.PropertyReader)
		if !ok {
			return nil, errors.Wrap(graph.ErrUnsupported, "read vertex properties")
		}
		candidates, err := r.VertexProperties(ctx, host, p.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve vertex property %s of %v", p.Key, host.ID())
		}
		for _, c := range candidates {
			if p.ID != nil && c.ID() == p.ID {
				return c, nil
			}
		}
		for _, c := range candidates {
			if reflect.DeepEqual(c.Value(), p.Value) {
				return c, nil
			}
		}
		return nil, errors.Wrapf(graph.ErrNotFound, "vertex property %s of %v", p.Key, host.ID())
	}
}

// CreateProperty sets the property on host. g must implement
// graph.PropertyWriter.
func CreateProperty(g graph.Graph, host graph.Element) PropertyAttachFunc {
	return func(ctx context.Context, p *star.DetachedProperty) (graph.Property, error) {
		w, ok := g.(graph.PropertyWriter)
		if !ok {
			return nil, errors.Wrap(graph.ErrUnsupported, "set property")
		}
		live, err := w.SetProperty(ctx, host, p.Key, p.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "set property %s on %v", p.Key, host.ID())
		}
		return live, nil
	}
}

// ResolveProperty reads the property of host with the snapshot's key. g must
// implement graph.PropertyReader.
func ResolveProperty(g graph.Graph, host graph.Element) PropertyAttachFunc {
	return func(ctx context.Context, p *star.DetachedProperty) (graph.Property, error) {
		r, ok := g.(graph.PropertyReader)
		if !ok {
			return nil, errors.Wrap(graph.ErrUnsupported, "read property")
		}
		live, err := r.Property(ctx, host, p.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve property %s of %v", p.Key, host.ID())
		}
		return live, nil
	}
}
