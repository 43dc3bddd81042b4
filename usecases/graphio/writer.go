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
	"io"

	"github.com/pkg/errors"

	"github.com/weaviate/graphio/entities/star"
)

// StarSource exposes the content of a store as star vertices.
type StarSource interface {
	StarVertices(ctx context.Context) ([]*star.Vertex, error)
}

// Writer serializes elements into the record shapes Reader consumes.
type Writer struct {
	codec Codec
}

func NewWriter(codec Codec) *Writer {
	return &Writer{codec: codec}
}

// WriteVertex writes one vertex record with the adjacency selected by dir.
func (w *Writer) WriteVertex(out io.Writer, v *star.Vertex, dir star.Direction) error {
	tree := map[string]any{
		star.TokenID:    v.ID(),
		star.TokenLabel: v.Label(),
	}

	if props := v.Properties(); len(props) > 0 {
		byKey := map[string]any{}
		for _, p := range props {
			list, _ := byKey[p.Key].([]any)
			byKey[p.Key] = append(list, vertexPropertyTree(p))
		}
		tree[star.TokenProperties] = byKey
	}
	if dir.Includes(star.DirectionOut) {
		if adj := adjacencyTree(v.OutEdges(), star.TokenInV); adj != nil {
			tree[star.TokenOutE] = adj
		}
	}
	if dir.Includes(star.DirectionIn) {
		if adj := adjacencyTree(v.InEdges(), star.TokenOutV); adj != nil {
			tree[star.TokenInE] = adj
		}
	}

	return errors.Wrapf(w.codec.Encode(out, tree), "write vertex %v", v.ID())
}

// WriteGraph writes every vertex of src with its outgoing adjacency, the
// shape ReadGraph needs.
func (w *Writer) WriteGraph(ctx context.Context, out io.Writer, src StarSource) error {
	return w.WriteGraphDirection(ctx, out, src, star.DirectionOut)
}

// WriteGraphDirection writes every vertex of src with the adjacency selected
// by dir.
func (w *Writer) WriteGraphDirection(ctx context.Context, out io.Writer, src StarSource,
	dir star.Direction,
) error {
	vertices, err := src.StarVertices(ctx)
	if err != nil {
		return errors.Wrap(err, "list vertices")
	}
	for _, v := range vertices {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.WriteVertex(out, v, dir); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteEdge(out io.Writer, e *star.DetachedEdge) error {
	tree := map[string]any{
		star.TokenID:       e.ID,
		star.TokenLabel:    e.Label,
		star.TokenOut:      e.Out.ID,
		star.TokenOutLabel: e.Out.Label,
		star.TokenIn:       e.In.ID,
		star.TokenInLabel:  e.In.Label,
	}
	if len(e.Properties) > 0 {
		tree[star.TokenProperties] = e.Properties
	}
	return errors.Wrapf(w.codec.Encode(out, tree), "write edge %v", e.ID)
}

func (w *Writer) WriteVertexProperty(out io.Writer, p *star.DetachedVertexProperty) error {
	tree := map[string]any{
		star.TokenID:    p.ID,
		star.TokenLabel: p.Key,
		star.TokenValue: p.Value,
	}
	if len(p.Properties) > 0 {
		tree[star.TokenProperties] = p.Properties
	}
	return errors.Wrapf(w.codec.Encode(out, tree), "write vertex property %s", p.Key)
}

func (w *Writer) WriteProperty(out io.Writer, p *star.DetachedProperty) error {
	tree := map[string]any{
		star.TokenKey:   p.Key,
		star.TokenValue: p.Value,
	}
	return errors.Wrapf(w.codec.Encode(out, tree), "write property %s", p.Key)
}

func vertexPropertyTree(p star.VertexProperty) any {
	if p.ID == nil && len(p.Properties) == 0 {
		if _, isMap := p.Value.(map[string]any); !isMap {
			return p.Value
		}
	}
	obj := map[string]any{star.TokenValue: p.Value}
	if p.ID != nil {
		obj[star.TokenID] = p.ID
	}
	if len(p.Properties) > 0 {
		obj[star.TokenProperties] = p.Properties
	}
	return obj
}

func adjacencyTree(edges []star.Edge, otherField string) map[string]any {
	if len(edges) == 0 {
		return nil
	}
	adj := map[string]any{}
	for _, e := range edges {
		entry := map[string]any{otherField: e.Other}
		if e.ID != nil {
			entry[star.TokenID] = e.ID
		}
		if len(e.Properties) > 0 {
			entry[star.TokenProperties] = e.Properties
		}
		list, _ := adj[e.Label].([]any)
		adj[e.Label] = append(list, entry)
	}
	return adj
}
