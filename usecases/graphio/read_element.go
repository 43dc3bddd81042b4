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

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

// ReadVertex reads one vertex record from in. Only the adjacency selected by
// dir is materialized. vertexAttach runs first if set, then edgeAttach for
// every materialized edge.
//
// The single-record reads consume exactly one record when in is an
// io.ByteReader, so successive calls can share a stream. Wrap other readers
// in a bufio.Reader once and pass that to every call.
func (r *Reader) ReadVertex(ctx context.Context, in io.Reader, vertexAttach VertexAttachFunc,
	edgeAttach EdgeAttachFunc, dir star.Direction,
) (*star.Vertex, error) {
	raw, err := r.readRecord(in)
	if err != nil {
		return nil, err
	}
	return r.vertexFromRecord(ctx, raw, vertexAttach, edgeAttach, dir)
}

func (r *Reader) vertexFromRecord(ctx context.Context, raw []byte, vertexAttach VertexAttachFunc,
	edgeAttach EdgeAttachFunc, dir star.Direction,
) (*star.Vertex, error) {
	v, err := r.decodeVertex(raw, dir)
	if err != nil {
		return nil, err
	}

	if vertexAttach != nil {
		if _, err := vertexAttach(ctx, v); err != nil {
			return nil, err
		}
	}
	if edgeAttach == nil {
		return v, nil
	}
	for _, d := range []star.Direction{star.DirectionOut, star.DirectionIn} {
		if !dir.Includes(d) {
			continue
		}
		edges := v.OutEdges()
		if d == star.DirectionIn {
			edges = v.InEdges()
		}
		for _, e := range edges {
			if _, err := edgeAttach(ctx, v.Detach(e, d)); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

// ReadEdge reads one standalone edge record and attaches it.
func (r *Reader) ReadEdge(ctx context.Context, in io.Reader, attach EdgeAttachFunc) (graph.Edge, error) {
	if attach == nil {
		return nil, errors.New("read edge: attach func is nil")
	}
	tree, err := r.readTree(in)
	if err != nil {
		return nil, err
	}
	e, err := materializeEdge(tree)
	if err != nil {
		return nil, err
	}
	return attach(ctx, e)
}

// ReadVertexProperty reads one standalone vertex property record and
// attaches it.
func (r *Reader) ReadVertexProperty(ctx context.Context, in io.Reader,
	attach VertexPropertyAttachFunc,
) (graph.VertexProperty, error) {
	if attach == nil {
		return nil, errors.New("read vertex property: attach func is nil")
	}
	tree, err := r.readTree(in)
	if err != nil {
		return nil, err
	}
	p, err := materializeVertexProperty(tree)
	if err != nil {
		return nil, err
	}
	return attach(ctx, p)
}

// ReadProperty reads one standalone property record and attaches it.
func (r *Reader) ReadProperty(ctx context.Context, in io.Reader, attach PropertyAttachFunc) (graph.Property, error) {
	if attach == nil {
		return nil, errors.New("read property: attach func is nil")
	}
	tree, err := r.readTree(in)
	if err != nil {
		return nil, err
	}
	p, err := materializeProperty(tree)
	if err != nil {
		return nil, err
	}
	return attach(ctx, p)
}

// ReadObject decodes the next record of in into v without interpreting it as
// a graph element.
func (r *Reader) ReadObject(in io.Reader, v any) error {
	raw, err := r.readRecord(in)
	if err != nil {
		return err
	}
	if err := r.codec.Unmarshal(raw, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func (r *Reader) readRecord(in io.Reader) ([]byte, error) {
	raw, err := r.codec.Records(in, r.maxRecordSize).Next()
	if errors.Is(err, io.EOF) {
		return nil, &DecodeError{Err: io.ErrUnexpectedEOF}
	}
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return raw, nil
}

func (r *Reader) readTree(in io.Reader) (map[string]any, error) {
	raw, err := r.readRecord(in)
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}
