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

// VertexIterator yields the vertices of a record stream one at a time. It
// holds at most one record and stops at the first error. The underlying
// reader stays owned by the caller, abandoning the iterator early is fine.
type VertexIterator struct {
	ctx          context.Context
	reader       *Reader
	records      RecordReader
	vertexAttach VertexAttachFunc
	edgeAttach   EdgeAttachFunc
	dir          star.Direction

	current *star.Vertex
	err     error
	done    bool
}

// ReadVertices returns an iterator over the vertex records of in. Each
// vertex is attached the same way ReadVertex does it.
func (r *Reader) ReadVertices(ctx context.Context, in io.Reader, vertexAttach VertexAttachFunc,
	edgeAttach EdgeAttachFunc, dir star.Direction,
) *VertexIterator {
	return &VertexIterator{
		ctx:          ctx,
		reader:       r,
		records:      r.codec.Records(in, r.maxRecordSize),
		vertexAttach: vertexAttach,
		edgeAttach:   edgeAttach,
		dir:          dir,
	}
}

// Next advances to the next vertex. It returns false at the end of the
// stream or on error, Err tells them apart.
func (it *VertexIterator) Next() bool {
	if it.done {
		return false
	}
	it.current = nil

	if err := it.ctx.Err(); err != nil {
		return it.stop(err)
	}
	raw, err := it.records.Next()
	if errors.Is(err, io.EOF) {
		return it.stop(nil)
	}
	if err != nil {
		return it.stop(&DecodeError{Err: err})
	}

	v, err := it.reader.vertexFromRecord(it.ctx, raw, it.vertexAttach, it.edgeAttach, it.dir)
	if err != nil {
		return it.stop(err)
	}
	it.current = v
	return true
}

func (it *VertexIterator) stop(err error) bool {
	it.done = true
	it.err = err
	return false
}

// Vertex returns the vertex produced by the last successful Next.
func (it *VertexIterator) Vertex() *star.Vertex {
	return it.current
}

func (it *VertexIterator) Err() error {
	return it.err
}
