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

package boltgraph

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

type propertyRecord struct {
	ID    any            `msgpack:"id"`
	Key   string         `msgpack:"key"`
	Value any            `msgpack:"value"`
	Meta  map[string]any `msgpack:"meta,omitempty"`
}

type vertexRecord struct {
	ID         any              `msgpack:"id"`
	Label      string           `msgpack:"label"`
	Properties []propertyRecord `msgpack:"properties,omitempty"`
}

type record interface {
	identity() any
	withIdentity(id any) record
}

func (r vertexRecord) identity() any { return r.ID }

func (r vertexRecord) withIdentity(id any) record {
	r.ID = id
	return r
}

type edgeRecord struct {
	ID         any            `msgpack:"id"`
	Label      string         `msgpack:"label"`
	Out        uint64         `msgpack:"out"`
	In         uint64         `msgpack:"in"`
	Properties map[string]any `msgpack:"properties,omitempty"`
}

func (r edgeRecord) identity() any { return r.ID }

func (r edgeRecord) withIdentity(id any) record {
	r.ID = id
	return r
}

func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encode value")
	}
	return buf.Bytes(), nil
}

// decodeValue decodes with every number widened, identities then compare
// equal to the ones the loader produced.
func decodeValue(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode value")
	}
	return nil
}

// indexKey encodes a normalized identity. Identities of different types
// never share a key.
func indexKey(id any) ([]byte, error) {
	normalized, err := star.NormalizeID(id)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(normalized)
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// insert stores rec under the next sequence of bucket and indexes it by id.
// An element without identity is identified by its sequence number.
func insert(tx *bolt.Tx, bucket, index []byte, rec record) (uint64, any, error) {
	b := tx.Bucket(bucket)
	seq, err := b.NextSequence()
	if err != nil {
		return 0, nil, err
	}
	id := rec.identity()
	if id == nil {
		id = int64(seq)
		rec = rec.withIdentity(id)
	}

	ik, err := indexKey(id)
	if err != nil {
		return 0, nil, err
	}
	idx := tx.Bucket(index)
	if idx.Get(ik) != nil {
		return 0, nil, graph.ErrDuplicateID
	}
	data, err := encodeValue(rec)
	if err != nil {
		return 0, nil, err
	}
	if err := b.Put(seqKey(seq), data); err != nil {
		return 0, nil, err
	}
	return seq, id, idx.Put(ik, seqKey(seq))
}

func lookup(tx *bolt.Tx, index []byte, id any) (uint64, error) {
	ik, err := indexKey(id)
	if err != nil {
		return 0, err
	}
	key := tx.Bucket(index).Get(ik)
	if key == nil {
		return 0, graph.ErrNotFound
	}
	return binary.BigEndian.Uint64(key), nil
}

func readVertexRecord(tx *bolt.Tx, key uint64) (vertexRecord, error) {
	data := tx.Bucket(vertexBucket).Get(seqKey(key))
	if data == nil {
		return vertexRecord{}, errors.Wrapf(graph.ErrNotFound, "vertex key %d", key)
	}
	return decodeVertexRecord(data)
}

func decodeVertexRecord(data []byte) (vertexRecord, error) {
	var rec vertexRecord
	if err := decodeValue(data, &rec); err != nil {
		return rec, err
	}
	rec.ID = normalized(rec.ID)
	for i := range rec.Properties {
		rec.Properties[i].ID = normalized(rec.Properties[i].ID)
		rec.Properties[i].Value = star.NormalizeValue(rec.Properties[i].Value)
		if rec.Properties[i].Meta != nil {
			rec.Properties[i].Meta = star.NormalizeValue(rec.Properties[i].Meta).(map[string]any)
		}
	}
	return rec, nil
}

func readVertex(tx *bolt.Tx, key uint64) (*Vertex, error) {
	rec, err := readVertexRecord(tx, key)
	if err != nil {
		return nil, err
	}
	return &Vertex{key: key, id: rec.ID, label: rec.Label}, nil
}

func readEdgeRecord(tx *bolt.Tx, key uint64) (edgeRecord, error) {
	data := tx.Bucket(edgeBucket).Get(seqKey(key))
	if data == nil {
		return edgeRecord{}, errors.Wrapf(graph.ErrNotFound, "edge key %d", key)
	}
	return decodeEdgeRecord(data)
}

func decodeEdgeRecord(data []byte) (edgeRecord, error) {
	var rec edgeRecord
	if err := decodeValue(data, &rec); err != nil {
		return rec, err
	}
	rec.ID = normalized(rec.ID)
	if rec.Properties != nil {
		rec.Properties = star.NormalizeValue(rec.Properties).(map[string]any)
	}
	return rec, nil
}

func normalized(id any) any {
	if id == nil {
		return nil
	}
	n, err := star.NormalizeID(id)
	if err != nil {
		return id
	}
	return n
}
