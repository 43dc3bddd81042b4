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

// Package boltgraph persists a graph in a bolt database. Mutations are
// grouped in one write transaction that stays open until Commit.
package boltgraph

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

const fileName = "graph.db"

var (
	configBucket      = []byte("config")
	vertexBucket      = []byte("vertices")
	edgeBucket        = []byte("edges")
	vertexIndexBucket = []byte("vertex_index")
	edgeIndexBucket   = []byte("edge_index")

	keyConfig = []byte("config")
	_Version  = 1
)

type config struct {
	Version int `msgpack:"version"`
}

type Vertex struct {
	key   uint64
	id    any
	label string
}

func (v *Vertex) ID() any {
	return v.id
}

func (v *Vertex) Label() string {
	return v.label
}

type Edge struct {
	key     uint64
	id      any
	label   string
	out, in *Vertex
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

type VertexProperty struct {
	id    any
	key   string
	value any
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

/*
Store keeps a graph in a single bolt file.

Layout:
  - vertices: sequence key -> vertex record (identity, label, properties)
  - edges: sequence key -> edge record (identity, label, endpoint keys, properties)
  - vertex_index, edge_index: encoded identity -> sequence key

Identities are unique per element kind.
*/
type Store struct {
	sync.Mutex
	homeDir string
	log     logrus.FieldLogger
	db      *bolt.DB
	// tx is the pending write transaction, opened by the first mutation
	// after a commit.
	tx      *bolt.Tx
	pending int
}

// NewStore returns a store rooted at homeDir. Call Open before use and Close
// to release the file.
func NewStore(homeDir string, logger logrus.FieldLogger) *Store {
	return &Store{
		homeDir: homeDir,
		log:     logger,
	}
}

func (s *Store) Open() (err error) {
	if err := os.MkdirAll(s.homeDir, 0o777); err != nil {
		return fmt.Errorf("create root directory %q: %w", s.homeDir, err)
	}
	filePath := path.Join(s.homeDir, fileName)
	db, err := bolt.Open(filePath, 0o600, nil)
	if err != nil {
		return fmt.Errorf("open %q: %w", filePath, err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	var cfg config
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{vertexBucket, edgeBucket, vertexIndexBucket, edgeIndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		b, err := tx.CreateBucketIfNotExists(configBucket)
		if err != nil {
			return fmt.Errorf("create bucket %q: %w", configBucket, err)
		}
		if data := b.Get(keyConfig); len(data) > 0 {
			return decodeValue(data, &cfg)
		}
		cfg = config{Version: _Version}
		data, err := encodeValue(cfg)
		if err != nil {
			return err
		}
		return b.Put(keyConfig, data)
	})
	if err != nil {
		return fmt.Errorf("init bolt_db: %w", err)
	}
	if cfg.Version > _Version {
		return fmt.Errorf("graph file version %d higher than %d", cfg.Version, _Version)
	}

	s.db = db
	s.log.WithField("action", "bolt_open").
		WithField("path", filePath).
		Info("graph store opened")
	return nil
}

// Close discards uncommitted mutations and closes the file.
func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()

	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

func (s *Store) SupportsTransactions() bool {
	return true
}

func (s *Store) Commit(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return errors.Wrap(err, "commit bolt transaction")
	}
	s.log.WithField("action", "bolt_commit").
		WithField("mutations", s.pending).
		Debug("batch committed")
	s.pending = 0
	return nil
}

// Rollback discards every mutation since the last commit.
func (s *Store) Rollback(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	s.pending = 0
	return errors.Wrap(err, "rollback bolt transaction")
}

func (s *Store) AddVertex(ctx context.Context, id any, label string,
	props []star.VertexProperty,
) (graph.Vertex, error) {
	s.Lock()
	defer s.Unlock()

	rec := vertexRecord{ID: id, Label: label}
	for _, p := range props {
		rec.Properties = append(rec.Properties, propertyRecord{
			ID: p.ID, Key: p.Key, Value: p.Value, Meta: p.Properties,
		})
	}

	var v *Vertex
	err := s.update(func(tx *bolt.Tx) error {
		key, stored, err := insert(tx, vertexBucket, vertexIndexBucket, rec)
		if err != nil {
			return errors.Wrapf(err, "vertex %v", id)
		}
		v = &Vertex{key: key, id: stored, label: label}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) AddEdge(ctx context.Context, out, in graph.Vertex, label string, id any,
	props map[string]any,
) (graph.Edge, error) {
	s.Lock()
	defer s.Unlock()

	outV, ok := out.(*Vertex)
	if !ok {
		return nil, errors.Errorf("out vertex of type %T does not belong to this store", out)
	}
	inV, ok := in.(*Vertex)
	if !ok {
		return nil, errors.Errorf("in vertex of type %T does not belong to this store", in)
	}

	var e *Edge
	err := s.update(func(tx *bolt.Tx) error {
		vertices := tx.Bucket(vertexBucket)
		for _, v := range []*Vertex{outV, inV} {
			if vertices.Get(seqKey(v.key)) == nil {
				return errors.Wrapf(graph.ErrNotFound, "vertex %v", v.id)
			}
		}
		rec := edgeRecord{ID: id, Label: label, Out: outV.key, In: inV.key, Properties: props}
		key, stored, err := insert(tx, edgeBucket, edgeIndexBucket, rec)
		if err != nil {
			return errors.Wrapf(err, "edge %v", id)
		}
		e = &Edge{key: key, id: stored, label: label, out: outV, in: inV}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) VertexByID(ctx context.Context, id any) (graph.Vertex, error) {
	s.Lock()
	defer s.Unlock()

	var v *Vertex
	err := s.view(func(tx *bolt.Tx) error {
		key, err := lookup(tx, vertexIndexBucket, id)
		if err != nil {
			return errors.Wrapf(err, "vertex %v", id)
		}
		v, err = readVertex(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) EdgeByID(ctx context.Context, id any) (graph.Edge, error) {
	s.Lock()
	defer s.Unlock()

	var e *Edge
	err := s.view(func(tx *bolt.Tx) error {
		key, err := lookup(tx, edgeIndexBucket, id)
		if err != nil {
			return errors.Wrapf(err, "edge %v", id)
		}
		rec, err := readEdgeRecord(tx, key)
		if err != nil {
			return err
		}
		out, err := readVertex(tx, rec.Out)
		if err != nil {
			return err
		}
		in, err := readVertex(tx, rec.In)
		if err != nil {
			return err
		}
		e = &Edge{key: key, id: rec.ID, label: rec.Label, out: out, in: in}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) VertexProperties(ctx context.Context, v graph.Vertex, key string) ([]graph.VertexProperty, error) {
	s.Lock()
	defer s.Unlock()

	host, ok := v.(*Vertex)
	if !ok {
		return nil, errors.Errorf("vertex of type %T does not belong to this store", v)
	}
	var out []graph.VertexProperty
	err := s.view(func(tx *bolt.Tx) error {
		rec, err := readVertexRecord(tx, host.key)
		if err != nil {
			return err
		}
		for _, p := range rec.Properties {
			if p.Key == key {
				out = append(out, &VertexProperty{id: p.ID, key: p.Key, value: p.Value})
			}
		}
		return nil
	})
	return out, err
}

// Property reads an edge property, or the first value of a vertex property.
func (s *Store) Property(ctx context.Context, el graph.Element, key string) (graph.Property, error) {
	s.Lock()
	defer s.Unlock()

	var p *Property
	err := s.view(func(tx *bolt.Tx) error {
		switch t := el.(type) {
		case *Vertex:
			rec, err := readVertexRecord(tx, t.key)
			if err != nil {
				return err
			}
			for _, vp := range rec.Properties {
				if vp.Key == key {
					p = &Property{key: key, value: vp.Value}
					return nil
				}
			}
		case *Edge:
			rec, err := readEdgeRecord(tx, t.key)
			if err != nil {
				return err
			}
			if value, ok := rec.Properties[key]; ok {
				p = &Property{key: key, value: value}
				return nil
			}
		default:
			return errors.Errorf("element of type %T does not belong to this store", el)
		}
		return errors.Wrapf(graph.ErrNotFound, "property %s of %v", key, el.ID())
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Counts returns the number of stored vertices and edges, pending mutations
// included.
func (s *Store) Counts() (vertices, edges int, err error) {
	s.Lock()
	defer s.Unlock()

	err = s.view(func(tx *bolt.Tx) error {
		vertices = count(tx.Bucket(vertexBucket))
		edges = count(tx.Bucket(edgeBucket))
		return nil
	})
	return vertices, edges, err
}

// count walks the bucket, Stats ignores pages not yet written.
func count(b *bolt.Bucket) int {
	n := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}

// StarVertices exports the store in insertion order with both adjacency
// lists.
func (s *Store) StarVertices(ctx context.Context) ([]*star.Vertex, error) {
	s.Lock()
	defer s.Unlock()

	var out []*star.Vertex
	err := s.view(func(tx *bolt.Tx) error {
		ids := map[uint64]any{}
		var records []vertexRecord
		var keys []uint64
		err := tx.Bucket(vertexBucket).ForEach(func(k, data []byte) error {
			rec, err := decodeVertexRecord(data)
			if err != nil {
				return err
			}
			key := binary.BigEndian.Uint64(k)
			ids[key] = rec.ID
			records = append(records, rec)
			keys = append(keys, key)
			return nil
		})
		if err != nil {
			return err
		}

		outE := map[uint64][]star.Edge{}
		inE := map[uint64][]star.Edge{}
		err = tx.Bucket(edgeBucket).ForEach(func(_, data []byte) error {
			rec, err := decodeEdgeRecord(data)
			if err != nil {
				return err
			}
			outE[rec.Out] = append(outE[rec.Out], star.Edge{
				ID: rec.ID, Label: rec.Label, Other: ids[rec.In], Properties: rec.Properties,
			})
			inE[rec.In] = append(inE[rec.In], star.Edge{
				ID: rec.ID, Label: rec.Label, Other: ids[rec.Out], Properties: rec.Properties,
			})
			return nil
		})
		if err != nil {
			return err
		}

		for i, rec := range records {
			props := make([]star.VertexProperty, 0, len(rec.Properties))
			for _, p := range rec.Properties {
				props = append(props, star.VertexProperty{ID: p.ID, Key: p.Key, Value: p.Value, Properties: p.Meta})
			}
			out = append(out, star.NewVertex(rec.ID, rec.Label, props, outE[keys[i]], inE[keys[i]]))
		}
		return nil
	})
	return out, err
}

// update runs fn inside the pending write transaction, opening one if
// needed.
func (s *Store) update(fn func(tx *bolt.Tx) error) error {
	if s.tx == nil {
		tx, err := s.db.Begin(true)
		if err != nil {
			return errors.Wrap(err, "begin bolt transaction")
		}
		s.tx = tx
	}
	if err := fn(s.tx); err != nil {
		return err
	}
	s.pending++
	return nil
}

// view reads through the pending write transaction so uncommitted mutations
// are visible.
func (s *Store) view(fn func(tx *bolt.Tx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.db.View(fn)
}
