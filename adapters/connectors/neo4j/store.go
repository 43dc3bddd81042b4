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

// Package neo4j loads graphs into Neo4j over bolt. Mutations of one batch
// run in an explicit transaction committed by Commit.
package neo4j

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

type Config struct {
	URI         string
	Username    string
	Password    string
	Database    string
	SourceIDKey string
	// MaxConnectWait bounds the connection retries of Connect.
	MaxConnectWait time.Duration
}

type Vertex struct {
	elementID string
	id        any
	label     string
}

func (v *Vertex) ID() any {
	return v.id
}

func (v *Vertex) Label() string {
	return v.label
}

func (v *Vertex) ElementID() string {
	return v.elementID
}

type Edge struct {
	elementID string
	id        any
	label     string
	out, in   *Vertex
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

type Store struct {
	sync.Mutex
	config  Config
	logger  logrus.FieldLogger
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
	pending int
}

func NewStore(config Config, logger logrus.FieldLogger) *Store {
	if config.SourceIDKey == "" {
		config.SourceIDKey = DefaultSourceIDKey
	}
	return &Store{config: config, logger: logger}
}

// Connect creates the driver and waits for the server to accept
// connections.
func (s *Store) Connect(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = s.config.MaxConnectWait

	auth := neo4j.BasicAuth(s.config.Username, s.config.Password, "")
	err := backoff.Retry(func() error {
		driver, err := neo4j.NewDriverWithContext(s.config.URI, auth)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			driver.Close(ctx)
			s.logger.WithField("action", "neo4j_connect").
				WithError(err).
				Warn("neo4j not reachable yet")
			return err
		}
		s.driver = driver
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return errors.Wrapf(err, "connect to %s", s.config.URI)
	}

	s.session = s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.config.Database,
	})
	s.logger.WithField("action", "neo4j_connect").
		WithField("uri", s.config.URI).
		Info("connected to neo4j")
	return nil
}

// Close rolls back uncommitted mutations and releases the driver.
func (s *Store) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	var result *multierror.Error
	if s.tx != nil {
		if err := s.tx.Rollback(ctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "roll back pending transaction"))
		}
		s.tx = nil
	}
	if s.session != nil {
		if err := s.session.Close(ctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close session"))
		}
		s.session = nil
	}
	if s.driver != nil {
		if err := s.driver.Close(ctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close driver"))
		}
		s.driver = nil
	}
	return result.ErrorOrNil()
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
	err := s.tx.Commit(ctx)
	s.tx.Close(ctx)
	s.tx = nil
	if err != nil {
		return errors.Wrap(err, "commit neo4j transaction")
	}
	s.logger.WithField("action", "neo4j_commit").
		WithField("mutations", s.pending).
		Debug("batch committed")
	s.pending = 0
	return nil
}

func (s *Store) Rollback(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback(ctx)
	s.tx.Close(ctx)
	s.tx = nil
	s.pending = 0
	return errors.Wrap(err, "rollback neo4j transaction")
}

func (s *Store) AddVertex(ctx context.Context, id any, label string,
	props []star.VertexProperty,
) (graph.Vertex, error) {
	s.Lock()
	defer s.Unlock()

	params, err := vertexParams(s.config.SourceIDKey, id, props)
	if err != nil {
		return nil, errors.Wrapf(err, "vertex %v", id)
	}
	rec, err := s.write(ctx, createVertexCypher(label), map[string]any{"props": params})
	if err != nil {
		return nil, errors.Wrapf(err, "create vertex %v", id)
	}
	elementID, err := stringField(rec, "id")
	if err != nil {
		return nil, err
	}
	return &Vertex{elementID: elementID, id: id, label: label}, nil
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

	params, err := edgeParams(s.config.SourceIDKey, id, props)
	if err != nil {
		return nil, errors.Wrapf(err, "edge %v", id)
	}
	rec, err := s.write(ctx, createEdgeCypher(label), map[string]any{
		"out":   outV.elementID,
		"in":    inV.elementID,
		"props": params,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create edge %v", id)
	}
	elementID, err := stringField(rec, "id")
	if err != nil {
		return nil, err
	}
	return &Edge{elementID: elementID, id: id, label: label, out: outV, in: inV}, nil
}

func (s *Store) VertexByID(ctx context.Context, id any) (graph.Vertex, error) {
	s.Lock()
	defer s.Unlock()

	rec, err := s.read(ctx, vertexByIDCypher(s.config.SourceIDKey), map[string]any{"id": id})
	if err != nil {
		return nil, errors.Wrapf(err, "vertex %v", id)
	}
	elementID, err := stringField(rec, "id")
	if err != nil {
		return nil, err
	}
	label, _ := stringField(rec, "label")
	return &Vertex{elementID: elementID, id: id, label: label}, nil
}

func (s *Store) EdgeByID(ctx context.Context, id any) (graph.Edge, error) {
	s.Lock()
	defer s.Unlock()

	rec, err := s.read(ctx, edgeByIDCypher(s.config.SourceIDKey), map[string]any{"id": id})
	if err != nil {
		return nil, errors.Wrapf(err, "edge %v", id)
	}
	m := rec.AsMap()
	e := &Edge{id: id}
	e.elementID, _ = m["id"].(string)
	e.label, _ = m["label"].(string)
	e.out = &Vertex{id: m["outSource"]}
	e.out.elementID, _ = m["out"].(string)
	e.out.label, _ = m["outLabel"].(string)
	e.in = &Vertex{id: m["inSource"]}
	e.in.elementID, _ = m["in"].(string)
	e.in.label, _ = m["inLabel"].(string)
	return e, nil
}

// write runs a statement inside the pending transaction, opening it if
// needed.
func (s *Store) write(ctx context.Context, cypher string, params map[string]any) (*neo4j.Record, error) {
	if s.session == nil {
		return nil, errors.New("not connected")
	}
	if s.tx == nil {
		tx, err := s.session.BeginTransaction(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "begin neo4j transaction")
		}
		s.tx = tx
	}
	res, err := s.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	rec, err := res.Single(ctx)
	if err != nil {
		return nil, err
	}
	s.pending++
	return rec, nil
}

// read sees the pending transaction when there is one.
func (s *Store) read(ctx context.Context, cypher string, params map[string]any) (*neo4j.Record, error) {
	if s.session == nil {
		return nil, errors.New("not connected")
	}
	var records []*neo4j.Record
	if s.tx != nil {
		res, err := s.tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if records, err = res.Collect(ctx); err != nil {
			return nil, err
		}
	} else {
		out, err := s.session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			return res.Collect(ctx)
		})
		if err != nil {
			return nil, err
		}
		records = out.([]*neo4j.Record)
	}
	if len(records) == 0 {
		return nil, graph.ErrNotFound
	}
	return records[0], nil
}

func stringField(rec *neo4j.Record, key string) (string, error) {
	v, ok := rec.Get(key)
	if !ok {
		return "", errors.Errorf("result has no field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("field %q is a %T, not a string", key, v)
	}
	return s, nil
}
