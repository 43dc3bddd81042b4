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

package main

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/weaviate/graphio/adapters/codec/graphson"
	"github.com/weaviate/graphio/adapters/codec/msgpack"
	"github.com/weaviate/graphio/adapters/connectors/gremlin"
	neo4jstore "github.com/weaviate/graphio/adapters/connectors/neo4j"
	"github.com/weaviate/graphio/adapters/repos/boltgraph"
	"github.com/weaviate/graphio/adapters/repos/memgraph"
	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
	"github.com/weaviate/graphio/usecases/config"
	"github.com/weaviate/graphio/usecases/graphio"
	"github.com/weaviate/graphio/usecases/monitoring"
)

// target is an opened store. source is nil for stores that cannot be
// exported.
type target struct {
	graph  graph.Graph
	source graphio.StarSource
	close  func(ctx context.Context) error
}

type app struct {
	config   config.Config
	logger   logrus.FieldLogger
	registry *prometheus.Registry
	metrics  *graphio.Metrics
}

func newApp(cfg config.Config, logger logrus.FieldLogger) *app {
	a := &app{config: cfg, logger: logger}
	if cfg.Monitoring.Enabled {
		a.registry = monitoring.NewRegistry()
		a.metrics = graphio.NewMetrics(a.registry)
	}
	return a
}

func newCodec(name string) (graphio.Codec, error) {
	switch name {
	case graphson.Name:
		return graphson.New(), nil
	case msgpack.Name:
		return msgpack.New(), nil
	default:
		return nil, errors.Errorf("unsupported codec %q", name)
	}
}

func (a *app) openTarget(ctx context.Context) (*target, error) {
	store := a.config.Store

	switch store.Type {
	case config.StoreMemory:
		opts := []memgraph.Option{memgraph.WithLogger(a.logger)}
		if store.Memory.Transactions {
			opts = append(opts, memgraph.WithTransactions())
		}
		g := memgraph.New(opts...)
		return &target{graph: g, source: g, close: func(context.Context) error {
			a.logger.WithField("action", "memory_close").
				WithField("vertices", g.VertexCount()).
				WithField("edges", g.EdgeCount()).
				Info("discarding in-memory graph")
			return nil
		}}, nil

	case config.StoreBolt:
		s := boltgraph.NewStore(store.Bolt.Path, a.logger)
		if err := s.Open(); err != nil {
			return nil, errors.Wrap(err, "open bolt store")
		}
		return &target{graph: s, source: s, close: func(context.Context) error {
			return s.Close()
		}}, nil

	case config.StoreNeo4j:
		s := neo4jstore.NewStore(neo4jstore.Config{
			URI:            store.Neo4j.URI,
			Username:       store.Neo4j.Username,
			Password:       store.Neo4j.Password,
			Database:       store.Neo4j.Database,
			SourceIDKey:    store.SourceIDKey,
			MaxConnectWait: store.Neo4j.ConnectTimeout,
		}, a.logger)
		if err := s.Connect(ctx); err != nil {
			return nil, errors.Wrap(err, "connect to neo4j")
		}
		return &target{graph: s, close: s.Close}, nil

	case config.StoreGremlin:
		client := gremlin.NewClient(store.Gremlin.URL, store.Gremlin.Timeout, a.logger)
		client.SetRateLimit(store.Gremlin.RateLimit)
		if err := client.Ping(ctx, store.Gremlin.ConnectTimeout); err != nil {
			return nil, errors.Wrap(err, "reach gremlin server")
		}
		s := gremlin.NewStore(client, store.SourceIDKey, a.logger)
		return &target{graph: s, close: func(ctx context.Context) error {
			vertices, edges, err := s.Counts(ctx)
			if err != nil {
				return errors.Wrap(err, "count gremlin graph")
			}
			a.logger.WithField("action", "gremlin_close").
				WithField("vertices", vertices).
				WithField("edges", edges).
				Info("gremlin graph size")
			return nil
		}}, nil

	default:
		return nil, errors.Errorf("unsupported store type %q", store.Type)
	}
}

// run opens the target store and runs job against it. The metrics server,
// when enabled, runs alongside and stops once job returns.
func (a *app) run(ctx context.Context, job func(ctx context.Context, t *target) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	jobCtx, jobDone := context.WithCancel(ctx)

	if a.registry != nil {
		server := monitoring.NewServer(a.registry, a.logger)
		eg.Go(func() error {
			return server.ListenAndServe(jobCtx, a.config.Monitoring.Port)
		})
	}

	eg.Go(func() error {
		defer jobDone()

		t, err := a.openTarget(jobCtx)
		if err != nil {
			return err
		}
		var result *multierror.Error
		if err := job(jobCtx, t); err != nil {
			result = multierror.Append(result, err)
		}
		if err := t.close(context.Background()); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close store"))
		}
		return result.ErrorOrNil()
	})

	return eg.Wait()
}

func (a *app) load(ctx context.Context, input string, t *target) error {
	codec, err := newCodec(a.config.Codec)
	if err != nil {
		return err
	}

	in, err := openInput(input)
	if err != nil {
		return err
	}
	defer in.Close()

	reader := graphio.New(codec,
		graphio.WithBatchSize(a.config.BatchSize),
		graphio.WithMaxRecordSize(a.config.MaxRecordSize),
		graphio.WithLogger(a.logger),
		graphio.WithMetrics(a.metrics),
	)
	return reader.ReadGraph(ctx, bufio.NewReader(in), t.graph)
}

func (a *app) export(ctx context.Context, output string, t *target) error {
	if t.source == nil {
		return errors.Errorf("store %q does not support export", a.config.Store.Type)
	}

	codec, err := newCodec(a.config.Codec)
	if err != nil {
		return err
	}
	dir, err := star.ParseDirection(a.config.Direction)
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	if err := graphio.NewWriter(codec).WriteGraphDirection(ctx, w, t.source, dir); err != nil {
		out.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return errors.Wrap(err, "flush output")
	}
	return out.Close()
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create output")
	}
	return f, nil
}
