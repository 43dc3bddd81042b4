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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphio/entities/graph"
	"github.com/weaviate/graphio/entities/star"
)

// ReadGraph bulk loads every star record of in into g. Vertices are created
// while streaming, edges are wired once all vertices exist, so records may
// reference vertices that appear later in the stream.
//
// If g supports transactions, a commit is issued every batch size mutations
// and once more at the end. A failed load leaves earlier commits in place.
func (r *Reader) ReadGraph(ctx context.Context, in io.Reader, g graph.Graph) error {
	start := time.Now()
	logger := r.logger.WithFields(logrus.Fields{
		"action": "graph_load",
		"codec":  r.codec.Name(),
	})

	l := &graphLoad{
		reader: r,
		logger: logger,
		cache:  newIdentityCache(),
		pacer: &commitPacer{
			g:         g,
			batchSize: r.batchSize,
			tx:        g.SupportsTransactions(),
			metrics:   r.metrics,
			logger:    logger,
		},
	}

	if err := l.loadVertices(ctx, in, g); err != nil {
		return err
	}
	if err := l.loadEdges(ctx, g); err != nil {
		return err
	}
	if err := l.pacer.finish(ctx); err != nil {
		return l.fail(PhaseCommit, l.records, "", err)
	}

	r.metrics.observeLoad(start)
	logger.WithFields(logrus.Fields{
		"vertices": l.cache.len(),
		"edges":    l.edges,
		"commits":  l.pacer.commits,
		"took":     time.Since(start).String(),
	}).Info("graph loaded")
	return nil
}

type graphLoad struct {
	reader  *Reader
	logger  logrus.FieldLogger
	cache   *identityCache
	pacer   *commitPacer
	records int
	edges   int
}

func (l *graphLoad) loadVertices(ctx context.Context, in io.Reader, g graph.Graph) error {
	records := l.reader.codec.Records(in, l.reader.maxRecordSize)
	attach := CreateVertex(g)

	for {
		if err := ctx.Err(); err != nil {
			return l.fail(PhaseVertices, l.records+1, "", err)
		}

		raw, err := records.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		l.records++
		if err != nil {
			return l.fail(PhaseVertices, l.records, "", &DecodeError{Err: err})
		}

		v, err := l.reader.decodeVertex(raw, star.DirectionOut)
		if err != nil {
			return l.fail(PhaseVertices, l.records, fragment(raw), err)
		}
		if l.cache.contains(v.ID()) {
			return l.fail(PhaseVertices, l.records, fragment(raw),
				errors.Wrapf(ErrDuplicateVertex, "%v", v.ID()))
		}

		live, err := attach(ctx, v)
		if err != nil {
			return l.fail(PhaseVertices, l.records, fragment(raw), err)
		}
		l.cache.add(v, live, l.records)
		l.reader.metrics.vertexAdded()

		if err := l.pacer.mutated(ctx); err != nil {
			return l.fail(PhaseCommit, l.records, fragment(raw), err)
		}
	}

	l.logger.WithField("vertices", l.cache.len()).Debug("vertex phase done")
	return nil
}

func (l *graphLoad) loadEdges(ctx context.Context, g graph.Graph) error {
	attach := CreateEdge(g, l.cache.lookup)

	for _, entry := range l.cache.entries {
		for _, e := range entry.vertex.OutEdges() {
			if err := ctx.Err(); err != nil {
				return l.fail(PhaseEdges, entry.record, "", err)
			}

			d := entry.vertex.Detach(e, star.DirectionOut)
			if _, err := attach(ctx, d); err != nil {
				return l.fail(PhaseEdges, entry.record, fragment([]byte(d.String())), err)
			}
			l.edges++
			l.reader.metrics.edgeAdded()

			if err := l.pacer.mutated(ctx); err != nil {
				return l.fail(PhaseCommit, entry.record, fragment([]byte(d.String())), err)
			}
		}
	}

	l.logger.WithField("edges", l.edges).Debug("edge phase done")
	return nil
}

func (l *graphLoad) fail(phase Phase, record int, frag string, err error) error {
	l.reader.metrics.failed(phase)
	l.logger.WithFields(logrus.Fields{
		"phase":   phase,
		"record":  record,
		"commits": l.pacer.commits,
	}).WithError(err).Error("graph load failed")
	return &LoadError{Phase: phase, Record: record, Fragment: frag, Err: err}
}

// commitPacer counts mutations across both phases and commits every
// batchSize of them.
type commitPacer struct {
	g         graph.Graph
	batchSize int
	tx        bool
	counter   int
	commits   int
	metrics   *Metrics
	logger    logrus.FieldLogger
}

func (p *commitPacer) mutated(ctx context.Context) error {
	p.counter++
	if !p.tx || p.counter%p.batchSize != 0 {
		return nil
	}
	return p.commit(ctx)
}

func (p *commitPacer) finish(ctx context.Context) error {
	if !p.tx {
		return nil
	}
	return p.commit(ctx)
}

func (p *commitPacer) commit(ctx context.Context) error {
	if err := p.g.Commit(ctx); err != nil {
		return errors.Wrapf(err, "commit after %d mutations", p.counter)
	}
	p.commits++
	p.metrics.committed()
	p.logger.WithFields(logrus.Fields{
		"action":    "graph_load_commit",
		"mutations": p.counter,
	}).Debug("batch committed")
	return nil
}

func (r *Reader) decode(raw []byte) (map[string]any, error) {
	tree, err := r.codec.Decode(raw)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return tree, nil
}

func (r *Reader) decodeVertex(raw []byte, dir star.Direction) (*star.Vertex, error) {
	tree, err := r.decode(raw)
	if err != nil {
		return nil, err
	}
	return materializeVertex(tree, dir)
}
