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
	"io"

	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of mutations between two commits.
const DefaultBatchSize = 10000

// DefaultMaxRecordSize bounds a single record in bytes.
const DefaultMaxRecordSize = 16 << 20

// Reader deserializes star records into a graph store. A Reader holds no
// per-load state and may be reused, but a single load is not safe for
// concurrent use.
type Reader struct {
	codec         Codec
	batchSize     int
	maxRecordSize int
	logger        logrus.FieldLogger
	metrics       *Metrics
}

type Option func(*Reader)

// WithBatchSize sets the number of mutations per commit. Values below one are
// ignored.
func WithBatchSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithMaxRecordSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxRecordSize = n
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Reader) {
		r.metrics = m
	}
}

func New(codec Codec, opts ...Option) *Reader {
	nullLogger := logrus.New()
	nullLogger.SetOutput(io.Discard)

	r := &Reader{
		codec:         codec,
		batchSize:     DefaultBatchSize,
		maxRecordSize: DefaultMaxRecordSize,
		logger:        nullLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) BatchSize() int {
	return r.batchSize
}

func (r *Reader) Codec() Codec {
	return r.codec
}
