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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics reports load progress. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	vertices prometheus.Counter
	edges    prometheus.Counter
	commits  prometheus.Counter
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	return &Metrics{
		vertices: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "graphio",
			Name:      "load_vertices_total",
			Help:      "Number of vertices attached by bulk loads",
		}),
		edges: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "graphio",
			Name:      "load_edges_total",
			Help:      "Number of edges attached by bulk loads",
		}),
		commits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "graphio",
			Name:      "load_commits_total",
			Help:      "Number of commits issued against the target store",
		}),
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphio",
			Name:      "load_failures_total",
			Help:      "Number of failed bulk loads by phase",
		}, []string{"phase"}),
		duration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphio",
			Name:      "load_duration_seconds",
			Help:      "Duration of bulk loads",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}
}

func (m *Metrics) vertexAdded() {
	if m == nil {
		return
	}
	m.vertices.Inc()
}

func (m *Metrics) edgeAdded() {
	if m == nil {
		return
	}
	m.edges.Inc()
}

func (m *Metrics) committed() {
	if m == nil {
		return
	}
	m.commits.Inc()
}

func (m *Metrics) failed(phase Phase) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(phase)).Inc()
}

func (m *Metrics) observeLoad(start time.Time) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
}
