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

package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// NewRegistry returns a registry carrying the go runtime and process
// collectors. Loader metrics are registered on it by the caller.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Server exposes a registry on /metrics.
type Server struct {
	registry    *prometheus.Registry
	connections prometheus.Gauge
	logger      logrus.FieldLogger
}

func NewServer(reg *prometheus.Registry, logger logrus.FieldLogger) *Server {
	return &Server{
		registry: reg,
		connections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "graphio",
			Name:      "metrics_open_connections",
			Help:      "Number of open connections to the metrics endpoint",
		}),
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		Registry: s.registry,
	}))
	return mux
}

// ListenAndServe serves on the given port until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on metrics port %d: %w", port, err)
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done, then shuts the server down. A
// cancelled context is a clean stop and returns nil.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.WithField("action", "metrics_serve").
		WithField("address", l.Addr().String()).
		Info("serving prometheus metrics")

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(countConnections(l, s.connections))
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.WithField("action", "metrics_shutdown").WithError(err).
				Warn("failed to shut down metrics server")
			return err
		}
		<-errc
		return nil
	}
}
