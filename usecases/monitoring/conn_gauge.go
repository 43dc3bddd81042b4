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
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// gaugedListener keeps open tracking the connections it accepted that are
// not closed yet.
type gaugedListener struct {
	net.Listener
	open prometheus.Gauge
}

func countConnections(l net.Listener, open prometheus.Gauge) net.Listener {
	return &gaugedListener{Listener: l, open: open}
}

func (l *gaugedListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	l.open.Inc()
	return &gaugedConn{Conn: conn, release: sync.OnceFunc(l.open.Dec)}, nil
}

type gaugedConn struct {
	net.Conn
	release func()
}

// Close releases the gauge once, however often it is called.
func (c *gaugedConn) Close() error {
	defer c.release()
	return c.Conn.Close()
}
