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

package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// jsonDuration decodes a time.Duration from a string such as "30s", the way
// yaml does, or from an integer count of nanoseconds.
type jsonDuration time.Duration

func (d *jsonDuration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = jsonDuration(parsed)
		return nil
	}

	var ns int64
	if err := json.Unmarshal(b, &ns); err != nil {
		return fmt.Errorf("invalid duration %s, use a string like \"30s\"", b)
	}
	*d = jsonDuration(ns)
	return nil
}

func (n *Neo4j) UnmarshalJSON(b []byte) error {
	type plain Neo4j
	aux := struct {
		*plain
		ConnectTimeout *jsonDuration `json:"connect_timeout"`
	}{
		plain:          (*plain)(n),
		ConnectTimeout: (*jsonDuration)(&n.ConnectTimeout),
	}
	return json.Unmarshal(b, &aux)
}

func (g *Gremlin) UnmarshalJSON(b []byte) error {
	type plain Gremlin
	aux := struct {
		*plain
		Timeout        *jsonDuration `json:"timeout"`
		ConnectTimeout *jsonDuration `json:"connect_timeout"`
	}{
		plain:          (*plain)(g),
		Timeout:        (*jsonDuration)(&g.Timeout),
		ConnectTimeout: (*jsonDuration)(&g.ConnectTimeout),
	}
	return json.Unmarshal(b, &aux)
}
