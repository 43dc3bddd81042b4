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
	"fmt"
	"os"
	"strconv"
	"time"
)

// FromEnv takes a *Config as it will respect initial config that has been
// provided by other means (e.g. a config file) and will only extend those that
// are set
func FromEnv(config *Config) error {
	if v := os.Getenv("GRAPHLOAD_BATCH_SIZE"); v != "" {
		n, err := parsePositiveInt("GRAPHLOAD_BATCH_SIZE", v)
		if err != nil {
			return err
		}
		config.BatchSize = n
	}

	if v := os.Getenv("GRAPHLOAD_CODEC"); v != "" {
		config.Codec = v
	}

	if v := os.Getenv("GRAPHLOAD_MAX_RECORD_SIZE"); v != "" {
		n, err := parsePositiveInt("GRAPHLOAD_MAX_RECORD_SIZE", v)
		if err != nil {
			return err
		}
		config.MaxRecordSize = n
	}

	if v := os.Getenv("GRAPHLOAD_DIRECTION"); v != "" {
		config.Direction = v
	}

	if v := os.Getenv("GRAPHLOAD_STORE"); v != "" {
		config.Store.Type = v
	}

	if v := os.Getenv("GRAPHLOAD_SOURCE_ID_KEY"); v != "" {
		config.Store.SourceIDKey = v
	}

	if enabled(os.Getenv("GRAPHLOAD_MEMORY_TRANSACTIONS")) {
		config.Store.Memory.Transactions = true
	}

	if v := os.Getenv("GRAPHLOAD_BOLT_PATH"); v != "" {
		config.Store.Bolt.Path = v
	}

	if v := os.Getenv("GRAPHLOAD_NEO4J_URI"); v != "" {
		config.Store.Neo4j.URI = v
	}
	if v := os.Getenv("GRAPHLOAD_NEO4J_USERNAME"); v != "" {
		config.Store.Neo4j.Username = v
	}
	if v := os.Getenv("GRAPHLOAD_NEO4J_PASSWORD"); v != "" {
		config.Store.Neo4j.Password = v
	}
	if v := os.Getenv("GRAPHLOAD_NEO4J_DATABASE"); v != "" {
		config.Store.Neo4j.Database = v
	}
	if v := os.Getenv("GRAPHLOAD_NEO4J_CONNECT_TIMEOUT"); v != "" {
		d, err := parseDuration("GRAPHLOAD_NEO4J_CONNECT_TIMEOUT", v)
		if err != nil {
			return err
		}
		config.Store.Neo4j.ConnectTimeout = d
	}

	if v := os.Getenv("GRAPHLOAD_GREMLIN_URL"); v != "" {
		config.Store.Gremlin.URL = v
	}
	if v := os.Getenv("GRAPHLOAD_GREMLIN_TIMEOUT"); v != "" {
		d, err := parseDuration("GRAPHLOAD_GREMLIN_TIMEOUT", v)
		if err != nil {
			return err
		}
		config.Store.Gremlin.Timeout = d
	}
	if v := os.Getenv("GRAPHLOAD_GREMLIN_CONNECT_TIMEOUT"); v != "" {
		d, err := parseDuration("GRAPHLOAD_GREMLIN_CONNECT_TIMEOUT", v)
		if err != nil {
			return err
		}
		config.Store.Gremlin.ConnectTimeout = d
	}

	if v := os.Getenv("GRAPHLOAD_GREMLIN_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse GRAPHLOAD_GREMLIN_RATE_LIMIT as float: %w", err)
		}
		config.Store.Gremlin.RateLimit = f
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	if enabled(os.Getenv("PROMETHEUS_MONITORING_ENABLED")) {
		config.Monitoring.Enabled = true
	}
	if v := os.Getenv("PROMETHEUS_MONITORING_PORT"); v != "" {
		n, err := parsePositiveInt("PROMETHEUS_MONITORING_PORT", v)
		if err != nil {
			return err
		}
		config.Monitoring.Port = n
	}

	return nil
}

func parsePositiveInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s as int: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be an integer greater than 0. Got: %v", name, n)
	}
	return n, nil
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s as duration: %w", name, err)
	}
	return d, nil
}

func enabled(value string) bool {
	switch value {
	case "on", "enabled", "1", "true":
		return true
	default:
		return false
	}
}
