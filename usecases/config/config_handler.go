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
	"os"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/weaviate/graphio/entities/star"
)

const (
	DefaultBatchSize      = 10000
	DefaultMaxRecordSize  = 16 << 20
	DefaultCodec          = "graphson"
	DefaultStoreType      = "memory"
	DefaultBoltPath       = "./data"
	DefaultSourceIDKey    = "graphio_id"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultMonitoringPort = 2112
	DefaultConnectTimeout = 30 * time.Second
	DefaultGremlinTimeout = 60 * time.Second
)

const (
	StoreMemory  = "memory"
	StoreBolt    = "bolt"
	StoreNeo4j   = "neo4j"
	StoreGremlin = "gremlin"
)

// Flags are input options
type Flags struct {
	ConfigFile string `long:"config-file" description:"path to a .yaml or .json config file"`

	BatchSize      int    `long:"batch-size" description:"number of mutations between two commits (default: 10000)"`
	Codec          string `long:"codec" description:"record codec: graphson or msgpack"`
	MaxRecordSize  int    `long:"max-record-size" description:"largest accepted record in bytes"`
	Direction      string `long:"direction" description:"adjacency written by export: none, out, in or both"`
	Store          string `long:"store" description:"target store: memory, bolt, neo4j or gremlin"`
	BoltPath       string `long:"bolt-path" description:"directory holding the bolt graph file"`
	Neo4jURI       string `long:"neo4j-uri" description:"neo4j bolt uri, e.g. neo4j://localhost:7687"`
	Neo4jDatabase  string `long:"neo4j-database" description:"neo4j database name"`
	GremlinURL     string `long:"gremlin-url" description:"gremlin server http endpoint"`
	SourceIDKey    string `long:"source-id-key" description:"property holding the record identity on remote stores"`
	LogLevel       string `long:"log-level" description:"panic, fatal, error, warn, info, debug or trace"`
	LogFormat      string `long:"log-format" description:"text or json"`
	Monitoring     bool   `long:"monitoring" description:"expose prometheus metrics"`
	MonitoringPort int    `long:"monitoring-port" description:"port of the prometheus metrics endpoint"`
}

// Config outline of the config file
type Config struct {
	BatchSize     int        `json:"batch_size" yaml:"batch_size"`
	Codec         string     `json:"codec" yaml:"codec"`
	MaxRecordSize int        `json:"max_record_size" yaml:"max_record_size"`
	Direction     string     `json:"direction" yaml:"direction"`
	Store         Store      `json:"store" yaml:"store"`
	Logging       Logging    `json:"logging" yaml:"logging"`
	Monitoring    Monitoring `json:"monitoring" yaml:"monitoring"`
}

type Store struct {
	Type        string  `json:"type" yaml:"type"`
	SourceIDKey string  `json:"source_id_key" yaml:"source_id_key"`
	Memory      Memory  `json:"memory" yaml:"memory"`
	Bolt        Bolt    `json:"bolt" yaml:"bolt"`
	Neo4j       Neo4j   `json:"neo4j" yaml:"neo4j"`
	Gremlin     Gremlin `json:"gremlin" yaml:"gremlin"`
}

type Memory struct {
	Transactions bool `json:"transactions" yaml:"transactions"`
}

type Bolt struct {
	Path string `json:"path" yaml:"path"`
}

type Neo4j struct {
	URI            string        `json:"uri" yaml:"uri"`
	Username       string        `json:"username" yaml:"username"`
	Password       string        `json:"password" yaml:"password"`
	Database       string        `json:"database" yaml:"database"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
}

type Gremlin struct {
	URL            string        `json:"url" yaml:"url"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	// RateLimit caps queries per second, zero means unlimited.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
}

type Logging struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type Monitoring struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

// Default returns a config that loads graphson into an in-memory graph.
func Default() Config {
	return Config{
		BatchSize:     DefaultBatchSize,
		Codec:         DefaultCodec,
		MaxRecordSize: DefaultMaxRecordSize,
		Direction:     star.DirectionBoth.String(),
		Store: Store{
			Type:        DefaultStoreType,
			SourceIDKey: DefaultSourceIDKey,
			Bolt:        Bolt{Path: DefaultBoltPath},
			Neo4j:       Neo4j{ConnectTimeout: DefaultConnectTimeout},
			Gremlin: Gremlin{
				Timeout:        DefaultGremlinTimeout,
				ConnectTimeout: DefaultConnectTimeout,
			},
		},
		Logging: Logging{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Monitoring: Monitoring{
			Port: DefaultMonitoringPort,
		},
	}
}

// Validate checks the fully merged config.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return configErr(errors.Errorf("batch_size must be positive, got %d", c.BatchSize))
	}
	if c.MaxRecordSize < 1 {
		return configErr(errors.Errorf("max_record_size must be positive, got %d", c.MaxRecordSize))
	}

	switch c.Codec {
	case "graphson", "msgpack":
	default:
		return configErr(errors.Errorf("unsupported codec %q, use graphson or msgpack", c.Codec))
	}

	if _, err := star.ParseDirection(c.Direction); err != nil {
		return configErr(err)
	}

	if err := c.Store.validate(); err != nil {
		return configErr(err)
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return configErr(err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return configErr(errors.Errorf("unsupported log format %q, use text or json", c.Logging.Format))
	}

	if c.Monitoring.Enabled && (c.Monitoring.Port < 1 || c.Monitoring.Port > 65535) {
		return configErr(errors.Errorf("monitoring port %d out of range", c.Monitoring.Port))
	}

	return nil
}

func (s Store) validate() error {
	switch s.Type {
	case StoreMemory:
		return nil
	case StoreBolt:
		if s.Bolt.Path == "" {
			return errors.New("store.bolt.path is required for the bolt store")
		}
	case StoreNeo4j:
		if s.Neo4j.URI == "" {
			return errors.New("store.neo4j.uri is required for the neo4j store")
		}
	case StoreGremlin:
		if s.Gremlin.URL == "" {
			return errors.New("store.gremlin.url is required for the gremlin store")
		}
		if s.Gremlin.RateLimit < 0 {
			return errors.Errorf("store.gremlin.rate_limit must not be negative, got %v", s.Gremlin.RateLimit)
		}
	default:
		return errors.Errorf("unsupported store type %q, use memory, bolt, neo4j or gremlin", s.Type)
	}

	if s.Type != StoreBolt && s.SourceIDKey == "" {
		return errors.New("store.source_id_key must not be empty")
	}
	return nil
}

// LoadConfig merges defaults, the optional config file, the environment and
// the flags, in that order, and validates the result.
func LoadConfig(flags *Flags, logger logrus.FieldLogger) (Config, error) {
	config := Default()

	if flags.ConfigFile != "" {
		file, err := os.ReadFile(flags.ConfigFile)
		if err != nil {
			return config, configErr(err)
		}

		logger.WithField("action", "config_load").WithField("config_file_path", flags.ConfigFile).
			Debug("loading config file")
		if err := parseConfigFile(file, flags.ConfigFile, &config); err != nil {
			return config, configErr(err)
		}
	}

	if err := FromEnv(&config); err != nil {
		return config, configErr(err)
	}

	fromFlags(flags, &config)

	return config, config.Validate()
}

func parseConfigFile(file []byte, name string, config *Config) error {
	m := regexp.MustCompile(`.*\.(\w+)$`).FindStringSubmatch(name)
	if len(m) < 2 {
		return fmt.Errorf("config file does not have a file ending, got '%s'", name)
	}

	switch m[1] {
	case "json":
		err := json.Unmarshal(file, config)
		if err != nil {
			return fmt.Errorf("error unmarshalling the json config file: %w", err)
		}
	case "yaml", "yml":
		err := yaml.Unmarshal(file, config)
		if err != nil {
			return fmt.Errorf("error unmarshalling the yaml config file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension '%s', use .yaml or .json", m[1])
	}

	return nil
}

// fromFlags parses values from flags given as parameter and overrides values in the config
func fromFlags(flags *Flags, config *Config) {
	if flags.BatchSize > 0 {
		config.BatchSize = flags.BatchSize
	}
	if flags.Codec != "" {
		config.Codec = flags.Codec
	}
	if flags.MaxRecordSize > 0 {
		config.MaxRecordSize = flags.MaxRecordSize
	}
	if flags.Direction != "" {
		config.Direction = flags.Direction
	}
	if flags.Store != "" {
		config.Store.Type = flags.Store
	}
	if flags.BoltPath != "" {
		config.Store.Bolt.Path = flags.BoltPath
	}
	if flags.Neo4jURI != "" {
		config.Store.Neo4j.URI = flags.Neo4jURI
	}
	if flags.Neo4jDatabase != "" {
		config.Store.Neo4j.Database = flags.Neo4jDatabase
	}
	if flags.GremlinURL != "" {
		config.Store.Gremlin.URL = flags.GremlinURL
	}
	if flags.SourceIDKey != "" {
		config.Store.SourceIDKey = flags.SourceIDKey
	}
	if flags.LogLevel != "" {
		config.Logging.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		config.Logging.Format = flags.LogFormat
	}
	if flags.Monitoring {
		config.Monitoring.Enabled = true
	}
	if flags.MonitoringPort > 0 {
		config.Monitoring.Port = flags.MonitoringPort
	}
}

func configErr(err error) error {
	return fmt.Errorf("invalid config: %w", err)
}
