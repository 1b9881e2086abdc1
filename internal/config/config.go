// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

// Package config loads billfold configuration from defaults, an optional
// YAML file and command line flags, in that order of precedence.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	flag "github.com/spf13/pflag"
)

// Config holds the resolved runtime configuration.
type Config struct {
	Mongo   MongoConfig   `koanf:"mongo"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Auth    AuthConfig    `koanf:"auth"`
}

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig holds the observability endpoint settings.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// AuthConfig holds authentication tuning knobs.
type AuthConfig struct {
	// HashConcurrency bounds how many password hashes may run at once.
	// Each hash holds several megabytes while running.
	HashConcurrency int64 `koanf:"hash_concurrency"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mongo.uri":             "mongodb://localhost:27017",
		"mongo.database":        "billfold",
		"log.level":             "info",
		"log.format":            "text",
		"metrics.addr":          "localhost:9090",
		"auth.hash_concurrency": int64(8),
	}
}

// Load resolves configuration. path may be empty, in which case no file is
// read. flags may be nil, in which case no flag overrides apply.
func Load(path string, flags *flag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	if cfg.Auth.HashConcurrency < 1 {
		return nil, oops.Code("CONFIG_INVALID").
			With("hash_concurrency", cfg.Auth.HashConcurrency).
			Errorf("hash concurrency must be at least 1")
	}
	return &cfg, nil
}
