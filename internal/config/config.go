// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Argon2 holds the tunable cost parameters for password hashing.
type Argon2 struct {
	Time      uint32 `koanf:"time"`
	MemoryKiB uint32 `koanf:"memory_kib"`
	Threads   uint8  `koanf:"threads"`
}

// Config is the full service configuration.
type Config struct {
	ListenAddr      string        `koanf:"listen_addr"`
	MetricsAddr     string        `koanf:"metrics_addr"`
	LogFormat       string        `koanf:"log_format"`
	LogLevel        string        `koanf:"log_level"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Argon2          Argon2        `koanf:"argon2"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8080",
		MetricsAddr:     "127.0.0.1:9100",
		LogFormat:       "json",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		Argon2: Argon2{
			Time:      1,
			MemoryKiB: 64 * 1024,
			Threads:   4,
		},
	}
}

// BindFlags registers the configuration flags on fs. Flag names map to
// config keys with dashes replaced by underscores.
func BindFlags(fs *pflag.FlagSet) {
	defaults := Default()
	fs.String("listen-addr", defaults.ListenAddr, "HTTP API listen address")
	fs.String("metrics-addr", defaults.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", defaults.LogFormat, "log format (json or text)")
	fs.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	fs.Duration("shutdown-timeout", defaults.ShutdownTimeout, "graceful shutdown timeout")
	fs.Uint32("argon2-time", defaults.Argon2.Time, "argon2id iterations")
	fs.Uint32("argon2-memory-kib", defaults.Argon2.MemoryKiB, "argon2id memory in KiB")
	fs.Uint8("argon2-threads", defaults.Argon2.Threads, "argon2id parallelism")
}

// flagKey translates a flag name into its config key.
func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if after, ok := strings.CutPrefix(key, "argon2_"); ok {
		key = "argon2." + after
	}
	return key
}

// Load builds the configuration: defaults, then the YAML file at path
// (if non-empty), then explicitly set flags on top.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithValue(fs, ".", k, func(key, value string) (string, any) {
			return flagKey(key), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen_addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("shutdown_timeout must be positive")
	}
	if c.Argon2.Time < 1 {
		return oops.Code("CONFIG_INVALID").Errorf("argon2.time must be at least 1")
	}
	if c.Argon2.Threads < 1 {
		return oops.Code("CONFIG_INVALID").Errorf("argon2.threads must be at least 1")
	}
	// argon2 requires memory of at least 8 KiB per thread
	if c.Argon2.MemoryKiB < 8*uint32(c.Argon2.Threads) {
		return oops.Code("CONFIG_INVALID").Errorf("argon2.memory_kib too small for %d threads", c.Argon2.Threads)
	}
	return nil
}
