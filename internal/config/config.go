// Package config loads the application settings and pipeline files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"ciphr/internal/stream"
)

// EnvPrefix marks environment overrides, e.g. CIPHR_OUTPUT__NEWLINE=true.
const EnvPrefix = "CIPHR_"

type LogCfg struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type OutputCfg struct {
	Sinks   []string `koanf:"sinks"`
	Newline bool     `koanf:"newline"`
	// File is the path of the file sink.
	File string `koanf:"file"`
}

type MetricsCfg struct {
	// File receives a prometheus text dump at exit when set.
	File string `koanf:"file"`
}

type Config struct {
	SchemaVersion string     `koanf:"schema_version"`
	ChunkSize     int        `koanf:"chunk_size"`
	Log           LogCfg     `koanf:"log"`
	Output        OutputCfg  `koanf:"output"`
	Metrics       MetricsCfg `koanf:"metrics"`
}

// Load merges YAML (if present) with env-vars (prefix CIPHR_, delimiter
// `__`) and fills in defaults.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %s)", sv, SupportedSchema)
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", envKey), nil); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// envKey maps CIPHR_OUTPUT__NEWLINE to output__newline. The flat logging
// variables (CIPHR_LOG_LEVEL) are left to the logging package.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if !strings.Contains(key, "__") && key != "chunk_size" {
		return ""
	}
	return key
}

func applyDefaults(c *Config) {
	if c.SchemaVersion == "" {
		c.SchemaVersion = SupportedSchema
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = stream.DefaultChunkSize
	}
	if len(c.Output.Sinks) == 0 {
		c.Output.Sinks = []string{"stdout"}
	}
}
