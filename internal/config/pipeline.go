package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ciphr/internal/spec"
	"ciphr/internal/transform"
)

const SupportedSchema = "v1"

// LoadPipelineSpec parses a pipeline YAML, validates schema_version, and
// resolves relative file paths against the file's own directory.
func LoadPipelineSpec(path string) (spec.File, error) {
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, fmt.Errorf("pipeline schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}
	switch {
	case cfg.Chain != "" && len(cfg.Stages) > 0:
		return cfg, errors.New("pipeline sets both chain and stages")
	case cfg.Chain == "" && len(cfg.Stages) == 0:
		return cfg, errors.New("pipeline has neither chain nor stages")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return cfg, err
	}
	cfg.Dir = filepath.Dir(abs)
	resolveStages(cfg.Stages, cfg.Dir)
	cfg.SinkConfigs.File.Path = Resolve(cfg.Dir, cfg.SinkConfigs.File.Path)
	return cfg, nil
}

// Resolve joins a relative path onto dir. Empty and absolute paths are
// returned as is.
func Resolve(dir, p string) string {
	if p == "" || dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func resolveStages(stages []spec.Stage, dir string) {
	for i := range stages {
		st := &stages[i]
		if p, ok := st.Options[transform.OptFile]; ok {
			st.Options[transform.OptFile] = Resolve(dir, p)
		}
		for _, arg := range st.Args {
			resolveStages(arg, dir)
		}
	}
}
