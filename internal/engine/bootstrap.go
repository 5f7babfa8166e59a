package engine

import (
	"errors"
	"fmt"
	"strings"

	"ciphr/internal/catalog"
	"ciphr/internal/config"
	"ciphr/internal/logging"
	"ciphr/internal/pipeline"
	"ciphr/internal/spec"
	"ciphr/internal/telemetry"
	"ciphr/internal/transform"
	"ciphr/sink"
	"ciphr/sink/file"
	"ciphr/sink/stdout"
)

// Config is what the command line hands to Bootstrap. Zero values defer to
// the config file and environment.
type Config struct {
	ConfigFile   string
	PipelineFile string
	Expr         string

	Output      string
	Newline     bool
	LogLevel    string
	MetricsFile string
	ChunkSize   int

	// Registry defaults to the built in catalog.
	Registry *transform.Registry
}

type sinkPlan struct {
	names   []string
	newline bool
	path    string
	mode    string
}

func Bootstrap(cfg Config) (*Engine, error) {
	app, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	// 1. logging: env, then config file, then flags
	logOpts := logging.InitFromEnv()
	if app.Log.Level != "" {
		logOpts.Level = app.Log.Level
	}
	logOpts.JSON = logOpts.JSON || app.Log.JSON
	if cfg.LogLevel != "" {
		logOpts.Level = cfg.LogLevel
	}
	logging.Configure(logOpts)

	// 2. pipeline
	reg := cfg.Registry
	if reg == nil {
		reg = catalog.Registry()
	}
	metrics := telemetry.New()
	plan := sinkPlan{names: app.Output.Sinks, newline: app.Output.Newline, path: app.Output.File}
	chunk := app.ChunkSize

	var chain *pipeline.Chain
	switch {
	case cfg.Expr != "" && cfg.PipelineFile != "":
		return nil, errors.New("pass either an expression or a pipeline file, not both")
	case cfg.PipelineFile != "":
		pf, err := config.LoadPipelineSpec(cfg.PipelineFile)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		plan = plan.merge(pf)
		if pf.ChunkSize > 0 {
			chunk = pf.ChunkSize
		}
		chain, err = pipeline.CompileFile(reg, pf, pipeline.WithMetrics(metrics))
		if err != nil {
			return nil, err
		}
	case cfg.Expr != "":
		chain, err = pipeline.CompileExpr(reg, cfg.Expr, pipeline.WithMetrics(metrics))
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("nothing to run: give an expression or a pipeline file")
	}

	// 3. sinks
	if cfg.Output != "" {
		plan.names, plan.path = []string{"file"}, cfg.Output
	}
	plan.newline = plan.newline || cfg.Newline
	if cfg.ChunkSize > 0 {
		chunk = cfg.ChunkSize
	}

	r := pipeline.NewRunner()
	r.SetChunkSize(chunk)
	r.SetMetrics(metrics)
	if err := plan.attach(r); err != nil {
		_ = chain.Close()
		return nil, err
	}

	// 4. metrics
	metricsFile := app.Metrics.File
	if cfg.MetricsFile != "" {
		metricsFile = cfg.MetricsFile
	}

	logging.L().Debug("engine ready",
		"streams", chain.Streams(), "sinks", strings.Join(plan.names, ","), "chunk_size", chunk)
	return &Engine{chain: chain, runner: r, metrics: metrics, metricsFile: metricsFile}, nil
}

func (p sinkPlan) merge(pf spec.File) sinkPlan {
	if len(pf.Sinks) > 0 {
		p.names = pf.Sinks
	}
	p.newline = p.newline || pf.SinkConfigs.Stdout.Newline
	if pf.SinkConfigs.File.Path != "" {
		p.path = pf.SinkConfigs.File.Path
		p.mode = pf.SinkConfigs.File.Mode
	}
	return p
}

// attach builds every planned sink. Sinks already built are closed when a
// later one fails.
func (p sinkPlan) attach(r *pipeline.Runner) error {
	var built []sink.Adapter
	for _, name := range p.names {
		s, err := sink.NewAdapter(name)
		if err == nil {
			switch name {
			case "stdout":
				err = s.Configure(stdout.Config{Newline: p.newline})
			case "file":
				err = s.Configure(file.Config{Path: p.path, Mode: p.mode})
			default:
				err = fmt.Errorf("no config block for sink %q", name)
			}
		}
		if err != nil {
			for _, b := range built {
				_ = b.Close()
			}
			return err
		}
		built = append(built, s)
		r.AddSink(name, s)
	}
	return nil
}
