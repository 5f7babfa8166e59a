package engine

import (
	"context"

	"ciphr/internal/logging"
	"ciphr/internal/pipeline"
	"ciphr/internal/telemetry"
)

type Engine struct {
	chain       *pipeline.Chain
	runner      *pipeline.Runner
	metrics     *telemetry.Metrics
	metricsFile string
}

// Run drains the chain into the sinks. The metrics textfile, when
// configured, is written even if the run fails.
func (e *Engine) Run(ctx context.Context) error {
	err := e.runner.Run(ctx, e.chain)
	if e.metricsFile != "" {
		if merr := e.metrics.WriteTextfile(e.metricsFile); merr != nil {
			logging.L().Warn("write metrics", "file", e.metricsFile, "err", merr)
		}
	}
	return err
}
