package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"ciphr/internal/logging"
	"ciphr/internal/stream"
	"ciphr/internal/telemetry"
	"ciphr/sink"
)

type namedSink struct {
	name string
	s    sink.Adapter
}

// Runner drains a compiled chain into its sinks.
type Runner struct {
	sinks     []namedSink
	chunkSize int
	metrics   *telemetry.Metrics
}

func NewRunner() *Runner { return &Runner{chunkSize: stream.DefaultChunkSize} }

func (r *Runner) AddSink(name string, s sink.Adapter) {
	r.sinks = append(r.sinks, namedSink{name: name, s: s})
}

// SetChunkSize sets how many bytes each drain step asks for. Values <= 0
// take whatever chunk the last stage produces.
func (r *Runner) SetChunkSize(n int) { r.chunkSize = n }

func (r *Runner) SetMetrics(m *telemetry.Metrics) { r.metrics = m }

// Run pulls c to exhaustion, writing every chunk to every sink in order.
// Whatever happens, the chain and all sinks are closed before Run returns;
// close failures are reported alongside the run error.
func (r *Runner) Run(ctx context.Context, c *Chain) error {
	if len(r.sinks) == 0 {
		if err := c.Close(); err != nil {
			logging.L().Warn("close chain", "err", err)
		}
		return errors.New("runner: no sinks configured")
	}

	runErr := r.drain(ctx, c)

	var merr *multierror.Error
	if err := c.Close(); err != nil {
		merr = multierror.Append(merr, err)
	}
	for _, ns := range r.sinks {
		if err := ns.s.Close(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("sink %s: %w", ns.name, err))
		}
	}
	if merr == nil {
		return runErr
	}
	if runErr != nil {
		merr = multierror.Append(runErr, merr.Errors...)
	}
	return merr
}

func (r *Runner) drain(ctx context.Context, c *Chain) error {
	var total int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := c.Read(r.chunkSize)
		if errors.Is(err, io.EOF) {
			logging.L().Debug("chain exhausted", "bytes", total)
			return nil
		}
		if err != nil {
			return err
		}
		total += len(chunk)
		for _, ns := range r.sinks {
			if err := ns.s.Write(chunk); err != nil {
				return fmt.Errorf("sink %s: %w", ns.name, err)
			}
			r.metrics.ObserveSink(ns.name, len(chunk))
		}
	}
}
