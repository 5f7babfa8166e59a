// Package telemetry counts what flows through a run. Counters live on a
// dedicated registry so a one-shot process can dump them to a textfile for
// node_exporter instead of serving them.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ciphr"

type Metrics struct {
	reg *prometheus.Registry

	StageBytes  *prometheus.CounterVec
	StageChunks *prometheus.CounterVec
	StageErrors *prometheus.CounterVec
	SinkBytes   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		StageBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_bytes_total",
			Help:      "Bytes produced by a pipeline stage.",
		}, []string{"stage", "fn"}),
		StageChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_chunks_total",
			Help:      "Non-empty chunks produced by a pipeline stage.",
		}, []string{"stage", "fn"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Errors returned by a pipeline stage.",
		}, []string{"stage", "fn"}),
		SinkBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_bytes_total",
			Help:      "Bytes written to a sink.",
		}, []string{"sink"}),
	}
	m.reg.MustRegister(m.StageBytes, m.StageChunks, m.StageErrors, m.SinkBytes)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveStage records one Read result of a stage. A nil receiver is a
// no-op so callers need not care whether metrics are enabled.
func (m *Metrics) ObserveStage(stage, fn string, n int, failed bool) {
	if m == nil {
		return
	}
	if failed {
		m.StageErrors.WithLabelValues(stage, fn).Inc()
		return
	}
	if n > 0 {
		m.StageBytes.WithLabelValues(stage, fn).Add(float64(n))
		m.StageChunks.WithLabelValues(stage, fn).Inc()
	}
}

// ObserveSink records n bytes written to sink.
func (m *Metrics) ObserveSink(sink string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.SinkBytes.WithLabelValues(sink).Add(float64(n))
}

// WriteTextfile dumps every counter in the prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
