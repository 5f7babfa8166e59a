package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage("0", "md5", 16, false)
	m.ObserveStage("0", "md5", 0, false)
	m.ObserveStage("1", "hex", 32, false)
	m.ObserveStage("1", "hex", 0, true)

	require.InDelta(t, 16, testutil.ToFloat64(m.StageBytes.WithLabelValues("0", "md5")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.StageChunks.WithLabelValues("0", "md5")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.StageErrors.WithLabelValues("1", "hex")), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveStage("0", "cat", 10, false)
	m.ObserveSink("stdout", 10)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveSink("stdout", 42)

	path := filepath.Join(t.TempDir(), "ciphr.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), `ciphr_sink_bytes_total{sink="stdout"} 42`), string(raw))
}
