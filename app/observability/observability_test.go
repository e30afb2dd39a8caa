package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/Black-And-White-Club/racing-car/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "text info", level: "info", format: "text"},
		{name: "json debug", level: "debug", format: "json"},
		{name: "default format", level: "warn", format: ""},
		{name: "bad level", level: "loud", format: "text", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestLoggerRespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "race_id", "r1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "r1", entry["race_id"])
}

func TestInitDisabled(t *testing.T) {
	obs, err := Init(config.Default().Observability, io.Discard)
	require.NoError(t, err)

	assert.Nil(t, obs.Registry)
	assert.IsType(t, noop.TracerProvider{}, obs.TracerProvider)

	var buf bytes.Buffer
	require.NoError(t, obs.WriteMetrics(&buf))
	assert.Empty(t, buf.String())
	require.NoError(t, obs.Shutdown(context.Background()))
}

func TestInitTracingRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	cfg := config.Default().Observability
	cfg.TracingEnabled = true

	obs, err := Init(cfg, io.Discard, WithSpanProcessor(recorder))
	require.NoError(t, err)

	_, span := obs.Tracer.Start(context.Background(), "RunRace")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "RunRace", ended[0].Name())
	require.NoError(t, obs.Shutdown(context.Background()))
}

func TestWriteMetrics(t *testing.T) {
	cfg := config.Default().Observability
	cfg.MetricsEnabled = true

	obs, err := Init(cfg, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, obs.Registry)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "racing_car_test_total", Help: "test counter"})
	obs.Registry.MustRegister(counter)
	counter.Add(3)

	var buf bytes.Buffer
	require.NoError(t, obs.WriteMetrics(&buf))
	assert.Contains(t, buf.String(), "# TYPE racing_car_test_total counter")
	assert.Contains(t, buf.String(), "racing_car_test_total 3")
}
