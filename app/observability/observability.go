package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/Black-And-White-Club/racing-car/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const ServiceName = "racing-car"

// Observability bundles the logger, tracer and metrics registry.
type Observability struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	Tracer         trace.Tracer
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry

	shutdown func(context.Context) error
}

// Option customises Init.
type Option func(*options)

type options struct {
	spanProcessors []sdktrace.SpanProcessor
}

// WithSpanProcessor attaches a processor to the SDK tracer provider.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) {
		o.spanProcessors = append(o.spanProcessors, sp)
	}
}

// Init builds observability from config. Logs go to logOut, which should not
// be the race display.
func Init(cfg config.ObservabilityConfig, logOut io.Writer, opts ...Option) (*Observability, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, err
	}
	logger = logger.With(
		slog.String("service", ServiceName),
		slog.String("environment", cfg.Environment),
	)

	obs := &Observability{
		Logger:   logger,
		shutdown: func(context.Context) error { return nil },
	}

	if cfg.TracingEnabled {
		res := resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("deployment.environment", cfg.Environment),
		)
		tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
		for _, sp := range o.spanProcessors {
			tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
		}
		tp := sdktrace.NewTracerProvider(tpOpts...)
		obs.TracerProvider = tp
		obs.shutdown = tp.Shutdown
	} else {
		obs.TracerProvider = noop.NewTracerProvider()
	}
	obs.Tracer = obs.TracerProvider.Tracer(ServiceName)

	if cfg.MetricsEnabled {
		obs.Registry = prometheus.NewRegistry()
	}

	return obs, nil
}

// NewLogger builds a slog logger for the given level and format.
func NewLogger(level, format string, out io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// WriteMetrics writes every gathered metric family in the Prometheus text
// format, sorted by name. It writes nothing when metrics are disabled.
func (o *Observability) WriteMetrics(w io.Writer) error {
	if o.Registry == nil {
		return nil
	}
	families, err := o.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Shutdown flushes the tracer provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	if err := o.shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}
