package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"icwfixtures/internal/config"
)

const (
	ServiceName = config.AppName
	MeterName   = "icwfixtures"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TraceExporter  string // "stdout", "none"
	MetricsFile    string // Prometheus text file, empty disables metrics
	TraceWriter    io.Writer
}

// OTelProviders holds the OpenTelemetry providers for one generation run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Metrics        *FixtureMetrics
	Logger         *slog.Logger

	metricsFile string
}

// NewOTelConfig derives the telemetry settings from application config
func NewOTelConfig(cfg config.TelemetryConfig, metricsFile string) *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: config.AppVersion,
		TraceExporter:  cfg.TraceExporter,
		MetricsFile:    metricsFile,
		TraceWriter:    stderrWriter,
	}
}

// InitializeOTel sets up tracing and metrics. Disabled signals get no-op
// providers so callers never branch on configuration.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = NewOTelConfig(config.TelemetryConfig{TraceExporter: config.TraceExporterNone}, "")
	}
	if logger == nil {
		logger = GetLogger()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	providers := &OTelProviders{
		Logger:      logger,
		metricsFile: cfg.MetricsFile,
	}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := initializeMetrics(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	metrics, err := CreateFixtureMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	providers.Metrics = metrics

	logger.Debug("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", providers.MeterProvider != nil))

	return providers, nil
}

func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case config.TraceExporterStdout:
		w := cfg.TraceWriter
		if w == nil {
			w = stderrWriter
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetTracerProvider(tp)
	case config.TraceExporterNone, "":
		providers.Tracer = tracenoop.NewTracerProvider().Tracer(MeterName)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	return nil
}

func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.MetricsFile == "" {
		providers.Meter = metricnoop.NewMeterProvider().Meter(MeterName)
		return nil
	}

	// Private registry so the text file holds only this run's series
	reg := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.Registry = reg
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	return nil
}

// FixtureMetrics contains the instruments recorded during a generation run
type FixtureMetrics struct {
	PanelsGenerated metric.Int64Counter
	RowsWritten     metric.Int64Counter
	BytesWritten    metric.Int64Counter
	PanelSize       metric.Int64Histogram
	StepDuration    metric.Float64Histogram
	StepErrors      metric.Int64Counter
	ValidationFails metric.Int64Counter
}

// CreateFixtureMetrics registers the fixture instruments on meter
func CreateFixtureMetrics(meter metric.Meter) (*FixtureMetrics, error) {
	panelsGenerated, err := meter.Int64Counter(
		"fixture_panels_generated",
		metric.WithDescription("Number of panels synthesized"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"fixture_rows_written",
		metric.WithDescription("Number of data rows written to the dataset file"),
	)
	if err != nil {
		return nil, err
	}

	bytesWritten, err := meter.Int64Counter(
		"fixture_bytes_written",
		metric.WithDescription("Bytes written to fixture files"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	panelSize, err := meter.Int64Histogram(
		"fixture_panel_size",
		metric.WithDescription("Observations per panel"),
		metric.WithExplicitBucketBoundaries(500, 750, 1000, 1250, 1500, 1750, 2000),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"fixture_step_duration",
		metric.WithDescription("Duration of run steps"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"fixture_step_errors",
		metric.WithDescription("Number of failed run steps"),
	)
	if err != nil {
		return nil, err
	}

	validationFails, err := meter.Int64Counter(
		"fixture_validation_failures",
		metric.WithDescription("Number of fixture invariant violations found"),
	)
	if err != nil {
		return nil, err
	}

	return &FixtureMetrics{
		PanelsGenerated: panelsGenerated,
		RowsWritten:     rowsWritten,
		BytesWritten:    bytesWritten,
		PanelSize:       panelSize,
		StepDuration:    stepDuration,
		StepErrors:      stepErrors,
		ValidationFails: validationFails,
	}, nil
}

// RecordStep records duration and outcome of a single run step
func (m *FixtureMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.Bool("success", err == nil),
	)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.StepErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("step", stepID)))
	}
}

// Shutdown flushes spans and writes the metrics text file when enabled
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.Registry != nil && p.metricsFile != "" {
		if err := promclient.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics file: %w", err))
		} else {
			p.Logger.Debug("Metrics written", slog.String("path", p.metricsFile))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RecordError marks the span in ctx as failed
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes adds attributes to the span in ctx
func SetSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
