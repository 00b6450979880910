package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"icwfixtures/internal/infrastructure"
)

const (
	TracerName = "icwfixtures.operation"
)

// OperationTracer wraps runs and steps in spans and records step metrics
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.FixtureMetrics
}

// NewOperationTracer creates a tracer from initialized providers. With nil
// providers spans go to the global tracer provider and no metrics are kept.
func NewOperationTracer(providers *infrastructure.OTelProviders) *OperationTracer {
	if providers == nil {
		return &OperationTracer{tracer: otel.Tracer(TracerName)}
	}
	tracer := providers.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &OperationTracer{
		tracer:  tracer,
		metrics: providers.Metrics,
	}
}

// TraceRun creates a span for the entire run
func (ot *OperationTracer) TraceRun(ctx context.Context, runID string, stepCount int) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "operation.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.step_count", stepCount),
		),
	)
}

// TraceStep creates a span for one step
func (ot *OperationTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion closes out a step span and records its metrics
func (ot *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}

	ot.metrics.RecordStep(ctx, stepID, duration, err)
}

// RecordStepSkipped marks a step span as skipped
func (ot *OperationTracer) RecordStepSkipped(span trace.Span, reason string) {
	span.SetAttributes(
		attribute.String("step.status", string(StepStatusSkipped)),
		attribute.String("step.skip_reason", reason),
	)
}

// RecordRunCompletion closes out the run span
func (ot *OperationTracer) RecordRunCompletion(span trace.Span, status RunStatus, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("run.status", string(status)),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("run %s", status))
		return
	}
	span.SetStatus(codes.Ok, "run completed")
}
