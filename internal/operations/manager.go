package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"icwfixtures/internal/infrastructure"
)

// Manager runs registered steps strictly in registration order
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and step spans
func WithTracer(tracer *OperationTracer) ManagerOption {
	return func(m *Manager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// NewManager creates a new run manager
func NewManager(registry *Registry, config *Config, opts ...ManagerOption) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}

	m := &Manager{
		registry: registry,
		config:   config,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracer == nil {
		m.tracer = NewOperationTracer(nil)
	}
	m.logger = infrastructure.WithComponent(m.logger, "operations")
	return m
}

// Run executes every registered step once. The first failure stops the run;
// files written by earlier steps are left in place. The summary is returned
// on failure too.
func (m *Manager) Run(ctx context.Context, runID string) (*RunSummary, error) {
	if runID != "" {
		ctx = infrastructure.WithRunID(ctx, runID)
	}
	ctx = infrastructure.EnsureRunID(ctx)
	runID = infrastructure.GetRunID(ctx)

	steps := m.registry.List()
	state := NewRunState(runID)
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceRun(ctx, runID, len(steps))
	defer span.End()

	state.Start()
	m.logger.InfoContext(ctx, "run_start",
		slog.Int("step_count", len(steps)))

	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordRunCompletion(span, state.GetStatus(), state.Duration(), err)

	summary := state.Summary()
	if err != nil {
		infrastructure.WithError(m.logger, err).ErrorContext(ctx, "run_failed",
			slog.String("status", string(summary.Status)),
			slog.String("step", FailedStep(err)))
		return summary, err
	}

	m.logger.InfoContext(ctx, "run_complete",
		slog.Duration("duration", summary.Duration),
		slog.Any("outputs", summary.Outputs))
	return summary, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *RunState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "run_cancelled",
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "run cancelled")
			return NewCancellationError(step.ID(), err)
		}

		stepState := state.GetStep(step.ID())

		if reason, disabled := m.config.IsDisabled(step.ID()); disabled {
			_, span := m.tracer.TraceStep(ctx, state.ID, step.ID())
			stepState.Skip(reason)
			m.tracer.RecordStepSkipped(span, reason)
			span.End()
			m.logger.InfoContext(ctx, "step_skipped",
				slog.String("step", step.ID()),
				slog.String("reason", reason))
			continue
		}

		m.logger.DebugContext(ctx, "executing_step",
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step, stepState); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep validates and runs one step inside its own span and timeout
func (m *Manager) executeStep(ctx context.Context, state *RunState, step Step, stepState *StepState) error {
	stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step.ID())
	defer span.End()

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), err)
		stepState.Fail(opErr)
		m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), 0, opErr)
		m.logStepError(ctx, step.ID(), opErr)
		return opErr
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(stepCtx, timeout)
	defer cancel()

	stepState.Start()
	m.logger.InfoContext(ctx, "step_start",
		slog.String("step", step.ID()),
		slog.String("name", step.Name()))

	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	if err != nil {
		var opErr *OperationError
		switch {
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			opErr = NewTimeoutError(step.ID(), timeout.String(), err)
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			opErr = NewCancellationError(step.ID(), err)
		default:
			opErr = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(opErr)
		m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, opErr)
		m.logStepError(ctx, step.ID(), opErr)
		return opErr
	}

	stepState.Complete()
	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, nil)
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// skipRemaining marks steps that never started as skipped
func (m *Manager) skipRemaining(state *RunState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (m *Manager) logStepError(ctx context.Context, stepID string, err error) {
	infrastructure.WithError(m.logger, err).ErrorContext(ctx, "step_error",
		slog.String("step", stepID),
		slog.String("error_type", string(GetErrorType(err))))
}
