package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"icwfixtures/internal/config"
	"icwfixtures/internal/exporter"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/internal/manifest"
	"icwfixtures/internal/operations"
	"icwfixtures/internal/script"
	"icwfixtures/internal/synth"
	"icwfixtures/internal/validation"
	"icwfixtures/pkg/contracts"
)

// Application represents the fixture generator with all components wired
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Manager       *operations.Manager

	params    synth.Params
	runtime   *infrastructure.RuntimeMetrics
	startTime time.Time
}

// Option customizes an Application before its components are built
type Option func(*Application)

// WithSynthParams overrides the generation parameters
func WithSynthParams(p synth.Params) Option {
	return func(a *Application) {
		a.params = p
	}
}

// NewApplication loads configuration and the global logger, then builds
// the application from them
func NewApplication(opts ...Option) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, opts...)
}

// New creates an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		params:    synth.DefaultParams(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	info := contracts.GetVersionInfo()
	logger.Debug("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", info.Version),
		slog.String("data_format", info.DataFormat),
		slog.String("git_commit", info.GitCommit))

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(paths.OutputDir); err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)
	a.Paths = paths

	configFile := cfg.Source
	if configFile == "" {
		configFile = "none"
	}
	logger.Info("Configuration loaded",
		slog.String("config_file", configFile),
		slog.String("output_dir", paths.OutputDir),
		slog.String("float_style", cfg.Output.FloatStyle))

	providers, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, paths.MetricsFile), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	a.runtime, err = infrastructure.NewRuntimeMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	if err := a.initializeSteps(); err != nil {
		return nil, fmt.Errorf("failed to initialize steps: %w", err)
	}

	return a, nil
}

// initializeSteps registers the fixture steps in execution order
func (a *Application) initializeSteps() error {
	style, err := exporter.ParseFloatStyle(a.Config.Output.FloatStyle)
	if err != nil {
		return err
	}

	metrics := a.OTelProviders.Metrics
	scriptParams := script.DefaultParams()
	scriptParams.DatasetFile = a.Paths.ScriptRelative(a.Paths.DatasetCSV)
	scriptParams.ResultsFile = a.Paths.ScriptRelative(a.Paths.ResultsCSV)
	scriptParams.NormByResultsFile = a.Paths.ScriptRelative(a.Paths.NormByResultsCSV)

	synthesizer := synth.New(a.params, synth.WithLogger(a.Logger), synth.WithMetrics(metrics))
	datasetWriter := exporter.NewDatasetWriter(exporter.NewCSVWriter(a.Paths, a.Logger), style, a.Logger, metrics)
	emitter := script.NewEmitter(a.Logger, metrics)
	manifestWriter := manifest.NewWriter(a.Logger)

	registry := operations.NewRegistry()
	steps := []operations.Step{
		operations.NewSynthesizeStep(synthesizer),
		operations.NewWriteDatasetStep(datasetWriter, a.Paths.DatasetCSV),
		operations.NewEmitScriptStep(emitter, a.Paths.ScriptFile, scriptParams),
		operations.NewWriteManifestStep(manifestWriter, a.Paths.ManifestXLSX, manifest.RunInfo{
			Seed:            a.params.Seed,
			Panels:          a.params.Panels,
			Vars:            a.params.Vars,
			MinObs:          a.params.MinObs,
			MaxObs:          a.params.MaxObs,
			ControlFloor:    a.params.ControlFloor,
			FloatStyle:      string(style),
			TemplateVersion: script.TemplateVersion,
			DatasetFile:     scriptParams.DatasetFile,
			ScriptFile:      a.Paths.ScriptRelative(a.Paths.ScriptFile),
			Generator:       contracts.GetVersionString(),
		}),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return err
		}
	}

	opConfig := operations.NewConfig()
	if !a.Config.Manifest.Enabled {
		opConfig.DisableStep(operations.StepIDWriteManifest, "manifest disabled")
	}

	a.Manager = operations.NewManager(registry, opConfig,
		operations.WithLogger(a.Logger),
		operations.WithTracer(operations.NewOperationTracer(a.OTelProviders)))
	return nil
}

// Params returns the generation parameters in use
func (a *Application) Params() synth.Params {
	return a.params
}

// Run executes one fixture run
func (a *Application) Run(ctx context.Context) (*operations.RunSummary, error) {
	summary, err := a.Manager.Run(ctx, "")

	stats := a.runtime.Collect(ctx, a.startTime)
	a.Logger.DebugContext(ctx, "Runtime statistics", slog.Any("runtime", stats))

	return summary, err
}

// CompletionMessage is the single line printed after a successful run
func (a *Application) CompletionMessage() string {
	return fmt.Sprintf(config.CompletionMessageFmt,
		a.Paths.ScriptRelative(a.Paths.DatasetCSV),
		a.Paths.ScriptRelative(a.Paths.ScriptFile))
}

// Close flushes telemetry and writes the metrics file when configured
func (a *Application) Close(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		return err
	}
	return nil
}
