package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"icwfixtures/internal/config"
	"icwfixtures/internal/exporter"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/internal/synth"
	"icwfixtures/internal/validation"
)

const passedMessage = "Fixture validation passed."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run validates the fixtures in the directory named by args and returns
// the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defaults := synth.DefaultParams()

	fs := flag.NewFlagSet("fixturecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", ".", "directory containing the generated fixtures")
	summary := fs.String("summary", "", "also write a per-panel summary CSV to this path")
	panels := fs.Int("panels", defaults.Panels, "expected number of panels")
	vars := fs.Int("vars", defaults.Vars, "expected number of feature columns")
	minObs := fs.Int("min-obs", defaults.MinObs, "smallest allowed panel size")
	maxObs := fs.Int("max-obs", defaults.MaxObs, "panel size upper bound (exclusive)")
	floor := fs.Int("floor", defaults.ControlFloor, "control group floor")
	workers := fs.Int("workers", 0, "panels checked concurrently (0 = GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 1
	}
	cfg.Output.Dir = *dir

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.GetPaths(cfg)
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		return 1
	}
	if err := validation.NewFileValidator(logger).ValidateInputDirectory(paths.OutputDir, config.DatasetFileName, config.ScriptFileName); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	params := defaults
	params.Panels, params.Vars = *panels, *vars
	params.MinObs, params.MaxObs, params.ControlFloor = *minObs, *maxObs, *floor

	providers, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, paths.MetricsFile), logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Error("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}()

	opts := []validation.Option{validation.WithMetrics(providers.Metrics)}
	if *workers > 0 {
		opts = append(opts, validation.WithWorkers(*workers))
	}
	validator := validation.NewFixtureValidator(logger, opts...)

	ctx = infrastructure.WithRunID(ctx, infrastructure.GenerateRunID())
	report, err := validator.ValidateOutputs(ctx, paths, validation.ExpectationsFor(params))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *summary != "" {
		writer := exporter.NewCSVWriter(paths, logger)
		if err := writer.ExportPanelSummary(report.Panels, *summary); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	if !report.Passed() {
		for _, v := range report.Violations {
			fmt.Fprintln(stdout, v.String())
		}
		fmt.Fprintf(stdout, "%d violation(s) found.\n", len(report.Violations))
		return 1
	}

	fmt.Fprintln(stdout, passedMessage)
	return 0
}
