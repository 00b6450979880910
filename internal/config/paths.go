package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file the generator reads or writes.
// This is the single source of truth for output locations; the script
// emitter and the validator take their file names from here.
type Paths struct {
	OutputDir string

	// Generated fixtures
	DatasetCSV string
	ScriptFile string

	// Written later by the reference tool when it runs the script
	ResultsCSV       string
	NormByResultsCSV string

	// Optional artefacts
	ManifestXLSX string
	MetricsFile  string
}

// GetPaths resolves all output paths under cfg.Output.Dir.
// Unlike a service install layout, fixtures land in the working directory
// unless told otherwise.
func GetPaths(cfg *Config) (*Paths, error) {
	if cfg == nil {
		cfg = Default()
	}

	dir, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %q: %w", cfg.Output.Dir, err)
	}

	paths := &Paths{
		OutputDir:        dir,
		DatasetCSV:       filepath.Join(dir, DatasetFileName),
		ScriptFile:       filepath.Join(dir, ScriptFileName),
		ResultsCSV:       filepath.Join(dir, ResultsFileName),
		NormByResultsCSV: filepath.Join(dir, NormByResultsFile),
		ManifestXLSX:     filepath.Join(dir, cfg.Manifest.FileName),
	}

	if cfg.Telemetry.MetricsFile != "" {
		paths.MetricsFile = cfg.Telemetry.MetricsFile
		if !filepath.IsAbs(paths.MetricsFile) {
			paths.MetricsFile = filepath.Join(dir, paths.MetricsFile)
		}
	}

	return paths, nil
}

// EnsureDirectories creates the output directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.OutputDir}
	if p.MetricsFile != "" {
		directories = append(directories, filepath.Dir(p.MetricsFile))
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// ScriptRelative returns name as the script should refer to it: a bare file
// name when it sits in the output directory, where the reference tool runs
func (p *Paths) ScriptRelative(path string) string {
	if rel, err := filepath.Rel(p.OutputDir, path); err == nil && filepath.Dir(rel) == "." {
		return rel
	}
	return filepath.ToSlash(path)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("outputs",
			slog.String("dir", p.OutputDir),
			slog.String("dataset_csv", p.DatasetCSV),
			slog.String("script_file", p.ScriptFile),
			slog.String("manifest_xlsx", p.ManifestXLSX),
			slog.String("metrics_file", p.MetricsFile),
		),
		slog.Group("reference_tool_outputs",
			slog.String("results_csv", p.ResultsCSV),
			slog.String("normby_results_csv", p.NormByResultsCSV),
		))
}
