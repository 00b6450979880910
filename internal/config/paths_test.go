package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPaths tests the GetPaths function with various scenarios
func TestGetPaths(t *testing.T) {
	t.Run("default config resolves under working directory", func(t *testing.T) {
		paths, err := GetPaths(nil)
		require.NoError(t, err)

		wd, err := os.Getwd()
		require.NoError(t, err)

		assert.Equal(t, wd, paths.OutputDir)
		assert.Equal(t, filepath.Join(wd, "test_datasets.csv"), paths.DatasetCSV)
		assert.Equal(t, filepath.Join(wd, "run_swindex.do"), paths.ScriptFile)
		assert.Equal(t, filepath.Join(wd, "swindex_results.csv"), paths.ResultsCSV)
		assert.Equal(t, filepath.Join(wd, "swindex_normby_results.csv"), paths.NormByResultsCSV)
		assert.Equal(t, filepath.Join(wd, DefaultManifestFile), paths.ManifestXLSX)
		assert.Empty(t, paths.MetricsFile)
	})

	t.Run("all paths are absolute", func(t *testing.T) {
		cfg := Default()
		cfg.Output.Dir = "relative/out"
		cfg.Telemetry.MetricsFile = "metrics/run.prom"

		paths, err := GetPaths(cfg)
		require.NoError(t, err)

		for _, p := range []string{paths.OutputDir, paths.DatasetCSV, paths.ScriptFile, paths.ManifestXLSX, paths.MetricsFile} {
			assert.True(t, filepath.IsAbs(p), "%s should be absolute", p)
		}
		assert.Equal(t, filepath.Join(paths.OutputDir, "metrics", "run.prom"), paths.MetricsFile)
	})

	t.Run("absolute metrics file is kept", func(t *testing.T) {
		cfg := Default()
		cfg.Output.Dir = t.TempDir()
		abs := filepath.Join(t.TempDir(), "elsewhere.prom")
		cfg.Telemetry.MetricsFile = abs

		paths, err := GetPaths(cfg)
		require.NoError(t, err)
		assert.Equal(t, abs, paths.MetricsFile)
	})

	t.Run("custom manifest name", func(t *testing.T) {
		cfg := Default()
		cfg.Output.Dir = t.TempDir()
		cfg.Manifest.FileName = "panels.xlsx"

		paths, err := GetPaths(cfg)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfg.Output.Dir, "panels.xlsx"), paths.ManifestXLSX)
	})
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Output.Dir = filepath.Join(root, "a", "b")
	cfg.Telemetry.MetricsFile = filepath.Join(root, "m", "run.prom")

	paths, err := GetPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, paths.OutputDir)
	assert.DirExists(t, filepath.Join(root, "m"))

	// Idempotent
	require.NoError(t, paths.EnsureDirectories())
}

func TestScriptRelative(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = t.TempDir()
	paths, err := GetPaths(cfg)
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"dataset in output dir", paths.DatasetCSV, "test_datasets.csv"},
		{"results in output dir", paths.ResultsCSV, "swindex_results.csv"},
		{"nested file keeps full path", filepath.Join(paths.OutputDir, "sub", "x.csv"), filepath.ToSlash(filepath.Join(paths.OutputDir, "sub", "x.csv"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paths.ScriptRelative(tt.path))
		})
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))

	assert.True(t, FileExists(existing))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))
}

func TestLogPathResolution(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := Default()
	cfg.Output.Dir = t.TempDir()
	paths, err := GetPaths(cfg)
	require.NoError(t, err)

	paths.LogPathResolution(logger)

	out := buf.String()
	assert.Contains(t, out, "Path resolution summary")
	assert.Contains(t, out, "outputs.dataset_csv=")
	assert.Contains(t, out, "reference_tool_outputs.results_csv=")
}
