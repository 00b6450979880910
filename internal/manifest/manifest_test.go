package manifest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/exporter"
	"icwfixtures/internal/shared/testutil"
)

func sampleManifest() *Manifest {
	return &Manifest{
		Run: RunInfo{
			Seed:            42,
			Panels:          2,
			Vars:            5,
			MinObs:          500,
			MaxObs:          2000,
			ControlFloor:    100,
			FloatStyle:      "shortest",
			TemplateVersion: "1",
			DatasetFile:     "test_datasets.csv",
			ScriptFile:      "run_swindex.do",
			Generator:       "icwfixtures v1.0.0",
		},
		Panels: []exporter.PanelSummary{
			{DatasetID: 0, NObs: 1626, NControl: 813, NTreat: 813, FirstRow: 1, LastRow: 1626},
			{DatasetID: 1, NObs: 616, NControl: 308, NTreat: 308, FirstRow: 1627, LastRow: 2242},
		},
	}
}

func TestWriteAndReadPanels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	m := sampleManifest()

	logger, handler := testutil.NewTestLogger(t)
	require.NoError(t, NewWriter(logger).Write(context.Background(), path, m))
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Manifest written")
	testutil.AssertLogAttr(t, handler, "component", "manifest")

	panels, err := ReadPanels(path)
	require.NoError(t, err)
	assert.Equal(t, m.Panels, panels)

	run, err := ReadRun(path)
	require.NoError(t, err)
	assert.Equal(t, "42", run["seed"])
	assert.Equal(t, "2000", run["max_obs"])
	assert.Equal(t, "shortest", run["float_style"])
	assert.Equal(t, "run_swindex.do", run["script_file"])
	assert.Equal(t, "1", run["template_version"])
	assert.Equal(t, "icwfixtures v1.0.0", run["generator"])
}

func TestWrite_SheetLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	require.NoError(t, NewWriter(nil).Write(context.Background(), path, sampleManifest()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPanels, SheetRun}, f.GetSheetList())

	rows, err := f.GetRows(SheetPanels)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exporter.SummaryHeaders(), rows[0])
	assert.Equal(t, []string{"1", "616", "308", "308", "1627", "2242"}, rows[2])
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))

	require.NoError(t, NewWriter(nil).Write(context.Background(), path, sampleManifest()))
	panels, err := ReadPanels(path)
	require.NoError(t, err)
	assert.Len(t, panels, 2)
}

func TestWrite_StorageError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := NewWriter(nil).Write(context.Background(), filepath.Join(blocker, "m.xlsx"), sampleManifest())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestReadPanels_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadPanels(filepath.Join(dir, "absent.xlsx"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})

	t.Run("non-integer cell", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), SheetPanels))
		require.NoError(t, f.SetSheetRow(SheetPanels, "A1", &[]interface{}{"dataset_id", "n_obs", "n_control", "n_treat", "first_row", "last_row"}))
		require.NoError(t, f.SetSheetRow(SheetPanels, "A2", &[]interface{}{0, "many", 1, 1, 1, 2}))
		path := filepath.Join(dir, "bad.xlsx")
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		_, err := ReadPanels(path)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		assert.Contains(t, err.Error(), "not an integer")
	})

	t.Run("short row", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), SheetPanels))
		require.NoError(t, f.SetSheetRow(SheetPanels, "A1", &[]interface{}{"dataset_id"}))
		require.NoError(t, f.SetSheetRow(SheetPanels, "A2", &[]interface{}{0, 5}))
		path := filepath.Join(dir, "short.xlsx")
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		_, err := ReadPanels(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want 6")
	})
}
