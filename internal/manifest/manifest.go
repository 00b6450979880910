// Package manifest writes an optional Excel workbook describing a generated
// fixture set: one row per panel with its row range in the dataset file, and
// the run parameters needed to regenerate it.
package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/exporter"
	"icwfixtures/internal/infrastructure"
)

const (
	SheetPanels = "panels"
	SheetRun    = "run"
)

// RunInfo records how a fixture set was produced
type RunInfo struct {
	Seed            uint32
	Panels          int
	Vars            int
	MinObs          int
	MaxObs          int
	ControlFloor    int
	FloatStyle      string
	TemplateVersion string
	DatasetFile     string
	ScriptFile      string
	Generator       string
}

// Manifest is the workbook content
type Manifest struct {
	Run    RunInfo
	Panels []exporter.PanelSummary
}

// Writer saves manifests
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a manifest writer
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: infrastructure.WithComponent(logger, "manifest")}
}

// Write saves m to path, replacing any existing workbook
func (w *Writer) Write(ctx context.Context, path string, m *Manifest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetPanels); err != nil {
		return apperrors.NewStorageError("failed to name panels sheet", err)
	}

	header := exporter.SummaryHeaders()
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetPanels, "A1", &headerRow); err != nil {
		return apperrors.NewStorageError("failed to write panels header", err)
	}

	for i, p := range m.Panels {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("invalid panels cell", err)
		}
		row := []interface{}{p.DatasetID, p.NObs, p.NControl, p.NTreat, p.FirstRow, p.LastRow}
		if err := f.SetSheetRow(SheetPanels, cell, &row); err != nil {
			return apperrors.NewStorageError("failed to write panel row", err).
				WithContext("dataset_id", p.DatasetID)
		}
	}

	if _, err := f.NewSheet(SheetRun); err != nil {
		return apperrors.NewStorageError("failed to create run sheet", err)
	}
	for i, kv := range runRows(m.Run) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.NewStorageError("invalid run cell", err)
		}
		row := []interface{}{kv.key, kv.value}
		if err := f.SetSheetRow(SheetRun, cell, &row); err != nil {
			return apperrors.NewStorageError("failed to write run row", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save manifest", err).
			WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "Manifest written",
		slog.String("path", path),
		slog.Int("panels", len(m.Panels)))
	return nil
}

type runRow struct {
	key   string
	value interface{}
}

func runRows(r RunInfo) []runRow {
	return []runRow{
		{"seed", int64(r.Seed)},
		{"panels", r.Panels},
		{"vars", r.Vars},
		{"min_obs", r.MinObs},
		{"max_obs", r.MaxObs},
		{"control_floor", r.ControlFloor},
		{"float_style", r.FloatStyle},
		{"template_version", r.TemplateVersion},
		{"dataset_file", r.DatasetFile},
		{"script_file", r.ScriptFile},
		{"generator", r.Generator},
	}
}

// ReadPanels reads the panel rows back from a manifest workbook
func ReadPanels(path string) ([]exporter.PanelSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open manifest", err).WithContext("path", path)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetPanels)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read panels sheet", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("panels sheet is empty")
	}

	summaries := make([]exporter.PanelSummary, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 6 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("panels row %d has %d cells, want 6", i+2, len(row)))
		}
		vals := make([]int, 6)
		for j := range vals {
			v, err := strconv.Atoi(row[j])
			if err != nil {
				return nil, apperrors.NewValidationError(fmt.Sprintf("panels row %d column %d is not an integer: %q", i+2, j+1, row[j]))
			}
			vals[j] = v
		}
		summaries = append(summaries, exporter.PanelSummary{
			DatasetID: vals[0],
			NObs:      vals[1],
			NControl:  vals[2],
			NTreat:    vals[3],
			FirstRow:  vals[4],
			LastRow:   vals[5],
		})
	}
	return summaries, nil
}

// ReadRun reads the run sheet back as key/value pairs
func ReadRun(path string) (map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open manifest", err).WithContext("path", path)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetRun)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read run sheet", err)
	}

	run := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) >= 2 {
			run[row[0]] = row[1]
		}
	}
	return run, nil
}
