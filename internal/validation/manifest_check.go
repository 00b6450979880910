package validation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"icwfixtures/internal/exporter"
	"icwfixtures/internal/manifest"
)

// RuleManifest marks disagreements between a manifest workbook and the dataset
const RuleManifest = "manifest"

// ManifestExpectations is what a manifest written for the dataset must record
type ManifestExpectations struct {
	DatasetFile string
	Panels      []exporter.PanelSummary // as found in the dataset
}

// ValidateManifest reads the workbook at path and compares it with the
// panels found in the dataset
func (v *FixtureValidator) ValidateManifest(ctx context.Context, path string, exp ManifestExpectations) ([]Violation, error) {
	recorded, err := manifest.ReadPanels(path)
	if err != nil {
		return nil, err
	}
	run, err := manifest.ReadRun(path)
	if err != nil {
		return nil, err
	}

	violations := CheckManifest(recorded, run, exp)
	v.record(ctx, violations)
	v.logger.InfoContext(ctx, "Manifest validated",
		slog.String("path", path),
		slog.Int("violations", len(violations)))
	return violations, nil
}

// CheckManifest returns every way the recorded panels and run sheet disagree with exp
func CheckManifest(recorded []exporter.PanelSummary, run map[string]string, exp ManifestExpectations) []Violation {
	var out []Violation
	add := func(datasetID int, format string, args ...any) {
		out = append(out, Violation{Rule: RuleManifest, DatasetID: datasetID, Message: fmt.Sprintf(format, args...)})
	}

	if got := run["dataset_file"]; got != exp.DatasetFile {
		add(-1, "manifest describes %q, want %q", got, exp.DatasetFile)
	}
	if got, want := run["panels"], strconv.Itoa(len(exp.Panels)); got != want {
		add(-1, "run sheet records %q panels, dataset has %s", got, want)
	}
	if len(recorded) != len(exp.Panels) {
		add(-1, "manifest lists %d panels, dataset has %d", len(recorded), len(exp.Panels))
	}

	for i := range min(len(recorded), len(exp.Panels)) {
		if got, want := recorded[i], exp.Panels[i]; got != want {
			add(want.DatasetID, "manifest row %v, dataset has %v", got.Row(), want.Row())
		}
	}
	return out
}
