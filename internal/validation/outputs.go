package validation

import (
	"context"
	"strings"

	"icwfixtures/internal/config"
	"icwfixtures/pkg/contracts/domain"
)

// ValidateOutputs checks the dataset and the do-file found under paths and
// merges both sets of findings into one report. A manifest workbook next to
// them is checked too when one exists.
func (v *FixtureValidator) ValidateOutputs(ctx context.Context, paths *config.Paths, exp Expectations) (*Report, error) {
	files := NewFileValidator(v.logger)
	if err := files.ValidateCSVFile(paths.DatasetCSV); err != nil {
		return nil, err
	}
	if err := files.ValidateFile(paths.ScriptFile); err != nil {
		return nil, err
	}

	report, err := v.ValidateDataset(ctx, paths.DatasetCSV, exp)
	if err != nil {
		return nil, err
	}

	header := report.Header
	if header == nil {
		header = exp.Schema().Header()
	}

	scriptViolations, err := v.ValidateScript(ctx, paths.ScriptFile, ScriptExpectations{
		DatasetFile:   paths.ScriptRelative(paths.DatasetCSV),
		Header:        header,
		FeaturePrefix: exp.FeaturePrefix,
		ResultFiles: []string{
			paths.ScriptRelative(paths.ResultsCSV),
			paths.ScriptRelative(paths.NormByResultsCSV),
		},
		ResultHeader: strings.Join(domain.ResultHeader(), ","),
	})
	if err != nil {
		return nil, err
	}

	report.ScriptPath = paths.ScriptFile
	report.Violations = append(report.Violations, scriptViolations...)

	if config.FileExists(paths.ManifestXLSX) {
		manifestViolations, err := v.ValidateManifest(ctx, paths.ManifestXLSX, ManifestExpectations{
			DatasetFile: paths.ScriptRelative(paths.DatasetCSV),
			Panels:      report.Panels,
		})
		if err != nil {
			return nil, err
		}
		report.ManifestPath = paths.ManifestXLSX
		report.Violations = append(report.Violations, manifestViolations...)
	}
	return report, nil
}
