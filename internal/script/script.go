package script

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"icwfixtures/internal/config"
	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/pkg/contracts/domain"
)

// TemplateVersion identifies the do-file template. Bump it whenever the
// rendered text changes so downstream comparisons know which script
// produced a result file.
const TemplateVersion = "1"

const templateName = "run_swindex.do.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

var doFileTemplate = template.Must(template.New(templateName).
	Option("missingkey=error").
	ParseFS(templateFS, "templates/"+templateName))

// Params are the names the do-file refers to
type Params struct {
	DatasetFile       string
	ResultsFile       string
	NormByResultsFile string
	ResultHeader      string
	DatasetIDColumn   string
	ObsIDColumn       string
	TreatStatusColumn string
	ControlColumn     string
	FeaturePrefix     string
}

// DefaultParams returns the names used by the reference fixtures
func DefaultParams() Params {
	return Params{
		DatasetFile:       config.DatasetFileName,
		ResultsFile:       config.ResultsFileName,
		NormByResultsFile: config.NormByResultsFile,
		ResultHeader:      strings.Join(domain.ResultHeader(), ","),
		DatasetIDColumn:   domain.ColumnDatasetID,
		ObsIDColumn:       domain.ColumnObsID,
		TreatStatusColumn: domain.ColumnTreatStatus,
		ControlColumn:     domain.ColumnControl,
		FeaturePrefix:     domain.DefaultFeaturePrefix,
	}
}

// Validate rejects values that would break the generated Stata code
func (p Params) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"dataset file", p.DatasetFile},
		{"results file", p.ResultsFile},
		{"normby results file", p.NormByResultsFile},
		{"result header", p.ResultHeader},
		{"dataset id column", p.DatasetIDColumn},
		{"obs id column", p.ObsIDColumn},
		{"treat status column", p.TreatStatusColumn},
		{"control column", p.ControlColumn},
		{"feature prefix", p.FeaturePrefix},
	}
	for _, f := range fields {
		if f.value == "" {
			return apperrors.NewTemplateError(f.name+" is empty", nil)
		}
		if strings.ContainsAny(f.value, "\"\r\n`'") {
			return apperrors.NewTemplateError(fmt.Sprintf("%s %q contains characters Stata cannot take inside a string", f.name, f.value), nil)
		}
	}
	if p.ResultsFile == p.NormByResultsFile {
		return apperrors.NewTemplateError("both result files have the same name", nil).
			WithContext("file", p.ResultsFile)
	}
	return nil
}

// Render writes the do-file for p to w
func Render(w io.Writer, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := doFileTemplate.Execute(w, p); err != nil {
		return apperrors.NewTemplateError("failed to render do-file", err)
	}
	return nil
}

// EmitResult describes a written script
type EmitResult struct {
	Path            string
	Bytes           int64
	TemplateVersion string
}

// Emitter writes the verification script
type Emitter struct {
	logger  *slog.Logger
	metrics *infrastructure.FixtureMetrics
}

// NewEmitter creates an emitter
func NewEmitter(logger *slog.Logger, metrics *infrastructure.FixtureMetrics) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		logger:  infrastructure.WithComponent(logger, "script"),
		metrics: metrics,
	}
}

// Emit renders the script and writes it to path, replacing any existing file
func (e *Emitter) Emit(ctx context.Context, path string, p Params) (*EmitResult, error) {
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create script directory", err).
			WithContext("path", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, apperrors.NewStorageError("failed to write script", err).
			WithContext("path", path)
	}

	result := &EmitResult{
		Path:            path,
		Bytes:           int64(buf.Len()),
		TemplateVersion: TemplateVersion,
	}

	if e.metrics != nil {
		e.metrics.BytesWritten.Add(ctx, result.Bytes)
	}

	e.logger.InfoContext(ctx, "Script written",
		slog.String("path", path),
		slog.Int64("bytes", result.Bytes),
		slog.String("template_version", TemplateVersion))

	return result, nil
}
