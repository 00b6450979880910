package validation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/exporter"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/internal/synth"
	"icwfixtures/pkg/contracts/domain"
)

// Rules reported in a Violation
const (
	RuleFormat      = "format"
	RuleHeader      = "header"
	RulePanelCount  = "panel_count"
	RuleUniqueness  = "uniqueness"
	RuleContiguity  = "contiguity"
	RuleBounds      = "bounds"
	RuleBalance     = "balance"
	RulePrecision   = "precision"
	RuleLabels      = "labels"
	RuleConsistency = "script_consistency"
)

// maxRowViolations caps per-row findings of one rule inside one panel
const maxRowViolations = 3

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Expectations is what a fixture set must look like
type Expectations struct {
	Panels        int
	Vars          int
	MinObs        int
	MaxObs        int // exclusive
	ControlFloor  int
	FeaturePrefix string
}

// ExpectationsFor derives the expectations of a dataset generated with p
func ExpectationsFor(p synth.Params) Expectations {
	return Expectations{
		Panels:        p.Panels,
		Vars:          p.Vars,
		MinObs:        p.MinObs,
		MaxObs:        p.MaxObs,
		ControlFloor:  p.ControlFloor,
		FeaturePrefix: domain.DefaultFeaturePrefix,
	}
}

// Schema returns the column layout the dataset must have
func (e Expectations) Schema() domain.Schema {
	return domain.Schema{FeaturePrefix: e.FeaturePrefix, NVars: e.Vars}
}

// Violation is one broken fixture property
type Violation struct {
	Rule      string
	DatasetID int // -1 when the finding is not about one panel
	Row       int // 1-based data row, 0 when not about one row
	Message   string
}

func (v Violation) String() string {
	switch {
	case v.Row > 0:
		return fmt.Sprintf("[%s] dataset %d row %d: %s", v.Rule, v.DatasetID, v.Row, v.Message)
	case v.DatasetID >= 0:
		return fmt.Sprintf("[%s] dataset %d: %s", v.Rule, v.DatasetID, v.Message)
	default:
		return fmt.Sprintf("[%s] %s", v.Rule, v.Message)
	}
}

// Report is the outcome of a dataset check
type Report struct {
	DatasetPath  string
	ScriptPath   string
	ManifestPath string // empty when no manifest was checked
	Header       []string
	Rows         int
	Panels       []exporter.PanelSummary
	Violations   []Violation
}

// Passed reports whether no violation was found
func (r *Report) Passed() bool {
	return len(r.Violations) == 0
}

// panelBlock holds the raw rows of one dataset_id in file order
type panelBlock struct {
	datasetID int
	firstRow  int
	lastRow   int
	obsIDs    []int
	rows      []int
	labels    []string
	features  [][]string
}

// FixtureValidator re-reads generated fixtures and checks their invariants
type FixtureValidator struct {
	logger  *slog.Logger
	metrics *infrastructure.FixtureMetrics
	workers int
}

// Option configures a FixtureValidator
type Option func(*FixtureValidator)

// WithWorkers bounds the number of panels checked at once
func WithWorkers(n int) Option {
	return func(v *FixtureValidator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// WithMetrics counts violations on m
func WithMetrics(m *infrastructure.FixtureMetrics) Option {
	return func(v *FixtureValidator) {
		v.metrics = m
	}
}

// NewFixtureValidator creates a validator
func NewFixtureValidator(logger *slog.Logger, opts ...Option) *FixtureValidator {
	if logger == nil {
		logger = slog.Default()
	}
	v := &FixtureValidator{
		logger:  infrastructure.WithComponent(logger, "validation"),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateDataset reads the dataset at path and checks every fixture property.
// Broken properties are returned in the report; the error is reserved for
// files that cannot be read and for cancellation.
func (v *FixtureValidator) ValidateDataset(ctx context.Context, path string, exp Expectations) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open dataset", err).WithContext("path", path)
	}
	defer file.Close()

	report := &Report{DatasetPath: path}
	blocks, err := v.readBlocks(file, exp, report)
	if err != nil {
		return nil, err
	}

	checkPanelOrder(blocks, exp, report)

	summaries := make([]exporter.PanelSummary, len(blocks))
	findings := make([][]Violation, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, b := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summaries[i], findings[i] = checkPanel(b, exp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "validation cancelled", err)
	}

	report.Panels = summaries
	for _, f := range findings {
		report.Violations = append(report.Violations, f...)
	}

	v.record(ctx, report.Violations)
	v.logger.InfoContext(ctx, "Dataset validated",
		slog.String("path", path),
		slog.Int("rows", report.Rows),
		slog.Int("panels", len(report.Panels)),
		slog.Int("violations", len(report.Violations)))

	return report, nil
}

// readBlocks groups the data rows by dataset_id, keeping first-seen order
func (v *FixtureValidator) readBlocks(r io.Reader, exp Expectations, report *Report) ([]*panelBlock, error) {
	br := bufio.NewReader(r)
	if prefix, _ := br.Peek(len(utf8BOM)); bytes.Equal(prefix, utf8BOM) {
		report.Violations = append(report.Violations, Violation{Rule: RuleFormat, DatasetID: -1, Message: "file starts with a byte order mark"})
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		report.Violations = append(report.Violations, Violation{Rule: RuleHeader, DatasetID: -1, Message: "file is empty"})
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read dataset header", err)
	}
	report.Header = header

	want := exp.Schema().Header()
	if !slices.Equal(header, want) {
		report.Violations = append(report.Violations, Violation{
			Rule:      RuleHeader,
			DatasetID: -1,
			Message:   fmt.Sprintf("header is %v, want %v", header, want),
		})
		// Without the expected layout no column can be located
		return nil, nil
	}

	idCol, obsCol, labelCol := exp.Vars, exp.Vars+1, exp.Vars+2

	var blocks []*panelBlock
	byID := make(map[int]*panelBlock)
	var current *panelBlock

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewStorageError("failed to read dataset row", err).WithContext("row", row)
		}
		report.Rows++

		if len(record) != len(want) {
			report.Violations = append(report.Violations, Violation{
				Rule: RuleFormat, DatasetID: -1, Row: row,
				Message: fmt.Sprintf("row has %d fields, want %d", len(record), len(want)),
			})
			continue
		}

		datasetID, err := strconv.Atoi(record[idCol])
		if err != nil {
			report.Violations = append(report.Violations, Violation{
				Rule: RuleFormat, DatasetID: -1, Row: row,
				Message: fmt.Sprintf("dataset_id %q is not an integer", record[idCol]),
			})
			continue
		}
		obsID, err := strconv.Atoi(record[obsCol])
		if err != nil {
			report.Violations = append(report.Violations, Violation{
				Rule: RuleFormat, DatasetID: datasetID, Row: row,
				Message: fmt.Sprintf("obs_id %q is not an integer", record[obsCol]),
			})
			continue
		}

		if current == nil || current.datasetID != datasetID {
			if existing, ok := byID[datasetID]; ok {
				report.Violations = append(report.Violations, Violation{
					Rule: RuleUniqueness, DatasetID: datasetID, Row: row,
					Message: "panel rows are split across the file",
				})
				current = existing
			} else {
				current = &panelBlock{datasetID: datasetID, firstRow: row}
				byID[datasetID] = current
				blocks = append(blocks, current)
			}
		}

		current.lastRow = row
		current.obsIDs = append(current.obsIDs, obsID)
		current.rows = append(current.rows, row)
		current.labels = append(current.labels, record[labelCol])
		current.features = append(current.features, record[:exp.Vars])
	}

	return blocks, nil
}

// checkPanelOrder requires dataset_id 0..N-1 in file order
func checkPanelOrder(blocks []*panelBlock, exp Expectations, report *Report) {
	if len(blocks) != exp.Panels {
		report.Violations = append(report.Violations, Violation{
			Rule: RulePanelCount, DatasetID: -1,
			Message: fmt.Sprintf("found %d panels, want %d", len(blocks), exp.Panels),
		})
	}
	for i, b := range blocks {
		if b.datasetID != i {
			report.Violations = append(report.Violations, Violation{
				Rule: RulePanelCount, DatasetID: b.datasetID, Row: b.firstRow,
				Message: fmt.Sprintf("panel at position %d has dataset_id %d", i, b.datasetID),
			})
			return
		}
	}
}

// checkPanel verifies one panel and summarises it
func checkPanel(b *panelBlock, exp Expectations) (exporter.PanelSummary, []Violation) {
	var out []Violation
	add := func(rule string, row int, format string, args ...any) {
		out = append(out, Violation{Rule: rule, DatasetID: b.datasetID, Row: row, Message: fmt.Sprintf(format, args...)})
	}

	nObs := len(b.obsIDs)
	summary := exporter.PanelSummary{
		DatasetID: b.datasetID,
		NObs:      nObs,
		FirstRow:  b.firstRow,
		LastRow:   b.lastRow,
	}

	seen := make(map[int]struct{}, nObs)
	contiguityReported := false
	duplicates := 0
	for i, obsID := range b.obsIDs {
		if _, dup := seen[obsID]; dup {
			if duplicates < maxRowViolations {
				add(RuleUniqueness, b.rows[i], "obs_id %d is repeated", obsID)
			}
			duplicates++
		}
		seen[obsID] = struct{}{}
		if obsID != i && !contiguityReported {
			add(RuleContiguity, b.rows[i], "obs_id is %d, want %d", obsID, i)
			contiguityReported = true
		}
	}

	if nObs < exp.MinObs || nObs >= exp.MaxObs {
		add(RuleBounds, 0, "n_obs %d outside [%d, %d)", nObs, exp.MinObs, exp.MaxObs)
	}

	badLabels := 0
	for i, label := range b.labels {
		switch label {
		case "0":
			summary.NControl++
		case "1":
			summary.NTreat++
		default:
			if badLabels < maxRowViolations {
				add(RuleLabels, b.rows[i], "treat_status %q is not 0 or 1", label)
			}
			badLabels++
		}
	}

	if badLabels == 0 {
		wantControl := synth.ControlCount(nObs, exp.ControlFloor)
		if summary.NControl != wantControl || summary.NTreat != nObs-wantControl {
			add(RuleBalance, 0, "%d control and %d treated, want %d and %d",
				summary.NControl, summary.NTreat, wantControl, nObs-wantControl)
		}
	}

	badValues := 0
	for i, features := range b.features {
		for j, raw := range features {
			value, err := strconv.ParseFloat(raw, 64)
			switch {
			case err != nil:
				if badValues < maxRowViolations {
					add(RuleFormat, b.rows[i], "%s%d value %q is not a number", exp.FeaturePrefix, j+1, raw)
				}
				badValues++
			case value != synth.Round2(value):
				if badValues < maxRowViolations {
					add(RulePrecision, b.rows[i], "%s%d value %s has more than two decimals", exp.FeaturePrefix, j+1, raw)
				}
				badValues++
			}
		}
	}

	return summary, out
}

func (v *FixtureValidator) record(ctx context.Context, violations []Violation) {
	if v.metrics == nil || len(violations) == 0 {
		return
	}
	counts := make(map[string]int64)
	for _, violation := range violations {
		counts[violation.Rule]++
	}
	for rule, n := range counts {
		v.metrics.ValidationFails.Add(ctx, n, metric.WithAttributes(attribute.String("rule", rule)))
	}
}
