package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"

	apperrors "icwfixtures/internal/errors"
	"icwfixtures/pkg/contracts/domain"
)

var (
	importRe     = regexp.MustCompile(`(?m)^import delimited "([^"]*)"`)
	controlGenRe = regexp.MustCompile(`(?m)^gen (\w+) = \((\w+) == 0\)`)
	normbyRe     = regexp.MustCompile(`normby\((\w+)\)`)
	levelsofRe   = regexp.MustCompile(`levelsof (\w+),`)
	keepRe       = regexp.MustCompile(`keep if (\w+) ==`)
	dsRe         = regexp.MustCompile(`(?m)^\s*ds (\w+)\*`)
	obsRe        = regexp.MustCompile(`local obs = (\w+)\[`)
	fileOpenRe   = regexp.MustCompile(`file open (\w+) using "([^"]*)"`)
	headerRe     = regexp.MustCompile("file write (\\w+) \"([^\"`]*)\" _n")
	swindexRe    = regexp.MustCompile(`capture swindex [^\n]*generate\((\w+)\)`)
)

// ScriptExpectations names what the do-file must refer to
type ScriptExpectations struct {
	DatasetFile   string   // as the script sees it from its own directory
	Header        []string // header actually present in the dataset
	FeaturePrefix string
	ResultFiles   []string
	ResultHeader  string
}

// ValidateScript reads the do-file at path and checks that it matches the dataset
func (v *FixtureValidator) ValidateScript(ctx context.Context, path string, exp ScriptExpectations) ([]Violation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read script", err).WithContext("path", path)
	}

	violations := CheckScript(string(data), exp)
	v.record(ctx, violations)
	v.logger.InfoContext(ctx, "Script validated",
		slog.String("path", path),
		slog.Int("violations", len(violations)))
	return violations, nil
}

// CheckScript returns every way text disagrees with exp
func CheckScript(text string, exp ScriptExpectations) []Violation {
	var out []Violation
	add := func(format string, args ...any) {
		out = append(out, Violation{Rule: RuleConsistency, DatasetID: -1, Message: fmt.Sprintf(format, args...)})
	}
	inHeader := func(col string) bool {
		return slices.Contains(exp.Header, col)
	}
	checkColumn := func(what, got, want string) {
		if got != want {
			add("%s uses column %q, want %q", what, got, want)
		} else if !inHeader(got) {
			add("%s uses column %q which the dataset does not have", what, got)
		}
	}

	imports := importRe.FindAllStringSubmatch(text, -1)
	switch {
	case len(imports) != 1:
		add("script imports %d files, want 1", len(imports))
	case imports[0][1] != exp.DatasetFile:
		add("script imports %q, want %q", imports[0][1], exp.DatasetFile)
	}

	controlCol := ""
	if gens := controlGenRe.FindAllStringSubmatch(text, -1); len(gens) != 1 {
		add("script derives %d control indicators, want 1", len(gens))
	} else {
		controlCol = gens[0][1]
		checkColumn("control indicator", gens[0][2], domain.ColumnTreatStatus)
		if inHeader(controlCol) {
			add("control indicator %q overwrites a dataset column", controlCol)
		}
	}

	normby := normbyRe.FindAllStringSubmatch(text, -1)
	if len(normby) == 0 {
		add("script never normalises by the control group")
	}
	for _, m := range normby {
		if controlCol != "" && m[1] != controlCol {
			add("normby uses %q, want %q", m[1], controlCol)
		}
	}

	if levels := levelsofRe.FindAllStringSubmatch(text, -1); len(levels) != 1 {
		add("script iterates %d panel columns, want 1", len(levels))
	} else {
		checkColumn("panel loop", levels[0][1], domain.ColumnDatasetID)
	}
	for _, m := range keepRe.FindAllStringSubmatch(text, -1) {
		checkColumn("panel selection", m[1], domain.ColumnDatasetID)
	}

	if ds := dsRe.FindAllStringSubmatch(text, -1); len(ds) != 1 {
		add("script selects features %d times, want 1", len(ds))
	} else {
		prefix := ds[0][1]
		if prefix != exp.FeaturePrefix {
			add("feature selection uses prefix %q, want %q", prefix, exp.FeaturePrefix)
		}
		features := 0
		for _, col := range exp.Header {
			if strings.HasPrefix(col, prefix) {
				features++
			}
		}
		if features == 0 {
			add("feature prefix %q matches no dataset column", prefix)
		}
	}

	obs := obsRe.FindAllStringSubmatch(text, -1)
	if len(obs) == 0 {
		add("script never writes obs_id")
	}
	for _, m := range obs {
		checkColumn("result rows", m[1], domain.ColumnObsID)
	}

	if calls := swindexRe.FindAllStringSubmatch(text, -1); len(calls) != len(exp.ResultFiles) {
		add("script runs swindex %d times, want %d", len(calls), len(exp.ResultFiles))
	}

	handles := make(map[string]bool)
	var opened []string
	for _, m := range fileOpenRe.FindAllStringSubmatch(text, -1) {
		handles[m[1]] = true
		opened = append(opened, m[2])
	}
	slices.Sort(opened)
	want := slices.Clone(exp.ResultFiles)
	slices.Sort(want)
	if !slices.Equal(opened, want) {
		add("script writes %v, want %v", opened, want)
	}

	headers := headerRe.FindAllStringSubmatch(text, -1)
	if len(headers) != len(exp.ResultFiles) {
		add("script writes %d result headers, want %d", len(headers), len(exp.ResultFiles))
	}
	for _, m := range headers {
		if !handles[m[1]] {
			add("header written to unopened file handle %q", m[1])
		}
		if m[2] != exp.ResultHeader {
			add("result header is %q, want %q", m[2], exp.ResultHeader)
		}
	}

	return out
}
