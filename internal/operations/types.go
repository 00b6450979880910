package operations

import (
	"time"
)

// Step identifiers
const (
	StepIDSynthesize    = "synthesize"
	StepIDWriteDataset  = "write-dataset"
	StepIDEmitScript    = "emit-script"
	StepIDWriteManifest = "write-manifest"
)

// Step names
const (
	StepNameSynthesize    = "Dataset Synthesis"
	StepNameWriteDataset  = "Dataset Serialization"
	StepNameEmitScript    = "Verification Script"
	StepNameWriteManifest = "Panel Manifest"
)

// Context keys for run state
const (
	ContextKeyDataset       = "dataset"
	ContextKeyDatasetResult = "dataset_result"
	ContextKeyScriptResult  = "script_result"
	ContextKeyManifestPath  = "manifest_path"
)

// Default timeouts
const (
	DefaultStepTimeout       = 5 * time.Minute
	DefaultSynthesizeTimeout = 2 * time.Minute
)

// StepExecution is the outcome of one step in a RunSummary
type StepExecution struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// RunSummary describes a finished run
type RunSummary struct {
	RunID    string          `json:"run_id"`
	Status   RunStatus       `json:"status"`
	Duration time.Duration   `json:"duration"`
	Steps    []StepExecution `json:"steps"`
	Outputs  []string        `json:"outputs"`
	Error    string          `json:"error,omitempty"`
}

// Step returns the execution record of the given step
func (s *RunSummary) Step(id string) (StepExecution, bool) {
	for _, exec := range s.Steps {
		if exec.ID == id {
			return exec, true
		}
	}
	return StepExecution{}, false
}
