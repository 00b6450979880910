package operations

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"icwfixtures/internal/exporter"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/internal/manifest"
	"icwfixtures/internal/rng"
	"icwfixtures/internal/script"
	"icwfixtures/internal/synth"
)

// SynthesizeStep draws the combined dataset from a fresh seeded stream
type SynthesizeStep struct {
	BaseStep
	synth *synth.Synthesizer
}

// NewSynthesizeStep creates the generation step
func NewSynthesizeStep(s *synth.Synthesizer) *SynthesizeStep {
	return &SynthesizeStep{
		BaseStep: NewBaseStep(StepIDSynthesize, StepNameSynthesize),
		synth:    s,
	}
}

// Validate checks the generation parameters
func (s *SynthesizeStep) Validate(state *RunState) error {
	return s.synth.Params().Validate()
}

// Execute generates the dataset and stores it in the run context
func (s *SynthesizeStep) Execute(ctx context.Context, state *RunState) error {
	params := s.synth.Params()
	src := rng.New(params.Seed)

	ds, err := s.synth.Generate(ctx, src)
	if err != nil {
		return err
	}

	infrastructure.SetSpanAttributes(ctx,
		attribute.Int64("synth.seed", int64(params.Seed)),
		attribute.Int("synth.panels", len(ds.Panels)),
		attribute.Int("synth.rows", ds.Rows()),
	)
	state.GetStep(s.ID()).SetMetadata("rows", ds.Rows())
	state.SetContext(ContextKeyDataset, ds)
	return nil
}

// WriteDatasetStep serializes the dataset to the delimited-text file
type WriteDatasetStep struct {
	BaseStep
	writer *exporter.DatasetWriter
	path   string
}

// NewWriteDatasetStep creates the serialization step
func NewWriteDatasetStep(writer *exporter.DatasetWriter, path string) *WriteDatasetStep {
	return &WriteDatasetStep{
		BaseStep: NewBaseStep(StepIDWriteDataset, StepNameWriteDataset),
		writer:   writer,
		path:     path,
	}
}

// Validate requires a generated dataset
func (s *WriteDatasetStep) Validate(state *RunState) error {
	if _, ok := state.Dataset(); !ok {
		return fmt.Errorf("no dataset has been generated")
	}
	return nil
}

// Execute writes the file, replacing any previous one
func (s *WriteDatasetStep) Execute(ctx context.Context, state *RunState) error {
	ds, _ := state.Dataset()

	result, err := s.writer.WriteDataset(ctx, s.path, ds)
	if err != nil {
		return err
	}

	infrastructure.SetSpanAttributes(ctx,
		attribute.String("output.path", result.Path),
		attribute.Int64("output.bytes", result.Bytes),
	)
	state.GetStep(s.ID()).SetMetadata("bytes", result.Bytes)
	state.SetContext(ContextKeyDatasetResult, result)
	state.AddOutput(result.Path)
	return nil
}

// EmitScriptStep writes the do-file that reads the dataset
type EmitScriptStep struct {
	BaseStep
	emitter *script.Emitter
	path    string
	params  script.Params
}

// NewEmitScriptStep creates the script step
func NewEmitScriptStep(emitter *script.Emitter, path string, params script.Params) *EmitScriptStep {
	return &EmitScriptStep{
		BaseStep: NewBaseStep(StepIDEmitScript, StepNameEmitScript),
		emitter:  emitter,
		path:     path,
		params:   params,
	}
}

// Validate requires the dataset file the script loads to be written
func (s *EmitScriptStep) Validate(state *RunState) error {
	if _, ok := state.DatasetResult(); !ok {
		return fmt.Errorf("dataset file has not been written")
	}
	return s.params.Validate()
}

// Execute renders and writes the script
func (s *EmitScriptStep) Execute(ctx context.Context, state *RunState) error {
	result, err := s.emitter.Emit(ctx, s.path, s.params)
	if err != nil {
		return err
	}

	infrastructure.SetSpanAttributes(ctx,
		attribute.String("output.path", result.Path),
		attribute.String("script.template_version", result.TemplateVersion),
	)
	state.SetContext(ContextKeyScriptResult, result)
	state.AddOutput(result.Path)
	return nil
}

// WriteManifestStep records where each panel sits in the dataset file
type WriteManifestStep struct {
	BaseStep
	writer *manifest.Writer
	path   string
	run    manifest.RunInfo
}

// NewWriteManifestStep creates the manifest step
func NewWriteManifestStep(writer *manifest.Writer, path string, run manifest.RunInfo) *WriteManifestStep {
	return &WriteManifestStep{
		BaseStep: NewBaseStep(StepIDWriteManifest, StepNameWriteManifest),
		writer:   writer,
		path:     path,
		run:      run,
	}
}

// Validate requires both fixture files to be written
func (s *WriteManifestStep) Validate(state *RunState) error {
	if _, ok := state.DatasetResult(); !ok {
		return fmt.Errorf("dataset file has not been written")
	}
	if _, ok := state.ScriptResult(); !ok {
		return fmt.Errorf("script has not been written")
	}
	return nil
}

// Execute writes the workbook
func (s *WriteManifestStep) Execute(ctx context.Context, state *RunState) error {
	ds, ok := state.Dataset()
	if !ok {
		return fmt.Errorf("no dataset in run state")
	}

	m := &manifest.Manifest{
		Run:    s.run,
		Panels: exporter.SummarizePanels(ds),
	}
	if err := s.writer.Write(ctx, s.path, m); err != nil {
		return err
	}

	state.SetContext(ContextKeyManifestPath, s.path)
	state.AddOutput(s.path)
	return nil
}
