// Package operations runs a fixture build as a fixed sequence of steps:
// synthesize the dataset, write it, emit the verification script and,
// when enabled, write the panel manifest.
//
// Manager executes the steps of a Registry strictly in registration order.
// Each step first validates that the data it consumes is already in the
// RunState, then executes under its own span and timeout. The first failure
// stops the run and leaves the remaining steps skipped; files written by
// earlier steps are not removed.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	registry.Register(operations.NewSynthesizeStep(s))
//	registry.Register(operations.NewWriteDatasetStep(w, paths.DatasetCSV))
//	registry.Register(operations.NewEmitScriptStep(e, paths.ScriptFile, script.DefaultParams()))
//
//	manager := operations.NewManager(registry, operations.NewConfig(),
//		operations.WithLogger(logger),
//		operations.WithTracer(operations.NewOperationTracer(providers)))
//	summary, err := manager.Run(ctx, "")
package operations
