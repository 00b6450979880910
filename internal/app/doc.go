// Package app wires the fixture generator together.
//
// Start-up order:
//
//  1. Load configuration from defaults, fixturegen.yaml and ICW_* variables
//  2. Initialize the slog logger
//  3. Resolve and create the output paths
//  4. Initialize OpenTelemetry (no-op unless configured)
//  5. Register the steps: synthesize, write dataset, emit script, manifest
//
// Usage:
//
//	a, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	defer a.Close(ctx)
//	if _, err := a.Run(ctx); err != nil {
//	    return err
//	}
//	fmt.Println(a.CompletionMessage())
package app
