// Package shared holds helpers used by more than one package that belong
// to no single component.
//
// # Test Utilities
//
// The testutil subpackage provides a slog handler that buffers records so
// tests can assert on messages and attributes:
//
//	logger, handler := testutil.NewTestLogger(t)
//	w := exporter.NewDatasetWriter(csv, exporter.FloatStyleShortest, logger, nil)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Dataset written")
//	testutil.AssertLogAttr(t, handler, "component", "exporter")
//
// Attributes added with Logger.With are flattened into every record, so
// component tags set in constructors are visible to assertions.
package shared
