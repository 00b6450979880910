// Package config provides centralized configuration for the fixture generator.
//
// # Generation constants
//
// Seed, panel count, panel-size bounds, the control floor and the output file
// names live in constants.go. They define the fixture contract shared with the
// reference tooling and are not configurable.
//
// # Configuration Sources
//
// Ambient settings (logging, output directory, float rendering, telemetry,
// manifest) are loaded in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. fixturegen.yaml or configs/fixturegen.yaml (or ICW_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables use the ICW_ prefix:
//
//	ICW_LOGGING_LEVEL=debug
//	ICW_LOGGING_OUTPUT=both
//	ICW_OUTPUT_DIR=fixtures
//	ICW_OUTPUT_FLOAT_STYLE=fixed
//	ICW_TELEMETRY_TRACE_EXPORTER=stdout
//	ICW_TELEMETRY_METRICS_FILE=fixturegen.prom
//	ICW_MANIFEST_ENABLED=true
//
// None of them is required; an empty environment reproduces the reference
// fixtures byte for byte.
//
// # Paths
//
// GetPaths resolves every output file under the output directory:
//
//	paths, err := config.GetPaths(cfg)
//	csvPath := paths.DatasetCSV
package config
