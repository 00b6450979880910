// Package integration holds end-to-end tests that generate the reference
// fixtures and read them back through the validator and the manifest.
// The full run takes a few seconds; it is skipped with -short.
package integration
