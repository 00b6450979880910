// Package performance contains benchmarks for generating, writing and
// validating the reference fixture set.
//
//	go test -bench . -run '^$' ./internal/performance
package performance
