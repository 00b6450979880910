// Package validation re-reads generated fixtures and reports every broken
// property: header layout, panel count and order, (dataset_id, obs_id)
// uniqueness, obs_id contiguity, panel size bounds, group balance, two-decimal
// precision and binary labels. Panels are checked concurrently with a bounded
// errgroup; reading the file stays sequential.
//
// CheckScript compares the do-file with the dataset it is meant to load, so a
// fixture whose header and script disagree is caught before the reference
// tool runs.
package validation
