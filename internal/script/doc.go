// Package script emits the Stata do-file that computes the reference index
// for every panel of the fixture dataset.
//
// The script loads the dataset, derives a control indicator from the
// treatment column and, for each dataset_id, runs swindex twice: once on the
// full panel and once normalised by the control group. A panel whose index
// fails (_rc != 0) is skipped without aborting the loop. Results go to two
// files with the header dataset_id,obs_id,index_value.
//
// The text lives in templates/run_swindex.do.tmpl. Rendering DefaultParams
// reproduces the reference run_swindex.do byte for byte.
package script
