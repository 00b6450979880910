package domain

import (
	"strconv"
)

// Column names shared by the dataset writer, the verification script and the validator
const (
	DefaultFeaturePrefix = "var"
	ColumnDatasetID      = "dataset_id"
	ColumnObsID          = "obs_id"
	ColumnTreatStatus    = "treat_status"
	ColumnControl        = "control"
	ColumnIndexValue     = "index_value"
)

// Treatment labels
const (
	TreatStatusControl = 0
	TreatStatusTreated = 1
)

// Observation is a single row of a panel
type Observation struct {
	ObsID       int       `json:"obs_id" validate:"min=0"`
	Features    []float64 `json:"features" validate:"required"`
	TreatStatus int       `json:"treat_status" validate:"oneof=0 1"`
}

// IsControl reports whether the observation belongs to the control group
func (o Observation) IsControl() bool {
	return o.TreatStatus == TreatStatusControl
}

// Panel is one independently generated synthetic dataset
type Panel struct {
	DatasetID    int           `json:"dataset_id" validate:"min=0"`
	NObs         int           `json:"n_obs" validate:"min=1"`
	NControl     int           `json:"n_control"`
	NTreat       int           `json:"n_treat"`
	Observations []Observation `json:"observations"`
}

// ControlIDs returns the obs_id values labelled as control, in obs_id order
func (p Panel) ControlIDs() []int {
	ids := make([]int, 0, p.NControl)
	for _, obs := range p.Observations {
		if obs.IsControl() {
			ids = append(ids, obs.ObsID)
		}
	}
	return ids
}

// Dataset is the panel-order concatenation of every generated panel
type Dataset struct {
	Schema Schema  `json:"schema"`
	Panels []Panel `json:"panels"`
}

// Rows returns the total number of observations across all panels
func (d *Dataset) Rows() int {
	total := 0
	for _, p := range d.Panels {
		total += len(p.Observations)
	}
	return total
}

// Schema describes the on-disk column layout of the combined dataset.
// Feature columns come first, then dataset_id, obs_id, treat_status.
type Schema struct {
	FeaturePrefix string `json:"feature_prefix" validate:"required"`
	NVars         int    `json:"n_vars" validate:"min=1"`
}

// NewSchema returns the schema for nVars feature columns named var1..varK
func NewSchema(nVars int) Schema {
	return Schema{FeaturePrefix: DefaultFeaturePrefix, NVars: nVars}
}

// FeatureColumns returns var1..varK
func (s Schema) FeatureColumns() []string {
	cols := make([]string, s.NVars)
	for i := range cols {
		cols[i] = s.FeaturePrefix + strconv.Itoa(i+1)
	}
	return cols
}

// Header returns the full header row in serialization order
func (s Schema) Header() []string {
	return append(s.FeatureColumns(), ColumnDatasetID, ColumnObsID, ColumnTreatStatus)
}

// ResultHeader is the header row of both index result files written by the script
func ResultHeader() []string {
	return []string{ColumnDatasetID, ColumnObsID, ColumnIndexValue}
}
