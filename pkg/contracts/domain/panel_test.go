package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanel_ControlIDs(t *testing.T) {
	p := Panel{
		DatasetID: 0,
		NObs:      4,
		NControl:  2,
		NTreat:    2,
		Observations: []Observation{
			{ObsID: 0, TreatStatus: TreatStatusTreated},
			{ObsID: 1, TreatStatus: TreatStatusControl},
			{ObsID: 2, TreatStatus: TreatStatusControl},
			{ObsID: 3, TreatStatus: TreatStatusTreated},
		},
	}

	assert.Equal(t, []int{1, 2}, p.ControlIDs())
	assert.True(t, p.Observations[1].IsControl())
	assert.False(t, p.Observations[0].IsControl())
}

func TestDataset_Rows(t *testing.T) {
	ds := &Dataset{
		Schema: NewSchema(1),
		Panels: []Panel{
			{Observations: make([]Observation, 3)},
			{Observations: make([]Observation, 5)},
		},
	}
	assert.Equal(t, 8, ds.Rows())
	assert.Equal(t, 0, (&Dataset{}).Rows())
}

func TestSchema_Header(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		want   []string
	}{
		{
			name:   "default five features",
			schema: NewSchema(5),
			want:   []string{"var1", "var2", "var3", "var4", "var5", "dataset_id", "obs_id", "treat_status"},
		},
		{
			name:   "custom prefix",
			schema: Schema{FeaturePrefix: "x", NVars: 2},
			want:   []string{"x1", "x2", "dataset_id", "obs_id", "treat_status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schema.Header())
		})
	}
}

func TestResultHeader(t *testing.T) {
	assert.Equal(t, []string{"dataset_id", "obs_id", "index_value"}, ResultHeader())
}
