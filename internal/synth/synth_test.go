package synth

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/rng"
	"icwfixtures/internal/shared/testutil"
	"icwfixtures/pkg/contracts/domain"
)

func generateDefault(t *testing.T) *domain.Dataset {
	t.Helper()
	p := DefaultParams()
	ds, err := New(p).Generate(context.Background(), rng.New(p.Seed))
	require.NoError(t, err)
	return ds
}

func smallParams() Params {
	return Params{Seed: 7, Panels: 3, Vars: 2, MinObs: 5, MaxObs: 10, ControlFloor: 3}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, Params{Seed: 42, Panels: 100, Vars: 5, MinObs: 500, MaxObs: 2000, ControlFloor: 100}, p)
	assert.NoError(t, p.Validate())
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no panels", func(p *Params) { p.Panels = 0 }},
		{"no vars", func(p *Params) { p.Vars = 0 }},
		{"zero min", func(p *Params) { p.MinObs = 0 }},
		{"empty range", func(p *Params) { p.MaxObs = p.MinObs }},
		{"negative floor", func(p *Params) { p.ControlFloor = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeGeneration))
		})
	}
}

func TestControlCount(t *testing.T) {
	tests := []struct {
		nObs, floor, want int
	}{
		{1626, 100, 813},
		{617, 100, 308},
		{500, 100, 250},
		{1999, 100, 999},
		{150, 100, 100},
		{5, 3, 3},
		{9, 0, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ControlCount(tt.nObs, tt.floor), "n_obs=%d floor=%d", tt.nObs, tt.floor)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.4967141530112327, 0.5},
		{-0.13826430117118466, -0.14},
		{1.5230298564080254, 1.52},
		{0.125, 0.12}, // half to even
		{0.135, 0.14},
		{2.0, 2.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}

	negZero := Round2(-0.004)
	assert.Equal(t, 0.0, negZero)
	assert.True(t, math.Signbit(negZero), "sign of zero is preserved")
	assert.False(t, math.Signbit(Round2(0.004)))
}

func TestGenerate_ReferenceScenario(t *testing.T) {
	ds := generateDefault(t)

	require.Len(t, ds.Panels, 100)
	assert.Equal(t, 122444, ds.Rows())
	assert.Equal(t, domain.NewSchema(5), ds.Schema)

	p0 := ds.Panels[0]
	assert.Equal(t, 0, p0.DatasetID)
	assert.Equal(t, 1626, p0.NObs)
	assert.Equal(t, 813, p0.NControl)
	assert.Equal(t, 813, p0.NTreat)

	controls := p0.ControlIDs()
	require.Len(t, controls, 813)
	assert.Equal(t, []int{1, 2, 4, 5, 6, 7, 8, 11, 12, 13}, controls[:10])
	sum := 0
	for _, id := range controls {
		sum += id
	}
	assert.Equal(t, 655147, sum)

	assert.Equal(t, []float64{-0.55, 0.52, 0.47, 1.37, -0.92}, p0.Observations[0].Features)
	assert.Equal(t, domain.TreatStatusTreated, p0.Observations[0].TreatStatus)
	assert.Equal(t, []float64{-0.12, -2.01, -0.49, 0.39, -0.93}, p0.Observations[1].Features)
	assert.Equal(t, []float64{0.08, -0.16, 0.02, -0.43, -0.53}, p0.Observations[2].Features)

	assert.Equal(t, 616, ds.Panels[1].NObs)
	assert.Equal(t, 308, ds.Panels[1].NControl)

	last := ds.Panels[99]
	assert.Equal(t, 606, last.NObs)
	assert.Equal(t, 303, last.NControl)
	lastObs := last.Observations[605]
	assert.Equal(t, 605, lastObs.ObsID)
	assert.Equal(t, []float64{-0.63, 1.08, -0.23, 1.21, 1.55}, lastObs.Features)
	assert.Equal(t, domain.TreatStatusTreated, lastObs.TreatStatus)

	sizes := make([]int, 10)
	for i := range sizes {
		sizes[i] = ds.Panels[i].NObs
	}
	assert.Equal(t, []int{1626, 616, 1724, 1122, 1813, 1607, 1531, 1063, 1830, 1534}, sizes)
}

func TestGenerate_Invariants(t *testing.T) {
	ds := generateDefault(t)

	negZeros := 0
	for id, panel := range ds.Panels {
		assert.Equal(t, id, panel.DatasetID)
		assert.GreaterOrEqual(t, panel.NObs, 500)
		assert.Less(t, panel.NObs, 2000)
		assert.Equal(t, max(100, panel.NObs/2), panel.NControl)
		assert.Equal(t, panel.NObs-panel.NControl, panel.NTreat)
		require.Len(t, panel.Observations, panel.NObs)

		controls := 0
		for i, obs := range panel.Observations {
			require.Equal(t, i, obs.ObsID)
			require.Len(t, obs.Features, 5)
			require.Contains(t, []int{0, 1}, obs.TreatStatus)
			if obs.IsControl() {
				controls++
			}
			for _, f := range obs.Features {
				require.Equal(t, Round2(f), f)
				if f == 0 && math.Signbit(f) {
					negZeros++
				}
			}
		}
		assert.Equal(t, panel.NControl, controls, "panel %d", id)
	}
	assert.Equal(t, 1219, negZeros)
}

func TestGenerate_Reproducible(t *testing.T) {
	a := generateDefault(t)
	b := generateDefault(t)
	assert.Equal(t, a, b)

	other := DefaultParams()
	other.Seed = 43
	c, err := New(other).Generate(context.Background(), rng.New(other.Seed))
	require.NoError(t, err)
	assert.NotEqual(t, a.Panels[0].Observations[0].Features, c.Panels[0].Observations[0].Features)
}

func TestGenerate_SmallParams(t *testing.T) {
	p := smallParams()
	ds, err := New(p).Generate(context.Background(), rng.New(p.Seed))
	require.NoError(t, err)
	require.Len(t, ds.Panels, 3)

	assert.Equal(t, 9, ds.Panels[0].NObs)
	assert.Equal(t, 4, ds.Panels[0].NControl)
	assert.Equal(t, 8, ds.Panels[1].NObs)
	assert.Equal(t, 4, ds.Panels[1].NControl)

	// floor binds: 5/2 = 2 < 3
	p2 := ds.Panels[2]
	assert.Equal(t, 5, p2.NObs)
	assert.Equal(t, 3, p2.NControl)
	assert.Equal(t, 2, p2.NTreat)
	assert.Equal(t, []int{1, 2, 3}, p2.ControlIDs())

	assert.Equal(t, []float64{-0.32, 1.46}, ds.Panels[0].Observations[0].Features)
	negZero := ds.Panels[0].Observations[3].Features[1]
	assert.True(t, negZero == 0 && math.Signbit(negZero))
	assert.Equal(t, []float64{0.77, 1.99}, p2.Observations[3].Features)
}

func TestGenerate_FloorAboveSize(t *testing.T) {
	p := smallParams()
	p.ControlFloor = 50

	_, err := New(p).Generate(context.Background(), rng.New(p.Seed))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeGeneration))
	assert.Contains(t, err.Error(), "exceeds panel size")
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultParams()).Generate(ctx, rng.New(42))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeGeneration))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_Logging(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	p := smallParams()
	_, err := New(p, WithLogger(logger)).Generate(context.Background(), rng.New(p.Seed))
	require.NoError(t, err)

	assert.Len(t, handler.RecordsWithMessage("Panel generated"), 3)
	summary := handler.RecordsWithMessage("Dataset generated")
	require.Len(t, summary, 1)
	assert.Equal(t, int64(22), summary[0].Attrs["rows"])
	assert.Equal(t, "synth", summary[0].Attrs["component"])
	testutil.AssertNoErrors(t, handler)
}
