package synth

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"icwfixtures/internal/config"
	apperrors "icwfixtures/internal/errors"
	"icwfixtures/internal/infrastructure"
	"icwfixtures/internal/rng"
	"icwfixtures/pkg/contracts/domain"
)

// Params controls the shape of the generated dataset
type Params struct {
	Seed         uint32 `json:"seed"`
	Panels       int    `json:"panels"`
	Vars         int    `json:"vars"`
	MinObs       int    `json:"min_obs"`
	MaxObs       int    `json:"max_obs"` // exclusive
	ControlFloor int    `json:"control_floor"`
}

// DefaultParams returns the parameters of the reference fixtures
func DefaultParams() Params {
	return Params{
		Seed:         config.DefaultSeed,
		Panels:       config.DefaultPanels,
		Vars:         config.DefaultVars,
		MinObs:       config.DefaultMinObs,
		MaxObs:       config.DefaultMaxObs,
		ControlFloor: config.DefaultControlFloor,
	}
}

// Validate rejects parameter sets that cannot produce a dataset
func (p Params) Validate() error {
	switch {
	case p.Panels < 1:
		return apperrors.NewGenerationError(fmt.Sprintf("panel count must be positive, got %d", p.Panels), nil)
	case p.Vars < 1:
		return apperrors.NewGenerationError(fmt.Sprintf("feature count must be positive, got %d", p.Vars), nil)
	case p.MinObs < 1:
		return apperrors.NewGenerationError(fmt.Sprintf("minimum panel size must be positive, got %d", p.MinObs), nil)
	case p.MaxObs <= p.MinObs:
		return apperrors.NewGenerationError(fmt.Sprintf("panel size range [%d, %d) is empty", p.MinObs, p.MaxObs), nil)
	case p.ControlFloor < 0:
		return apperrors.NewGenerationError(fmt.Sprintf("control floor must not be negative, got %d", p.ControlFloor), nil)
	}
	return nil
}

// ControlCount returns max(floor, nObs/2).
// With the default bounds the floor never binds; it is kept so that
// non-default bounds behave like the reference generator.
func ControlCount(nObs, floor int) int {
	return max(floor, nObs/2)
}

// Round2 rounds x to two decimals with round-half-even on x*100,
// preserving the sign of zero.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// Synthesizer generates panels from an explicit random stream
type Synthesizer struct {
	params  Params
	logger  *slog.Logger
	metrics *infrastructure.FixtureMetrics
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records panel counters on m
func WithMetrics(m *infrastructure.FixtureMetrics) Option {
	return func(s *Synthesizer) {
		s.metrics = m
	}
}

// New creates a synthesizer for params
func New(params Params, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		params: params,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = infrastructure.WithComponent(s.logger, "synth")
	return s
}

// Params returns the parameters the synthesizer was built with
func (s *Synthesizer) Params() Params {
	return s.params
}

// Generate draws every panel in index order from src.
// The context is checked between panels only; a panel is never left half drawn.
func (s *Synthesizer) Generate(ctx context.Context, src *rng.Legacy) (*domain.Dataset, error) {
	if err := s.params.Validate(); err != nil {
		return nil, err
	}

	dataset := &domain.Dataset{
		Schema: domain.NewSchema(s.params.Vars),
		Panels: make([]domain.Panel, 0, s.params.Panels),
	}

	for id := 0; id < s.params.Panels; id++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewGenerationError("generation cancelled", err).
				WithContext("dataset_id", id)
		}

		panel, err := s.GeneratePanel(src, id)
		if err != nil {
			return nil, err
		}
		dataset.Panels = append(dataset.Panels, panel)

		s.logger.DebugContext(ctx, "Panel generated",
			slog.Int("dataset_id", id),
			slog.Int("n_obs", panel.NObs),
			slog.Int("n_control", panel.NControl),
			slog.Int("n_treat", panel.NTreat))

		if s.metrics != nil {
			s.metrics.PanelsGenerated.Add(ctx, 1)
			s.metrics.PanelSize.Record(ctx, int64(panel.NObs),
				metric.WithAttributes(attribute.Int("vars", s.params.Vars)))
		}
	}

	s.logger.InfoContext(ctx, "Dataset generated",
		slog.Int("panels", len(dataset.Panels)),
		slog.Int("rows", dataset.Rows()),
		slog.Uint64("words_consumed", src.Words()))

	return dataset, nil
}

// GeneratePanel draws one panel: size, then the feature matrix row by row,
// then the shuffled treatment labels.
func (s *Synthesizer) GeneratePanel(src *rng.Legacy, datasetID int) (domain.Panel, error) {
	nObs := int(src.Randint(int64(s.params.MinObs), int64(s.params.MaxObs)))
	nControl := ControlCount(nObs, s.params.ControlFloor)
	if nControl > nObs {
		return domain.Panel{}, apperrors.NewGenerationError(
			fmt.Sprintf("control count %d exceeds panel size %d", nControl, nObs), nil).
			WithContext("dataset_id", datasetID)
	}

	observations := make([]domain.Observation, nObs)
	for i := range observations {
		features := make([]float64, s.params.Vars)
		for j := range features {
			features[j] = Round2(src.StandardNormal())
		}
		observations[i] = domain.Observation{ObsID: i, Features: features}
	}

	labels := make([]int, nObs)
	for i := nControl; i < nObs; i++ {
		labels[i] = domain.TreatStatusTreated
	}
	src.Shuffle(nObs, func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})
	for i := range observations {
		observations[i].TreatStatus = labels[i]
	}

	return domain.Panel{
		DatasetID:    datasetID,
		NObs:         nObs,
		NControl:     nControl,
		NTreat:       nObs - nControl,
		Observations: observations,
	}, nil
}
