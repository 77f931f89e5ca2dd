package hazard

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

// FloodGenerator draws synthetic catchment samples. Rainfall is gamma
// distributed with shape 2 and scale 25 mm.
type FloodGenerator struct {
	rain      distuv.Gamma
	unit      distuv.Uniform
	elevation distuv.Exponential
	slope     distuv.Exponential
	river     distuv.Exponential
}

// NewFloodGenerator creates a generator; seed 0 is unseeded.
func NewFloodGenerator(seed uint64) *FloodGenerator {
	src := newSource(seed)
	return &FloodGenerator{
		rain:      distuv.Gamma{Alpha: 2, Beta: 1.0 / 25, Src: src},
		unit:      distuv.Uniform{Min: 0, Max: 1, Src: src},
		elevation: distuv.Exponential{Rate: 1.0 / 500, Src: src},
		slope:     distuv.Exponential{Rate: 1.0 / 5, Src: src},
		river:     distuv.Exponential{Rate: 1.0 / 10, Src: src},
	}
}

// Generate returns n labeled samples.
func (g *FloodGenerator) Generate(n int) model.TrainingSet {
	ts := model.NewTrainingSet(domain.FloodFeatureNames, n)
	for range n {
		in := domain.FloodInput{
			RainfallMm:         g.rain.Rand(),
			SoilMoisture:       g.unit.Rand(),
			ElevationM:         g.elevation.Rand(),
			SlopeDeg:           g.slope.Rand(),
			RiverDistanceKm:    g.river.Rand(),
			Urbanization:       g.unit.Rand(),
			DamCapacityRatio:   g.unit.Rand(),
			AntecedentMoisture: g.unit.Rand(),
		}
		ts.Add(in.Features(), domain.FloodLabel(in))
	}
	return ts
}

// NewFloodModel builds the gradient-boosted flood model.
func NewFloodModel(samples int, seed uint64, logger *slog.Logger, metrics *observability.Metrics, opts ...model.Option) *model.RiskModel {
	cfg := model.Config{
		Hazard:   domain.HazardFlood,
		Features: domain.FloodFeatureNames,
		Kind:     model.GradientBoosting,
		Samples:  samples,
	}
	return model.New(cfg, NewFloodGenerator(seed), logger, metrics, opts...)
}

// Flood scores flood risk.
type Flood struct {
	base
}

// NewFlood wraps a trained or untrained flood model.
func NewFlood(m *model.RiskModel, metrics *observability.Metrics, workers int) *Flood {
	return &Flood{base: newBase(m, metrics, workers)}
}

// Predict scores one catchment.
func (f *Flood) Predict(in domain.FloodInput) (domain.FloodResult, error) {
	s, err := f.score(in.Features())
	if err != nil {
		return domain.FloodResult{}, err
	}
	res := domain.NewFloodResult(in, s)
	f.count(res.RiskLevel)
	return res, nil
}

// PredictTemporalSeries scores each time step independently with the other
// inputs at their defaults. A moisture series shorter than the rainfall
// series is padded with SeriesMoisturePad; extra moisture values are ignored.
func (f *Flood) PredictTemporalSeries(rainfall, moisture []float64) ([]domain.FloodResult, error) {
	out := make([]domain.FloodResult, 0, len(rainfall))
	for i, rain := range rainfall {
		m := domain.SeriesMoisturePad
		if i < len(moisture) {
			m = moisture[i]
		}
		in := domain.NewFloodInput()
		in.RainfallMm = rain
		in.SoilMoisture = m
		in.AntecedentMoisture = m
		res, err := f.Predict(in)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// RiskMap scores every cell of aligned rainfall, elevation and soil moisture
// grids. The output has the same shape as the inputs.
func (f *Flood) RiskMap(ctx context.Context, rainfall, elevation, soil domain.Grid) (domain.Grid, error) {
	rows, cols := rainfall.Shape()
	if err := sameShape("elevation", elevation, rows, cols); err != nil {
		return nil, err
	}
	if err := sameShape("soil_moisture", soil, rows, cols); err != nil {
		return nil, err
	}
	if err := sameShape("rainfall", rainfall, rows, cols); err != nil {
		return nil, err
	}
	return f.sweep(ctx, rows, cols, func(fit *model.Fit, i, j int) (float64, error) {
		return scoreCell(fit, domain.FloodGridFeatures(rainfall[i][j], elevation[i][j], soil[i][j]))
	})
}

// sameShape rejects ragged grids and grids that do not match rows×cols.
func sameShape(field string, g domain.Grid, rows, cols int) error {
	if len(g) != rows {
		return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("has %d rows, want %d", len(g), rows)}
	}
	for i, row := range g {
		if len(row) != cols {
			return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("row %d has %d columns, want %d", i, len(row), cols)}
		}
	}
	return nil
}
