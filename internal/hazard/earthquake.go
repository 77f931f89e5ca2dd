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

// EarthquakeGenerator draws synthetic earthquake samples over the globe.
type EarthquakeGenerator struct {
	lat, lon distuv.Uniform
	depth    distuv.Exponential
	days     distuv.Exponential
	strain   distuv.Uniform
	plate    distuv.Uniform
	temp     distuv.Normal
	pressure distuv.Uniform
}

// NewEarthquakeGenerator creates a generator; seed 0 is unseeded.
func NewEarthquakeGenerator(seed uint64) *EarthquakeGenerator {
	src := newSource(seed)
	return &EarthquakeGenerator{
		lat:      distuv.Uniform{Min: -60, Max: 60, Src: src},
		lon:      distuv.Uniform{Min: -180, Max: 180, Src: src},
		depth:    distuv.Exponential{Rate: 1.0 / 15, Src: src},
		days:     distuv.Exponential{Rate: 1.0 / 30, Src: src},
		strain:   distuv.Uniform{Min: 0, Max: 1, Src: src},
		plate:    distuv.Uniform{Min: 0, Max: 10, Src: src},
		temp:     distuv.Normal{Mu: 25, Sigma: 10, Src: src},
		pressure: distuv.Uniform{Min: 800, Max: 1013, Src: src},
	}
}

// Generate returns n labeled samples.
func (g *EarthquakeGenerator) Generate(n int) model.TrainingSet {
	ts := model.NewTrainingSet(domain.EarthquakeFeatureNames, n)
	for range n {
		in := domain.EarthquakeInput{
			Latitude:           g.lat.Rand(),
			Longitude:          g.lon.Rand(),
			DepthKm:            g.depth.Rand(),
			DaysSinceLastQuake: g.days.Rand(),
			CrustalStrain:      g.strain.Rand(),
			PlateMotionCmYr:    g.plate.Rand(),
			TemperatureC:       g.temp.Rand(),
			PressureMb:         g.pressure.Rand(),
		}
		ts.Add(in.Features(), domain.EarthquakeLabel(in))
	}
	return ts
}

// NewEarthquakeModel builds the gradient-boosted earthquake model.
func NewEarthquakeModel(samples int, seed uint64, logger *slog.Logger, metrics *observability.Metrics, opts ...model.Option) *model.RiskModel {
	cfg := model.Config{
		Hazard:   domain.HazardEarthquake,
		Features: domain.EarthquakeFeatureNames,
		Kind:     model.GradientBoosting,
		Samples:  samples,
	}
	return model.New(cfg, NewEarthquakeGenerator(seed), logger, metrics, opts...)
}

// Earthquake scores seismic risk.
type Earthquake struct {
	base
}

// NewEarthquake wraps a trained or untrained earthquake model.
func NewEarthquake(m *model.RiskModel, metrics *observability.Metrics, workers int) *Earthquake {
	return &Earthquake{base: newBase(m, metrics, workers)}
}

// Predict scores one location.
func (e *Earthquake) Predict(in domain.EarthquakeInput) (domain.EarthquakeResult, error) {
	s, err := e.score(in.Features())
	if err != nil {
		return domain.EarthquakeResult{}, err
	}
	res := domain.NewEarthquakeResult(in, s)
	e.count(res.RiskLevel)
	return res, nil
}

// PredictBatch scores each entry independently, preserving order. Missing
// optional fields take their defaults; a missing coordinate fails the batch.
func (e *Earthquake) PredictBatch(queries []domain.EarthquakeQuery) ([]domain.EarthquakeResult, error) {
	out := make([]domain.EarthquakeResult, 0, len(queries))
	for i, q := range queries {
		in, err := q.Resolve()
		if err != nil {
			return nil, fmt.Errorf("location %d: %w", i, err)
		}
		res, err := e.Predict(in)
		if err != nil {
			return nil, fmt.Errorf("location %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// HighRiskZones evaluates the model at every (lat, lon) intersection with
// the non-spatial features fixed. Rows follow lats, columns follow lons.
func (e *Earthquake) HighRiskZones(ctx context.Context, lats, lons []float64) (domain.Grid, error) {
	return e.sweep(ctx, len(lats), len(lons), func(fit *model.Fit, i, j int) (float64, error) {
		return scoreCell(fit, domain.EarthquakeGridFeatures(lats[i], lons[j]))
	})
}
