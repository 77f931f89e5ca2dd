package hazard

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

// Hazard map geometry around an epicenter.
const (
	HazardMapRows        = 50
	HazardMapCols        = 80
	HazardMapLatSpan     = 20.0
	HazardMapLonSpan     = 30.0
	HazardMapMaxDistance = 500.0
	AffectedHeightM      = 0.5
)

// TsunamiGenerator draws synthetic seismic sea-wave samples.
type TsunamiGenerator struct {
	magnitude distuv.Uniform
	depth     distuv.Exponential
	distance  distuv.Exponential
	slope     distuv.Uniform
	ocean     distuv.Exponential
	lat, lon  distuv.Uniform
	water     distuv.Normal
	sst       distuv.Normal
}

// NewTsunamiGenerator creates a generator; seed 0 is unseeded.
func NewTsunamiGenerator(seed uint64) *TsunamiGenerator {
	src := newSource(seed)
	return &TsunamiGenerator{
		magnitude: distuv.Uniform{Min: 4, Max: 9, Src: src},
		depth:     distuv.Exponential{Rate: 1.0 / 15, Src: src},
		distance:  distuv.Exponential{Rate: 1.0 / 100, Src: src},
		slope:     distuv.Uniform{Min: 0.001, Max: 0.1, Src: src},
		ocean:     distuv.Exponential{Rate: 1.0 / 3000, Src: src},
		lat:       distuv.Uniform{Min: -60, Max: 60, Src: src},
		lon:       distuv.Uniform{Min: -180, Max: 180, Src: src},
		water:     distuv.Normal{Mu: 15, Sigma: 8, Src: src},
		sst:       distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Generate returns n labeled samples.
func (g *TsunamiGenerator) Generate(n int) model.TrainingSet {
	ts := model.NewTrainingSet(domain.TsunamiFeatureNames, n)
	for range n {
		in := domain.TsunamiInput{
			Magnitude:         g.magnitude.Rand(),
			EpicenterDepthKm:  g.depth.Rand(),
			CoastDistanceKm:   g.distance.Rand(),
			CoastSlope:        g.slope.Rand(),
			OceanDepthM:       g.ocean.Rand(),
			Latitude:          g.lat.Rand(),
			Longitude:         g.lon.Rand(),
			WaterTemperatureC: g.water.Rand(),
			SSTAnomaly:        g.sst.Rand(),
		}
		ts.Add(in.Features(), domain.TsunamiLabel(in))
	}
	return ts
}

// NewTsunamiModel builds the random-forest tsunami model. A non-zero seed
// fixes both the sample draws and the forest bootstrap.
func NewTsunamiModel(samples int, seed uint64, logger *slog.Logger, metrics *observability.Metrics, opts ...model.Option) *model.RiskModel {
	cfg := model.Config{
		Hazard:   domain.HazardTsunami,
		Features: domain.TsunamiFeatureNames,
		Kind:     model.RandomForest,
		Samples:  samples,
		Seed:     seed,
	}
	return model.New(cfg, NewTsunamiGenerator(seed), logger, metrics, opts...)
}

// Tsunami scores tsunami risk and wave physics.
type Tsunami struct {
	base
}

// NewTsunami wraps a trained or untrained tsunami model.
func NewTsunami(m *model.RiskModel, metrics *observability.Metrics, workers int) *Tsunami {
	return &Tsunami{base: newBase(m, metrics, workers)}
}

// Predict scores one event against one coast.
func (t *Tsunami) Predict(in domain.TsunamiInput) (domain.TsunamiResult, error) {
	s, err := t.score(in.Features())
	if err != nil {
		return domain.TsunamiResult{}, err
	}
	res := domain.NewTsunamiResult(in, s)
	t.count(res.RiskAssessment.RiskLevel)
	return res, nil
}

// PredictFromEarthquake chains an earthquake prediction into a tsunami
// prediction using its expected magnitude, depth and location.
func (t *Tsunami) PredictFromEarthquake(eq domain.EarthquakeResult) (domain.TsunamiResult, error) {
	return t.Predict(domain.TsunamiFromEarthquake(eq))
}

// PredictCoastalImpact scores each coastal point in order. The distance to
// the coast is measured from the origin (0°, 0°), not from the point.
func (t *Tsunami) PredictCoastalImpact(coasts []domain.TsunamiQuery) ([]domain.TsunamiResult, error) {
	out := make([]domain.TsunamiResult, 0, len(coasts))
	for i, q := range coasts {
		in := q.Resolve()
		in.CoastDistanceKm = domain.PlanarDistanceKm(in.Latitude, in.Longitude, 0, 0)
		res, err := t.Predict(in)
		if err != nil {
			return nil, fmt.Errorf("coast %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// HazardMap sweeps a 50×80 grid spanning ±20° latitude and ±30° longitude
// around the epicenter, clipped to [-60, 60] and [-180, 180]. Cells within
// 500 km of the epicenter hold the maximum wave height; the rest stay zero.
func (t *Tsunami) HazardMap(ctx context.Context, eqLat, eqLon, magnitude, depthKm float64) (domain.HazardMap, error) {
	lats := domain.Linspace(math.Max(-60, eqLat-HazardMapLatSpan), math.Min(60, eqLat+HazardMapLatSpan), HazardMapRows)
	lons := domain.Linspace(math.Max(-180, eqLon-HazardMapLonSpan), math.Min(180, eqLon+HazardMapLonSpan), HazardMapCols)

	grid, err := t.HazardGrid(ctx, lats, lons, eqLat, eqLon, magnitude, depthKm)
	if err != nil {
		return domain.HazardMap{}, err
	}
	return domain.HazardMap{
		HazardMap:         grid,
		LatitudeGrid:      lats,
		LongitudeGrid:     lons,
		MaxWaveHeightM:    grid.Max(),
		AffectedAreaCount: grid.CountAbove(AffectedHeightM),
	}, nil
}

// HazardGrid fills a wave-height grid over arbitrary axes for an epicenter.
func (t *Tsunami) HazardGrid(ctx context.Context, lats, lons []float64, eqLat, eqLon, magnitude, depthKm float64) (domain.Grid, error) {
	return t.sweep(ctx, len(lats), len(lons), func(fit *model.Fit, i, j int) (float64, error) {
		dist := domain.PlanarDistanceKm(lats[i], lons[j], eqLat, eqLon)
		if dist >= HazardMapMaxDistance {
			return 0, nil
		}
		in := domain.NewTsunamiInput()
		in.Magnitude = magnitude
		in.EpicenterDepthKm = depthKm
		in.CoastDistanceKm = dist
		in.Latitude = lats[i]
		in.Longitude = lons[j]
		s, err := fit.Predict(in.Features())
		if err != nil {
			return 0, err
		}
		return domain.NewTsunamiResult(in, s).Wave.MaximumHeightM, nil
	})
}
