package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
)

// Region is a latitude/longitude bounding box.
type Region struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Centre is the midpoint of the box.
func (r Region) Centre() (lat, lon float64) {
	return (r.LatMin + r.LatMax) / 2, (r.LonMin + r.LonMax) / 2
}

// GenerateRegionalHeatmaps sweeps the three hazards over a resolution ×
// resolution grid covering the region. A resolution of 0 uses the engine
// default. The three layers share the returned axes:
//
//   - earthquake: model risk with fixed non-spatial features
//   - flood: model risk over fields from the FieldSource, zeros when it fails
//   - tsunami: wave height for an M7.0, 20 km event at the region centre
func (e *Engine) GenerateRegionalHeatmaps(ctx context.Context, r Region, resolution int) (domain.RegionalHeatmaps, error) {
	if resolution == 0 {
		resolution = e.resolution
	}
	if resolution < 0 {
		return domain.RegionalHeatmaps{}, &domain.ValidationError{Field: "resolution", Reason: "must be positive"}
	}
	e.logger.Info("generating regional heatmaps",
		"lat_min", r.LatMin, "lat_max", r.LatMax, "lon_min", r.LonMin, "lon_max", r.LonMax, "resolution", resolution)

	lats := domain.Linspace(r.LatMin, r.LatMax, resolution)
	lons := domain.Linspace(r.LonMin, r.LonMax, resolution)
	out := domain.RegionalHeatmaps{GridLatitude: lats, GridLongitude: lons}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grid, err := e.earthquake.HighRiskZones(gctx, lats, lons)
		if err != nil {
			return fmt.Errorf("earthquake heatmap: %w", err)
		}
		out.EarthquakeRisk = grid
		return nil
	})
	g.Go(func() error {
		grid, err := e.floodLayer(gctx, r, resolution)
		if err != nil {
			return fmt.Errorf("flood heatmap: %w", err)
		}
		out.FloodRisk = grid
		return nil
	})
	g.Go(func() error {
		lat, lon := r.Centre()
		grid, err := e.tsunami.HazardGrid(gctx, lats, lons, lat, lon, HeatmapTsunamiMagnitude, HeatmapTsunamiDepthKm)
		if err != nil {
			return fmt.Errorf("tsunami heatmap: %w", err)
		}
		out.TsunamiHazard = grid
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.RegionalHeatmaps{}, err
	}
	return out, nil
}

// floodLayer fetches environmental fields and sweeps the flood model over
// them. Field source failures degrade to an all-zero layer.
func (e *Engine) floodLayer(ctx context.Context, r Region, resolution int) (domain.Grid, error) {
	if e.fields == nil {
		return domain.NewGrid(resolution, resolution), nil
	}
	f, err := e.fields.Fields(ctx, r, resolution)
	if err == nil {
		err = f.validate(resolution)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("environmental fields unavailable, flood layer set to zero", "error", err)
		return domain.NewGrid(resolution, resolution), nil
	}
	return e.flood.RiskMap(ctx, f.Rainfall, f.Elevation, f.SoilMoisture)
}
