// Package engine is the multi-hazard orchestrator. It owns the three hazard
// predictors and exposes the boundary operations used by the pipeline, the
// HTTP surface and the operator CLI: single-hazard predictions, combined
// reports, alert evaluation and regional heatmaps.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/hazard"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

// DefaultResolution is the heatmap grid size when the caller passes 0.
const DefaultResolution = 20

// Heatmap tsunami layer event parameters, placed at the region centre.
const (
	HeatmapTsunamiMagnitude = 7.0
	HeatmapTsunamiDepthKm   = 20.0
)

// Config sizes the engine's models and sweeps.
type Config struct {
	// Samples is the synthetic training set size per model.
	Samples int
	// Seed fixes sample draws and the forest bootstrap; 0 is unseeded.
	Seed uint64
	// Workers bounds grid sweep parallelism.
	Workers int
	// Resolution is the default heatmap grid size.
	Resolution int
	// Store, when set, persists and restores model snapshots.
	Store model.SnapshotStore
}

// Engine composes the three hazard predictors.
type Engine struct {
	earthquake *hazard.Earthquake
	flood      *hazard.Flood
	tsunami    *hazard.Tsunami

	fields     FieldSource
	geocoder   domain.Geocoder
	logger     *slog.Logger
	metrics    *observability.Metrics
	resolution int
}

// New builds an engine with untrained models. fields and geocoder may be nil:
// without fields the flood heatmap layer is zeros, without a geocoder report
// locations are named by coordinates.
func New(cfg Config, fields FieldSource, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	var opts []model.Option
	if cfg.Store != nil {
		opts = append(opts, model.WithStore(cfg.Store))
	}
	if cfg.Resolution <= 0 {
		cfg.Resolution = DefaultResolution
	}
	return &Engine{
		earthquake: hazard.NewEarthquake(hazard.NewEarthquakeModel(cfg.Samples, cfg.Seed, logger, metrics, opts...), metrics, cfg.Workers),
		flood:      hazard.NewFlood(hazard.NewFloodModel(cfg.Samples, cfg.Seed, logger, metrics, opts...), metrics, cfg.Workers),
		tsunami:    hazard.NewTsunami(hazard.NewTsunamiModel(cfg.Samples, cfg.Seed, logger, metrics, opts...), metrics, cfg.Workers),
		fields:     fields,
		geocoder:   geocoder,
		logger:     logger,
		metrics:    metrics,
		resolution: cfg.Resolution,
	}
}

// Earthquake returns the earthquake predictor.
func (e *Engine) Earthquake() *hazard.Earthquake { return e.earthquake }

// Flood returns the flood predictor.
func (e *Engine) Flood() *hazard.Flood { return e.flood }

// Tsunami returns the tsunami predictor.
func (e *Engine) Tsunami() *hazard.Tsunami { return e.tsunami }

func (e *Engine) models() []*model.RiskModel {
	return []*model.RiskModel{e.earthquake.Model(), e.flood.Model(), e.tsunami.Model()}
}

// Model returns the risk model for a hazard.
func (e *Engine) Model(h domain.Hazard) (*model.RiskModel, error) {
	for _, m := range e.models() {
		if m.Hazard() == h {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownHazard, h)
}

// EnsureTrained trains or restores all three models concurrently.
func (e *Engine) EnsureTrained(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range e.models() {
		g.Go(func() error {
			if err := m.EnsureTrained(gctx); err != nil {
				return fmt.Errorf("%s model: %w", m.Hazard(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// CheckReadiness returns nil once every model has a published fit.
func (e *Engine) CheckReadiness(_ context.Context) error {
	var pending []string
	for _, m := range e.models() {
		if !m.Trained() {
			pending = append(pending, string(m.Hazard()))
		}
	}
	if len(pending) > 0 {
		return errors.New("models not trained: " + strings.Join(pending, ", "))
	}
	return nil
}

// Models describes the three models.
func (e *Engine) Models() []model.Info {
	ms := e.models()
	out := make([]model.Info, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Info())
	}
	return out
}

// PredictEarthquake scores a location with the remaining seismic inputs at
// their defaults.
func (e *Engine) PredictEarthquake(lat, lon, depthKm, strain float64) (domain.EarthquakeResult, error) {
	in := domain.NewEarthquakeInput(lat, lon)
	in.DepthKm = depthKm
	in.CrustalStrain = strain
	return e.earthquake.Predict(in)
}

// PredictFlood scores a location with elevation 500 m and river distance
// 10 km. The coordinates annotate the river basin only.
func (e *Engine) PredictFlood(lat, lon, rainfallMm, soilMoisture float64) (domain.FloodResult, error) {
	in := domain.NewFloodInput()
	in.RainfallMm = rainfallMm
	in.SoilMoisture = soilMoisture
	in.ElevationM = domain.DefaultElevationM
	in.RiverDistanceKm = domain.DefaultRiverDistanceKm
	in.Location = &domain.Coordinates{Latitude: lat, Longitude: lon}
	return e.flood.Predict(in)
}

// PredictTsunami scores an event at a location with default coast parameters.
func (e *Engine) PredictTsunami(lat, lon, magnitude, depthKm float64) (domain.TsunamiResult, error) {
	in := domain.NewTsunamiInput()
	in.Latitude = lat
	in.Longitude = lon
	in.Magnitude = magnitude
	in.EpicenterDepthKm = depthKm
	return e.tsunami.Predict(in)
}

// PredictAllHazards runs the three predictors independently for one
// location. The earthquake result is not fed into the tsunami prediction.
// The summary's level and threats are placeholders; see
// domain.PlaceholderSummary.
func (e *Engine) PredictAllHazards(ctx context.Context, p domain.AssessmentParams) (domain.MultiHazardReport, error) {
	e.logger.Info("running multi-hazard prediction", "latitude", p.Latitude, "longitude", p.Longitude)

	eq, err := e.PredictEarthquake(p.Latitude, p.Longitude, domain.DefaultQuakeDepthKm, domain.DefaultCrustalStrain)
	if err != nil {
		return domain.MultiHazardReport{}, err
	}
	fl, err := e.PredictFlood(p.Latitude, p.Longitude, p.RainfallMm, domain.DefaultSoilMoisture)
	if err != nil {
		return domain.MultiHazardReport{}, err
	}
	ts, err := e.PredictTsunami(p.Latitude, p.Longitude, p.EarthquakeMagnitude, domain.DefaultEpicenterDepthKm)
	if err != nil {
		return domain.MultiHazardReport{}, err
	}

	return domain.MultiHazardReport{
		RequestID:  p.RequestID,
		Location:   domain.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude},
		Timestamp:  domain.Now(),
		Earthquake: eq,
		Flood:      fl,
		Tsunami:    ts,
		Summary:    domain.PlaceholderSummary(e.locationName(ctx, p.Latitude, p.Longitude)),
	}, nil
}

// RunEmergencyAlert evaluates the alert rules against a report.
func (e *Engine) RunEmergencyAlert(r domain.MultiHazardReport) domain.AlertReport {
	alerts := domain.EvaluateAlerts(r)
	for _, a := range alerts.ActiveAlerts {
		e.metrics.Alerts.WithLabelValues(strings.ToLower(a.DisasterType)).Inc()
	}
	if alerts.AlertCount > 0 {
		e.logger.Warn("emergency alert", "critical_hazards", alerts.AlertCount,
			"latitude", r.Location.Latitude, "longitude", r.Location.Longitude)
	}
	return alerts
}

// Assess validates a request, builds the report and evaluates its alerts.
// The alert report is attached to the returned report.
func (e *Engine) Assess(ctx context.Context, req domain.AssessmentRequest) (domain.Assessment, error) {
	p, err := req.Resolve()
	if err != nil {
		return domain.Assessment{}, err
	}
	report, err := e.PredictAllHazards(ctx, p)
	if err != nil {
		return domain.Assessment{}, err
	}
	alerts := e.RunEmergencyAlert(report)
	report.EmergencyAlerts = &alerts
	return domain.Assessment{Report: report, Alerts: alerts.ActiveAlerts}, nil
}

// locationName prefers a reverse-geocoded place name and falls back to the
// coordinates when no geocoder is configured or the lookup fails.
func (e *Engine) locationName(ctx context.Context, lat, lon float64) string {
	if e.geocoder == nil {
		return domain.CoordinateLabel(lat, lon)
	}
	res, err := e.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		e.logger.Warn("reverse geocode failed, using coordinates", "error", err, "latitude", lat, "longitude", lon)
		return domain.CoordinateLabel(lat, lon)
	}
	switch {
	case res.FormattedAddress != "":
		return res.FormattedAddress
	case res.PlaceName != "":
		return res.PlaceName
	}
	return domain.CoordinateLabel(lat, lon)
}
