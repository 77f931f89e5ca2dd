package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

var (
	sharedOnce sync.Once
	shared     *Engine
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestEngine(fields FieldSource, geocoder domain.Geocoder) *Engine {
	cfg := Config{Samples: 500, Seed: 7, Workers: 2, Resolution: 4}
	return New(cfg, fields, geocoder, testLogger(), observability.NewMetricsForTesting())
}

// trainedEngine shares one trained engine across tests. Tests that need a
// geocoder or field source copy it and swap those collaborators.
func trainedEngine(t *testing.T) *Engine {
	t.Helper()
	sharedOnce.Do(func() {
		shared = newTestEngine(SyntheticFields{Seed: 5}, nil)
		if err := shared.EnsureTrained(context.Background()); err != nil {
			panic(err)
		}
	})
	return shared
}

func withCollaborators(e *Engine, fields FieldSource, geocoder domain.Geocoder) *Engine {
	c := *e
	c.fields = fields
	c.geocoder = geocoder
	c.metrics = observability.NewMetricsForTesting()
	return &c
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (s stubGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return s.result, s.err
}

type failingFields struct{}

func (failingFields) Fields(context.Context, Region, int) (Fields, error) {
	return Fields{}, errors.New("upstream timeout")
}

func ptr(v float64) *float64 { return &v }

func TestCheckReadiness(t *testing.T) {
	e := New(Config{Samples: 40, Seed: 3}, nil, nil, testLogger(), observability.NewMetricsForTesting())
	err := e.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "earthquake, flood, tsunami")

	require.NoError(t, e.EnsureTrained(context.Background()))
	assert.NoError(t, e.CheckReadiness(context.Background()))

	for _, info := range e.Models() {
		assert.True(t, info.Trained, info.Hazard)
		assert.Equal(t, 40, info.Samples)
	}
}

func TestModelLookup(t *testing.T) {
	e := trainedEngine(t)
	m, err := e.Model(domain.HazardTsunami)
	require.NoError(t, err)
	assert.Equal(t, domain.HazardTsunami, m.Hazard())

	_, err = e.Model("volcano")
	assert.ErrorIs(t, err, domain.ErrUnknownHazard)
}

func TestBoundaryPredictions(t *testing.T) {
	e := trainedEngine(t)

	eq, err := e.PredictEarthquake(35, 140, 20, 0.9)
	require.NoError(t, err)
	assert.Equal(t, "Japan (ring_of_fire)", eq.TectonicZone)
	assert.InDelta(t, 7.1, eq.ExpectedMagnitude, 1e-9)

	fl, err := e.PredictFlood(26, 80, 10, 0.3)
	require.NoError(t, err)
	assert.Contains(t, []string{domain.FloodNone, domain.FloodLow}, fl.RiskLevel)
	assert.InDelta(t, domain.DefaultElevationM, fl.ElevationM, 1e-12)
	assert.Equal(t, "Ganga Basin", fl.RiverBasin)

	fl, err = e.PredictFlood(26, 80, 200, 0.9)
	require.NoError(t, err)
	assert.Contains(t, []string{domain.FloodHigh, domain.FloodVeryHigh, domain.FloodCritical}, fl.RiskLevel)

	ts, err := e.PredictTsunami(38, 142, 9, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreatMajorWarning, ts.RiskAssessment.ThreatLevel)
	assert.True(t, ts.RiskAssessment.InMajorSubductionZone)
}

func TestPredictAllHazards(t *testing.T) {
	at := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { domain.SetClock(nil) })

	e := trainedEngine(t)
	p := domain.AssessmentParams{RequestID: "r-1", Latitude: 35, Longitude: 140, RainfallMm: 50, EarthquakeMagnitude: 6}

	report, err := e.PredictAllHazards(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, "r-1", report.RequestID)
	assert.Equal(t, at, report.Timestamp)
	assert.Equal(t, domain.Coordinates{Latitude: 35, Longitude: 140}, report.Location)
	assert.InDelta(t, 6, report.Tsunami.Earthquake.Magnitude, 1e-12)
	assert.InDelta(t, 50, report.Flood.RainfallMm, 1e-12)
	assert.InDelta(t, domain.DefaultQuakeDepthKm, report.Earthquake.DepthKm, 1e-12)
	assert.Equal(t, domain.PlaceholderSummary("Location (35.00°, 140.00°)"), report.Summary)
	assert.Nil(t, report.EmergencyAlerts)
}

func TestPredictAllHazards_LocationName(t *testing.T) {
	base := trainedEngine(t)
	p := domain.AssessmentParams{Latitude: 35.68, Longitude: 139.69, RainfallMm: 50, EarthquakeMagnitude: 6}

	tests := []struct {
		name     string
		geocoder domain.Geocoder
		want     string
	}{
		{"formatted address", stubGeocoder{result: domain.GeocodingResult{FormattedAddress: "Tokyo, Japan", PlaceName: "Tokyo"}}, "Tokyo, Japan"},
		{"place name only", stubGeocoder{result: domain.GeocodingResult{PlaceName: "Tokyo"}}, "Tokyo"},
		{"empty result", stubGeocoder{}, "Location (35.68°, 139.69°)"},
		{"lookup error", stubGeocoder{err: errors.New("boom")}, "Location (35.68°, 139.69°)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := withCollaborators(base, nil, tt.geocoder)
			report, err := e.PredictAllHazards(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Summary.LocationName)
		})
	}
}

func TestRunEmergencyAlert(t *testing.T) {
	e := withCollaborators(trainedEngine(t), nil, nil)
	report := domain.MultiHazardReport{
		Earthquake: domain.EarthquakeResult{RiskLevel: domain.QuakeCritical, Recommendation: "CRITICAL - Activate emergency protocols immediately"},
		Flood:      domain.FloodResult{RiskLevel: domain.FloodModerate},
		Tsunami:    domain.TsunamiResult{RiskAssessment: domain.TsunamiRiskAssessment{ThreatLevel: domain.ThreatWatch}},
	}

	got := e.RunEmergencyAlert(report)

	require.Equal(t, 1, got.AlertCount)
	require.Len(t, got.ActiveAlerts, 1)
	assert.Equal(t, domain.DisasterEarthquake, got.ActiveAlerts[0].DisasterType)
	assert.Equal(t, domain.SeverityCritical, got.ActiveAlerts[0].Severity)
	assert.Equal(t, report.Earthquake.Recommendation, got.ActiveAlerts[0].Message)
	assert.InDelta(t, 1, testutil.ToFloat64(e.metrics.Alerts.WithLabelValues("earthquake")), 1e-12)
}

func TestAssess(t *testing.T) {
	e := trainedEngine(t)

	got, err := e.Assess(context.Background(), domain.AssessmentRequest{ID: "a", Latitude: ptr(-5), Longitude: ptr(95), EarthquakeMagnitude: ptr(9.2)})
	require.NoError(t, err)
	require.NotNil(t, got.Report.EmergencyAlerts)
	assert.Equal(t, got.Report.EmergencyAlerts.ActiveAlerts, got.Alerts)
	assert.Equal(t, domain.ThreatMajorWarning, got.Report.Tsunami.RiskAssessment.ThreatLevel)
	require.NotEmpty(t, got.Alerts)
	assert.Equal(t, domain.DisasterTsunami, got.Alerts[len(got.Alerts)-1].DisasterType)
	assert.Equal(t, "a", got.Alerts[len(got.Alerts)-1].RequestID)

	_, err = e.Assess(context.Background(), domain.AssessmentRequest{Latitude: ptr(1)})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
