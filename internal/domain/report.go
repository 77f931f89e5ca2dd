package domain

import (
	"fmt"
	"strings"
	"time"
)

// Hazard names a scored hazard.
type Hazard string

const (
	HazardEarthquake Hazard = "earthquake"
	HazardFlood      Hazard = "flood"
	HazardTsunami    Hazard = "tsunami"
)

// Hazards lists every hazard in report order.
var Hazards = []Hazard{HazardEarthquake, HazardFlood, HazardTsunami}

// ParseHazard accepts a hazard name in any case.
func ParseHazard(s string) (Hazard, error) {
	h := Hazard(strings.ToLower(strings.TrimSpace(s)))
	switch h {
	case HazardEarthquake, HazardFlood, HazardTsunami:
		return h, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHazard, s)
}

// DefaultAssessmentMagnitude is the tsunami magnitude used by a multi-hazard
// assessment when the caller does not give one.
const DefaultAssessmentMagnitude = 6.0

// Summary is the executive summary of a multi-hazard report.
type Summary struct {
	LocationName     string   `json:"location_name"`
	OverallRiskLevel string   `json:"overall_risk_level"`
	PrimaryThreat    string   `json:"primary_threat"`
	SecondaryThreats []string `json:"secondary_threats"`
}

// PlaceholderSummary returns the summary for a location. The overall level
// and threats are constants; they are not derived from the hazard results
// and callers should not read them as an aggregation.
func PlaceholderSummary(locationName string) Summary {
	return Summary{
		LocationName:     locationName,
		OverallRiskLevel: "MODERATE",
		PrimaryThreat:    "Variable by location",
		SecondaryThreats: []string{"Flooding", "Seismic activity"},
	}
}

// CoordinateLabel names a location by its coordinates.
func CoordinateLabel(lat, lon float64) string {
	return fmt.Sprintf("Location (%.2f°, %.2f°)", lat, lon)
}

// MultiHazardReport bundles the three predictions for one location.
type MultiHazardReport struct {
	RequestID       string           `json:"request_id,omitempty"`
	Location        Coordinates      `json:"location"`
	Timestamp       time.Time        `json:"timestamp"`
	Earthquake      EarthquakeResult `json:"earthquake"`
	Flood           FloodResult      `json:"flood"`
	Tsunami         TsunamiResult    `json:"tsunami"`
	Summary         Summary          `json:"summary"`
	EmergencyAlerts *AlertReport     `json:"emergency_alerts,omitempty"`
}

// Alert disaster types.
const (
	DisasterEarthquake = "EARTHQUAKE"
	DisasterFlood      = "FLOOD"
	DisasterTsunami    = "TSUNAMI"
)

// SeverityCritical is the only alert severity currently raised.
const SeverityCritical = "CRITICAL"

// Alert is raised when a prediction crosses its hazard's critical threshold.
type Alert struct {
	DisasterType string       `json:"disaster_type"`
	Severity     string       `json:"severity"`
	Message      string       `json:"message"`
	Location     *Coordinates `json:"location,omitempty"`
	RequestID    string       `json:"request_id,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// AlertReport is the outcome of evaluating the alert rules.
type AlertReport struct {
	ActiveAlerts []Alert `json:"active_alerts"`
	AlertCount   int     `json:"alert_count"`
}

// EvaluateAlerts applies the three independent alert rules: earthquake level
// exactly CRITICAL, flood level containing CRITICAL and tsunami threat level
// containing MAJOR.
func EvaluateAlerts(r MultiHazardReport) AlertReport {
	now := Now()
	loc := r.Location
	alerts := []Alert{}
	raise := func(kind, msg string) {
		alerts = append(alerts, Alert{
			DisasterType: kind,
			Severity:     SeverityCritical,
			Message:      msg,
			Location:     &loc,
			RequestID:    r.RequestID,
			Timestamp:    now,
		})
	}
	if r.Earthquake.RiskLevel == QuakeCritical {
		raise(DisasterEarthquake, r.Earthquake.Recommendation)
	}
	if strings.Contains(r.Flood.RiskLevel, FloodCritical) {
		raise(DisasterFlood, r.Flood.Recommendation)
	}
	if strings.Contains(r.Tsunami.RiskAssessment.ThreatLevel, "MAJOR") {
		raise(DisasterTsunami, r.Tsunami.Recommendation)
	}
	return AlertReport{ActiveAlerts: alerts, AlertCount: len(alerts)}
}

// HazardMap is a tsunami wave-height grid around an epicenter.
type HazardMap struct {
	HazardMap         Grid      `json:"hazard_map"`
	LatitudeGrid      []float64 `json:"latitude_grid"`
	LongitudeGrid     []float64 `json:"longitude_grid"`
	MaxWaveHeightM    float64   `json:"max_wave_height_m"`
	AffectedAreaCount int       `json:"affected_area_count"`
}

// RegionalHeatmaps holds three aligned risk grids over shared axes.
// Rows follow GridLatitude, columns follow GridLongitude.
type RegionalHeatmaps struct {
	GridLatitude   []float64 `json:"grid_latitude"`
	GridLongitude  []float64 `json:"grid_longitude"`
	EarthquakeRisk Grid      `json:"earthquake_risk"`
	FloodRisk      Grid      `json:"flood_risk"`
	TsunamiHazard  Grid      `json:"tsunami_hazard"`
}

// AssessmentRequest asks for a multi-hazard assessment of one location.
type AssessmentRequest struct {
	ID                  string   `json:"id,omitempty"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	RainfallMm          *float64 `json:"rainfall_mm,omitempty"`
	EarthquakeMagnitude *float64 `json:"earthquake_magnitude,omitempty"`
}

// AssessmentParams is a validated AssessmentRequest.
type AssessmentParams struct {
	RequestID           string
	Latitude            float64
	Longitude           float64
	RainfallMm          float64
	EarthquakeMagnitude float64
}

// Resolve validates the coordinates and defaults the rest.
func (r AssessmentRequest) Resolve() (AssessmentParams, error) {
	lat, err := RequireCoordinate("latitude", r.Latitude)
	if err != nil {
		return AssessmentParams{}, err
	}
	lon, err := RequireCoordinate("longitude", r.Longitude)
	if err != nil {
		return AssessmentParams{}, err
	}
	return AssessmentParams{
		RequestID:           r.ID,
		Latitude:            lat,
		Longitude:           lon,
		RainfallMm:          ValueOr(r.RainfallMm, DefaultRainfallMm),
		EarthquakeMagnitude: ValueOr(r.EarthquakeMagnitude, DefaultAssessmentMagnitude),
	}, nil
}
