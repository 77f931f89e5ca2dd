package domain

import (
	"math"
	"time"
)

// Earthquake input defaults.
const (
	DefaultQuakeDepthKm        = 10.0
	DefaultDaysSinceLastQuake  = 30.0
	DefaultCrustalStrain       = 0.5
	DefaultPlateMotionCmYr     = 5.0
	DefaultSurfaceTemperatureC = 25.0
	DefaultPressureMb          = 1013.0
)

// Grid sweeps hold the non-spatial earthquake features at these values.
const (
	GridQuakeDepthKm   = 15.0
	GridCrustalStrain  = 0.5
	GridDaysSinceQuake = 30.0
)

// EarthquakeFeatureNames is the model schema for the earthquake hazard.
var EarthquakeFeatureNames = []string{
	"latitude", "longitude", "depth_km", "days_since_last_quake",
	"crustal_strain", "plate_motion_cm_yr", "temperature_c", "pressure_mb",
}

// EarthquakeInput is a fully resolved earthquake feature set.
type EarthquakeInput struct {
	Latitude           float64
	Longitude          float64
	DepthKm            float64
	DaysSinceLastQuake float64
	CrustalStrain      float64
	PlateMotionCmYr    float64
	TemperatureC       float64
	PressureMb         float64
}

// NewEarthquakeInput returns an input at the given point with every other
// field at its default.
func NewEarthquakeInput(lat, lon float64) EarthquakeInput {
	return EarthquakeInput{
		Latitude:           lat,
		Longitude:          lon,
		DepthKm:            DefaultQuakeDepthKm,
		DaysSinceLastQuake: DefaultDaysSinceLastQuake,
		CrustalStrain:      DefaultCrustalStrain,
		PlateMotionCmYr:    DefaultPlateMotionCmYr,
		TemperatureC:       DefaultSurfaceTemperatureC,
		PressureMb:         DefaultPressureMb,
	}
}

// Features returns the vector in EarthquakeFeatureNames order.
func (in EarthquakeInput) Features() []float64 {
	return []float64{
		in.Latitude, in.Longitude, in.DepthKm, in.DaysSinceLastQuake,
		in.CrustalStrain, in.PlateMotionCmYr, in.TemperatureC, in.PressureMb,
	}
}

// EarthquakeGridFeatures is the vector used at each grid intersection.
func EarthquakeGridFeatures(lat, lon float64) []float64 {
	return []float64{
		lat, lon, GridQuakeDepthKm, GridDaysSinceQuake,
		GridCrustalStrain, DefaultPlateMotionCmYr, DefaultSurfaceTemperatureC, DefaultPressureMb,
	}
}

// EarthquakeQuery is a loosely specified earthquake request as it arrives
// from a batch or a message. Only the coordinates are required.
type EarthquakeQuery struct {
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	DepthKm            *float64 `json:"depth_km,omitempty"`
	DaysSinceLastQuake *float64 `json:"days_since_last_quake,omitempty"`
	CrustalStrain      *float64 `json:"crustal_strain,omitempty"`
	PlateMotionCmYr    *float64 `json:"plate_motion_cm_yr,omitempty"`
	TemperatureC       *float64 `json:"temperature_c,omitempty"`
	PressureMb         *float64 `json:"pressure_mb,omitempty"`
}

// Resolve applies defaults to every optional field.
func (q EarthquakeQuery) Resolve() (EarthquakeInput, error) {
	lat, err := RequireCoordinate("latitude", q.Latitude)
	if err != nil {
		return EarthquakeInput{}, err
	}
	lon, err := RequireCoordinate("longitude", q.Longitude)
	if err != nil {
		return EarthquakeInput{}, err
	}
	return EarthquakeInput{
		Latitude:           lat,
		Longitude:          lon,
		DepthKm:            ValueOr(q.DepthKm, DefaultQuakeDepthKm),
		DaysSinceLastQuake: ValueOr(q.DaysSinceLastQuake, DefaultDaysSinceLastQuake),
		CrustalStrain:      ValueOr(q.CrustalStrain, DefaultCrustalStrain),
		PlateMotionCmYr:    ValueOr(q.PlateMotionCmYr, DefaultPlateMotionCmYr),
		TemperatureC:       ValueOr(q.TemperatureC, DefaultSurfaceTemperatureC),
		PressureMb:         ValueOr(q.PressureMb, DefaultPressureMb),
	}, nil
}

// Coordinates is a WGS-84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EarthquakeResult is the earthquake prediction record.
type EarthquakeResult struct {
	Location                Coordinates `json:"location"`
	DepthKm                 float64     `json:"depth_km"`
	RiskScore               float64     `json:"risk_score"`
	RiskLevel               string      `json:"risk_level"`
	PredictedMagnitudeRange [2]float64  `json:"predicted_magnitude_range"`
	ExpectedMagnitude       float64     `json:"expected_magnitude"`
	ProbabilityMagnitudeGT5 float64     `json:"probability_magnitude_gt_5"`
	ProbabilityMagnitudeGT7 float64     `json:"probability_magnitude_gt_7"`
	TectonicZone            string      `json:"tectonic_zone"`
	TectonicRisk            float64     `json:"tectonic_risk"`
	Recommendation          string      `json:"recommendation"`
	Timestamp               time.Time   `json:"timestamp"`
}

// Earthquake risk levels.
const (
	QuakeLow      = "LOW"
	QuakeModerate = "MODERATE"
	QuakeElevated = "ELEVATED"
	QuakeHigh     = "HIGH"
	QuakeCritical = "CRITICAL"
)

var quakeLevels = []threshold{
	{0.2, QuakeLow},
	{0.4, QuakeModerate},
	{0.6, QuakeElevated},
	{0.8, QuakeHigh},
}

var quakeRecommendations = map[string]string{
	QuakeLow:      "Continue routine monitoring",
	QuakeModerate: "Increase monitoring frequency",
	QuakeElevated: "Enhanced monitoring and public awareness",
	QuakeHigh:     "High alert status - prepare emergency response",
	QuakeCritical: "CRITICAL - Activate emergency protocols immediately",
}

// ClassifyEarthquakeRisk maps a risk score to its level.
func ClassifyEarthquakeRisk(score float64) string {
	return classify(score, quakeLevels, QuakeCritical)
}

// EarthquakeRecommendation returns the fixed guidance for a risk score.
func EarthquakeRecommendation(score float64) string {
	return quakeRecommendations[ClassifyEarthquakeRisk(score)]
}

// ExpectedMagnitude is 4.5 + 2·clamp(depth/50) + 2·strain.
func ExpectedMagnitude(depthKm, strain float64) float64 {
	return 4.5 + 2*Clamp01(depthKm/50) + 2*strain
}

// MagnitudeRange brackets the expected magnitude by ±1.5 within [2, 9].
func MagnitudeRange(expected float64) [2]float64 {
	return [2]float64{math.Max(2, expected-1.5), math.Min(9, expected+1.5)}
}

// TectonicZoneName is the first containing zone's label in declaration order.
func TectonicZoneName(lat, lon float64) string {
	if z, ok := TectonicZones.FirstMatch(lat, lon); ok {
		return z.Label()
	}
	return NonActiveZone
}

// TectonicRisk is the maximum base risk over every containing zone.
func TectonicRisk(lat, lon float64) float64 {
	return TectonicZones.MaxWeight(lat, lon)
}

// EarthquakeLabel scores a synthetic sample from tectonic setting, strain,
// depth and plate motion.
func EarthquakeLabel(in EarthquakeInput) float64 {
	tect := TectonicRisk(in.Latitude, in.Longitude)
	depthFactor := 1 - math.Exp(-in.DepthKm/50)
	return Clamp01(tect*0.2 + in.CrustalStrain*0.3 + depthFactor*0.2 + in.PlateMotionCmYr/10*0.3)
}

// NewEarthquakeResult assembles the result record for a model score.
func NewEarthquakeResult(in EarthquakeInput, score float64) EarthquakeResult {
	score = Clamp01(score)
	expected := ExpectedMagnitude(in.DepthKm, in.CrustalStrain)
	return EarthquakeResult{
		Location:                Coordinates{Latitude: in.Latitude, Longitude: in.Longitude},
		DepthKm:                 in.DepthKm,
		RiskScore:               score,
		RiskLevel:               ClassifyEarthquakeRisk(score),
		PredictedMagnitudeRange: MagnitudeRange(expected),
		ExpectedMagnitude:       expected,
		ProbabilityMagnitudeGT5: Clamp01(0.8 * in.CrustalStrain),
		ProbabilityMagnitudeGT7: Clamp01(0.3 * in.CrustalStrain),
		TectonicZone:            TectonicZoneName(in.Latitude, in.Longitude),
		TectonicRisk:            TectonicRisk(in.Latitude, in.Longitude),
		Recommendation:          EarthquakeRecommendation(score),
		Timestamp:               Now(),
	}
}
