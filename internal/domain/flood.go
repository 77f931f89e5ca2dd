package domain

import (
	"math"
	"time"
)

// Flood input defaults.
const (
	DefaultRainfallMm         = 50.0
	DefaultSoilMoisture       = 0.5
	DefaultElevationM         = 500.0
	DefaultSlopeDeg           = 5.0
	DefaultRiverDistanceKm    = 10.0
	DefaultUrbanization       = 0.3
	DefaultDamCapacityRatio   = 0.5
	DefaultAntecedentMoisture = 0.4
)

// SeriesMoisturePad fills a moisture series shorter than its rainfall series.
const SeriesMoisturePad = 0.5

// FloodFeatureNames is the model schema for the flood hazard.
var FloodFeatureNames = []string{
	"rainfall_mm", "soil_moisture", "elevation_m", "slope_degrees",
	"river_distance_km", "urbanization_factor", "dam_capacity_ratio", "antecedent_moisture",
}

// FloodInput is a fully resolved flood feature set. Latitude and Longitude
// are optional annotations; they are not model features.
type FloodInput struct {
	RainfallMm         float64
	SoilMoisture       float64
	ElevationM         float64
	SlopeDeg           float64
	RiverDistanceKm    float64
	Urbanization       float64
	DamCapacityRatio   float64
	AntecedentMoisture float64

	Location *Coordinates
}

// NewFloodInput returns an input with every field at its default.
func NewFloodInput() FloodInput {
	return FloodInput{
		RainfallMm:         DefaultRainfallMm,
		SoilMoisture:       DefaultSoilMoisture,
		ElevationM:         DefaultElevationM,
		SlopeDeg:           DefaultSlopeDeg,
		RiverDistanceKm:    DefaultRiverDistanceKm,
		Urbanization:       DefaultUrbanization,
		DamCapacityRatio:   DefaultDamCapacityRatio,
		AntecedentMoisture: DefaultAntecedentMoisture,
	}
}

// Features returns the vector in FloodFeatureNames order.
func (in FloodInput) Features() []float64 {
	return []float64{
		in.RainfallMm, in.SoilMoisture, in.ElevationM, in.SlopeDeg,
		in.RiverDistanceKm, in.Urbanization, in.DamCapacityRatio, in.AntecedentMoisture,
	}
}

// FloodGridFeatures is the vector for one flood map cell. Antecedent moisture
// follows the local soil moisture.
func FloodGridFeatures(rainfall, elevation, soil float64) []float64 {
	return []float64{
		rainfall, soil, elevation, DefaultSlopeDeg,
		DefaultRiverDistanceKm, DefaultUrbanization, DefaultDamCapacityRatio, soil,
	}
}

// FloodQuery is a loosely specified flood request; every field is optional.
type FloodQuery struct {
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	RainfallMm         *float64 `json:"rainfall_mm,omitempty"`
	SoilMoisture       *float64 `json:"soil_moisture,omitempty"`
	ElevationM         *float64 `json:"elevation_m,omitempty"`
	SlopeDeg           *float64 `json:"slope_degrees,omitempty"`
	RiverDistanceKm    *float64 `json:"river_distance_km,omitempty"`
	Urbanization       *float64 `json:"urbanization_factor,omitempty"`
	DamCapacityRatio   *float64 `json:"dam_capacity_ratio,omitempty"`
	AntecedentMoisture *float64 `json:"antecedent_moisture,omitempty"`
}

// Resolve applies defaults. Coordinates, when given, must come as a pair.
func (q FloodQuery) Resolve() (FloodInput, error) {
	in := FloodInput{
		RainfallMm:         ValueOr(q.RainfallMm, DefaultRainfallMm),
		SoilMoisture:       ValueOr(q.SoilMoisture, DefaultSoilMoisture),
		ElevationM:         ValueOr(q.ElevationM, DefaultElevationM),
		SlopeDeg:           ValueOr(q.SlopeDeg, DefaultSlopeDeg),
		RiverDistanceKm:    ValueOr(q.RiverDistanceKm, DefaultRiverDistanceKm),
		Urbanization:       ValueOr(q.Urbanization, DefaultUrbanization),
		DamCapacityRatio:   ValueOr(q.DamCapacityRatio, DefaultDamCapacityRatio),
		AntecedentMoisture: ValueOr(q.AntecedentMoisture, DefaultAntecedentMoisture),
	}
	if q.Latitude == nil && q.Longitude == nil {
		return in, nil
	}
	lat, err := RequireCoordinate("latitude", q.Latitude)
	if err != nil {
		return FloodInput{}, err
	}
	lon, err := RequireCoordinate("longitude", q.Longitude)
	if err != nil {
		return FloodInput{}, err
	}
	in.Location = &Coordinates{Latitude: lat, Longitude: lon}
	return in, nil
}

// FloodResult is the flood prediction record.
type FloodResult struct {
	Location             *Coordinates `json:"location,omitempty"`
	RainfallMm           float64      `json:"rainfall_mm"`
	SoilMoisture         float64      `json:"soil_moisture"`
	ElevationM           float64      `json:"elevation_m"`
	SlopeDeg             float64      `json:"slope_degrees"`
	RiskScore            float64      `json:"risk_score"`
	RiskLevel            string       `json:"risk_level"`
	PredictedWaterDepthM float64      `json:"predicted_water_depth_m"`
	FloodProbability     float64      `json:"flood_probability"`
	WarningLevel         string       `json:"warning_level"`
	AffectedAreaSqKm     float64      `json:"affected_area_sq_km"`
	FloodProneRegion     string       `json:"flood_prone_region"`
	RiverBasin           string       `json:"river_basin,omitempty"`
	BasinBaseRisk        float64      `json:"basin_base_risk,omitempty"`
	Recommendation       string       `json:"recommendation"`
	Timestamp            time.Time    `json:"timestamp"`
}

// Flood risk levels.
const (
	FloodNone     = "NO FLOOD RISK"
	FloodLow      = "LOW"
	FloodModerate = "MODERATE"
	FloodHigh     = "HIGH"
	FloodVeryHigh = "VERY HIGH"
	FloodCritical = "CRITICAL"
)

// Flood warning levels.
const (
	WarningGreen  = "GREEN"
	WarningYellow = "YELLOW"
	WarningOrange = "ORANGE"
	WarningRed    = "RED"
)

var floodLevels = []threshold{
	{0.2, FloodNone},
	{0.35, FloodLow},
	{0.5, FloodModerate},
	{0.65, FloodHigh},
	{0.8, FloodVeryHigh},
}

var floodWarnings = []threshold{
	{0.25, WarningGreen},
	{0.4, WarningYellow},
	{0.6, WarningOrange},
}

var floodRecommendations = map[string]string{
	FloodNone:     "Routine monitoring. No immediate action needed.",
	FloodLow:      "Monitor weather forecasts. Prepare evacuation routes.",
	FloodModerate: "Alert issued. Review emergency plans. Prepare shelters.",
	FloodHigh:     "Warning issued. Begin pre-positioning of resources.",
	FloodVeryHigh: "Flood Watch active. Activate emergency operations center.",
	FloodCritical: "FLOOD WARNING - Evacuate immediately. All personnel to safe zones.",
}

// ClassifyFloodRisk maps a risk score to its level.
func ClassifyFloodRisk(score float64) string {
	return classify(score, floodLevels, FloodCritical)
}

// FloodRecommendation returns the fixed guidance for a risk score.
func FloodRecommendation(score float64) string {
	return floodRecommendations[ClassifyFloodRisk(score)]
}

// FloodWarningLevel blends the score with normalized rainfall.
func FloodWarningLevel(score, rainfallMm float64) string {
	combined := 0.6*score + 0.4*Clamp01(rainfallMm/100)
	return classify(combined, floodWarnings, WarningRed)
}

// RunoffCoefficient falls with elevation and slope.
func RunoffCoefficient(elevationM, slopeDeg float64) float64 {
	return (1 - Clamp01(elevationM/2000)) * (1 - Clamp01(slopeDeg/30))
}

// WaterDepth is the standing water estimate in metres.
func WaterDepth(rainfallMm, soilMoisture, elevationM, slopeDeg float64) float64 {
	infiltration := (1 - soilMoisture) * 10
	excess := math.Max(0, rainfallMm-infiltration)
	return math.Max(0, excess*RunoffCoefficient(elevationM, slopeDeg)/10)
}

// AffectedArea estimates the flooded area in km².
func AffectedArea(score, elevationM, slopeDeg float64) float64 {
	return 100 * score * Clamp01(1-elevationM/2000) * Clamp01(1-slopeDeg/30)
}

// FloodProbability is 1.2·score capped at 1.
func FloodProbability(score float64) float64 {
	return Clamp01(1.2 * score)
}

// FloodProneRegion describes the terrain by elevation.
func FloodProneRegion(elevationM float64) string {
	switch {
	case elevationM < 500:
		return "High flood-prone area (low elevation)"
	case elevationM < 1000:
		return "Moderate flood-prone area"
	default:
		return "Low flood-prone area (high elevation)"
	}
}

// Curve numbers per hydrologic soil type.
var CurveNumbers = map[string]float64{
	"sand":  50,
	"loam":  75,
	"clay":  85,
	"urban": 90,
}

// DefaultCurveNumber applies to soil types missing from CurveNumbers.
const DefaultCurveNumber = 75.0

// CurveNumberRunoff estimates direct runoff in mm with the SCS curve number
// method. Rainfall at or below the initial abstraction yields no runoff.
func CurveNumberRunoff(rainfallMm float64, soilType string) float64 {
	cn, ok := CurveNumbers[soilType]
	if !ok {
		cn = DefaultCurveNumber
	}
	s := 25400/cn - 254
	ia := 0.2 * s
	if rainfallMm <= ia {
		return 0
	}
	return (rainfallMm - ia) * (rainfallMm - ia) / (rainfallMm + 0.8*s)
}

// FloodLabel scores a synthetic flood sample. Rainfall dominates, soil
// saturation is next, terrain and infrastructure shade the result.
func FloodLabel(in FloodInput) float64 {
	return Clamp01(0.55*Clamp01(in.RainfallMm/120) +
		0.25*in.SoilMoisture +
		0.05*Clamp01(1-in.ElevationM/2000) +
		0.03*Clamp01(1-in.SlopeDeg/30) +
		0.05*Clamp01(1-in.RiverDistanceKm/50) +
		0.03*in.Urbanization +
		0.02*(1-in.DamCapacityRatio) +
		0.02*in.AntecedentMoisture)
}

// NewFloodResult assembles the result record for a model score.
func NewFloodResult(in FloodInput, score float64) FloodResult {
	score = Clamp01(score)
	res := FloodResult{
		Location:             in.Location,
		RainfallMm:           in.RainfallMm,
		SoilMoisture:         in.SoilMoisture,
		ElevationM:           in.ElevationM,
		SlopeDeg:             in.SlopeDeg,
		RiskScore:            score,
		RiskLevel:            ClassifyFloodRisk(score),
		PredictedWaterDepthM: WaterDepth(in.RainfallMm, in.SoilMoisture, in.ElevationM, in.SlopeDeg),
		FloodProbability:     FloodProbability(score),
		WarningLevel:         FloodWarningLevel(score, in.RainfallMm),
		AffectedAreaSqKm:     AffectedArea(score, in.ElevationM, in.SlopeDeg),
		FloodProneRegion:     FloodProneRegion(in.ElevationM),
		Recommendation:       FloodRecommendation(score),
		Timestamp:            Now(),
	}
	if in.Location != nil {
		if z, ok := FloodProneBasins.FirstMatch(in.Location.Latitude, in.Location.Longitude); ok {
			res.RiverBasin = z.Name
			res.BasinBaseRisk = z.Weight
		} else {
			res.BasinBaseRisk = FloodProneBasins.DefaultWeight
		}
	}
	return res
}
