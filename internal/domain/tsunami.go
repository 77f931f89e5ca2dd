package domain

import (
	"math"
	"time"
)

// Tsunami input defaults.
const (
	DefaultTsunamiMagnitude  = 7.0
	DefaultEpicenterDepthKm  = 10.0
	DefaultCoastDistanceKm   = 50.0
	DefaultCoastSlope        = 0.02
	DefaultOceanDepthM       = 2000.0
	DefaultWaterTemperatureC = 15.0
	DefaultSSTAnomaly        = 0.0
)

// Coast parameters assumed when a tsunami is derived from an earthquake.
const (
	CascadeCoastDistanceKm = 100.0
	CascadeCoastSlope      = 0.02
	CascadeOceanDepthM     = 2000.0
)

// Gravity is the standard acceleration used for shallow-water wave speed.
const Gravity = 9.81

// KmPerDegree converts planar degree offsets to kilometres.
const KmPerDegree = 111.0

// TsunamiFeatureNames is the model schema for the tsunami hazard.
var TsunamiFeatureNames = []string{
	"earthquake_magnitude", "epicenter_depth_km", "distance_to_coast_km",
	"coast_slope", "ocean_depth_m", "latitude", "longitude",
	"water_temperature_c", "sst_anomaly",
}

// TsunamiInput is a fully resolved tsunami feature set.
type TsunamiInput struct {
	Magnitude         float64
	EpicenterDepthKm  float64
	CoastDistanceKm   float64
	CoastSlope        float64
	OceanDepthM       float64
	Latitude          float64
	Longitude         float64
	WaterTemperatureC float64
	SSTAnomaly        float64
}

// NewTsunamiInput returns an input with every field at its default.
func NewTsunamiInput() TsunamiInput {
	return TsunamiInput{
		Magnitude:         DefaultTsunamiMagnitude,
		EpicenterDepthKm:  DefaultEpicenterDepthKm,
		CoastDistanceKm:   DefaultCoastDistanceKm,
		CoastSlope:        DefaultCoastSlope,
		OceanDepthM:       DefaultOceanDepthM,
		WaterTemperatureC: DefaultWaterTemperatureC,
		SSTAnomaly:        DefaultSSTAnomaly,
	}
}

// Features returns the vector in TsunamiFeatureNames order.
func (in TsunamiInput) Features() []float64 {
	return []float64{
		in.Magnitude, in.EpicenterDepthKm, in.CoastDistanceKm,
		in.CoastSlope, in.OceanDepthM, in.Latitude, in.Longitude,
		in.WaterTemperatureC, in.SSTAnomaly,
	}
}

// TsunamiQuery is a loosely specified tsunami request; every field is optional.
type TsunamiQuery struct {
	Magnitude         *float64 `json:"magnitude,omitempty"`
	EpicenterDepthKm  *float64 `json:"depth_km,omitempty"`
	CoastDistanceKm   *float64 `json:"distance_to_coast_km,omitempty"`
	CoastSlope        *float64 `json:"slope,omitempty"`
	OceanDepthM       *float64 `json:"ocean_depth_m,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	WaterTemperatureC *float64 `json:"water_temperature_c,omitempty"`
	SSTAnomaly        *float64 `json:"sst_anomaly,omitempty"`
}

// Resolve applies defaults to every field.
func (q TsunamiQuery) Resolve() TsunamiInput {
	return TsunamiInput{
		Magnitude:         ValueOr(q.Magnitude, DefaultTsunamiMagnitude),
		EpicenterDepthKm:  ValueOr(q.EpicenterDepthKm, DefaultEpicenterDepthKm),
		CoastDistanceKm:   ValueOr(q.CoastDistanceKm, DefaultCoastDistanceKm),
		CoastSlope:        ValueOr(q.CoastSlope, DefaultCoastSlope),
		OceanDepthM:       ValueOr(q.OceanDepthM, DefaultOceanDepthM),
		Latitude:          ValueOr(q.Latitude, 0),
		Longitude:         ValueOr(q.Longitude, 0),
		WaterTemperatureC: ValueOr(q.WaterTemperatureC, DefaultWaterTemperatureC),
		SSTAnomaly:        ValueOr(q.SSTAnomaly, DefaultSSTAnomaly),
	}
}

// TsunamiFromEarthquake maps an earthquake prediction onto tsunami inputs
// with default coast parameters.
func TsunamiFromEarthquake(eq EarthquakeResult) TsunamiInput {
	in := NewTsunamiInput()
	in.Magnitude = eq.ExpectedMagnitude
	in.EpicenterDepthKm = eq.DepthKm
	in.Latitude = eq.Location.Latitude
	in.Longitude = eq.Location.Longitude
	in.CoastDistanceKm = CascadeCoastDistanceKm
	in.CoastSlope = CascadeCoastSlope
	in.OceanDepthM = CascadeOceanDepthM
	return in
}

// PlanarDistanceKm is the flat-earth distance between two points.
func PlanarDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Hypot(lat1-lat2, lon1-lon2) * KmPerDegree
}

// WaveSpeed is the shallow-water phase speed sqrt(g·h) in m/s. Dry or
// negative depths yield zero.
func WaveSpeed(oceanDepthM float64) float64 {
	if oceanDepthM <= 0 {
		return 0
	}
	return math.Sqrt(Gravity * oceanDepthM)
}

// SeismicMoment is 10^(1.5·M + 4.8).
func SeismicMoment(magnitude float64) float64 {
	return math.Pow(10, 1.5*magnitude+4.8)
}

// WaveHeight estimates the maximum open-ocean wave height in metres.
func WaveHeight(magnitude, depthKm, oceanDepthM float64) float64 {
	if oceanDepthM <= 0 {
		return 0
	}
	amplitude := SeismicMoment(magnitude) / 2e16 * math.Exp(-depthKm/50)
	return math.Max(0, amplitude*math.Sqrt(oceanDepthM/1000))
}

// TravelTimeHours is distance over speed/3.6; zero when the wave cannot travel.
func TravelTimeHours(distanceKm, speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	return math.Max(0, distanceKm/(speed/3.6))
}

// EscapeTimeMinutes leaves a 30 minute margin but never drops below 5.
func EscapeTimeMinutes(travelHours float64) float64 {
	return math.Max(5, travelHours*60-30)
}

// TsunamiLabel scores a synthetic tsunami sample.
func TsunamiLabel(in TsunamiInput) float64 {
	magFactor := (in.Magnitude - 4) / 5
	zone := 0.1
	if SubductionZones.Any(in.Latitude, in.Longitude) {
		zone = 0.8
	}
	vuln := CoastalVulnerability.FirstWeight(in.Latitude, in.Longitude)
	return Clamp01(magFactor*0.4 +
		math.Exp(-in.EpicenterDepthKm/50)*0.2 +
		math.Exp(-in.CoastDistanceKm/200)*0.2 +
		zone*0.1 +
		vuln*0.1)
}

// Tsunami risk levels.
const (
	TsunamiNone     = "NO TSUNAMI THREAT"
	TsunamiLow      = "LOW"
	TsunamiModerate = "MODERATE"
	TsunamiHigh     = "HIGH"
	TsunamiCritical = "CRITICAL"
)

// Tsunami threat levels.
const (
	ThreatAdvisory     = "ADVISORY"
	ThreatWatch        = "WATCH"
	ThreatWarning      = "WARNING"
	ThreatMajorWarning = "MAJOR WARNING"
)

var tsunamiLevels = []threshold{
	{0.2, TsunamiNone},
	{0.4, TsunamiLow},
	{0.6, TsunamiModerate},
	{0.75, TsunamiHigh},
}

var threatLevels = []threshold{
	{0.5, ThreatAdvisory},
	{1.0, ThreatWatch},
	{2.0, ThreatWarning},
}

// ClassifyTsunamiRisk blends the model score with normalized wave height.
func ClassifyTsunamiRisk(score, waveHeightM float64) string {
	combined := 0.6*score + 0.4*Clamp01(waveHeightM/10)
	return classify(combined, tsunamiLevels, TsunamiCritical)
}

// TsunamiThreatLevel depends on wave height alone.
func TsunamiThreatLevel(waveHeightM float64) string {
	return classify(waveHeightM, threatLevels, ThreatMajorWarning)
}

// TsunamiRecommendation follows the threat level; a major wave arriving
// within the hour gets the more urgent wording.
func TsunamiRecommendation(waveHeightM, travelHours float64) string {
	switch TsunamiThreatLevel(waveHeightM) {
	case ThreatAdvisory:
		return "Monitor earthquake reports. No immediate action needed."
	case ThreatWatch:
		return "Tsunami Watch issued. Be prepared to move to higher ground."
	case ThreatWarning:
		return "Tsunami Warning issued. Evacuate immediately to higher ground."
	}
	if travelHours < 1 {
		return "MAJOR TSUNAMI WARNING - EVACUATE IMMEDIATELY. Go to nearest high ground NOW!"
	}
	return "MAJOR TSUNAMI WARNING - Begin immediate mass evacuation. Move to highest available ground."
}

// SeismicSource describes the triggering earthquake.
type SeismicSource struct {
	Magnitude float64     `json:"magnitude"`
	DepthKm   float64     `json:"depth_km"`
	Location  Coordinates `json:"location"`
}

// TsunamiWave holds open-ocean wave properties.
type TsunamiWave struct {
	MaximumHeightM   float64 `json:"maximum_height_m"`
	EstimatedSpeedMS float64 `json:"estimated_speed_ms"`
	PeriodMinutes    float64 `json:"period_minutes"`
}

// CoastalImpact holds onshore effects.
type CoastalImpact struct {
	InundationDepthM float64 `json:"estimated_inundation_depth_m"`
	MaximumRunUpM    float64 `json:"maximum_run_up_m"`
	AffectedAreaSqKm float64 `json:"affected_area_sq_km"`
}

// TsunamiTiming holds arrival estimates.
type TsunamiTiming struct {
	TravelTimeHours     float64   `json:"travel_time_hours"`
	ArrivalTime         time.Time `json:"arrival_time"`
	TimeToEscapeMinutes float64   `json:"time_to_escape_minutes"`
}

// TsunamiRiskAssessment holds the classifications.
type TsunamiRiskAssessment struct {
	RiskScore             float64 `json:"risk_score"`
	RiskLevel             string  `json:"risk_level"`
	ThreatLevel           string  `json:"threat_level"`
	CoastalVulnerability  float64 `json:"coastal_vulnerability"`
	InMajorSubductionZone bool    `json:"in_major_subduction_zone"`
}

// TsunamiResult is the tsunami prediction record.
type TsunamiResult struct {
	Earthquake     SeismicSource         `json:"earthquake"`
	Wave           TsunamiWave           `json:"tsunami_wave"`
	CoastalImpact  CoastalImpact         `json:"coastal_impact"`
	Timing         TsunamiTiming         `json:"timing"`
	RiskAssessment TsunamiRiskAssessment `json:"risk_assessment"`
	Recommendation string                `json:"recommendation"`
	Timestamp      time.Time             `json:"timestamp"`
}

// NewTsunamiResult assembles the result record for a model score.
func NewTsunamiResult(in TsunamiInput, score float64) TsunamiResult {
	score = Clamp01(score)
	now := Now()

	speed := WaveSpeed(in.OceanDepthM)
	height := WaveHeight(in.Magnitude, in.EpicenterDepthKm, in.OceanDepthM)
	travel := TravelTimeHours(in.CoastDistanceKm, speed)
	inundation := math.Max(0, height*in.CoastSlope*10)

	var period float64
	if speed > 0 {
		period = in.CoastDistanceKm * 1000 / speed / 60
	}

	return TsunamiResult{
		Earthquake: SeismicSource{
			Magnitude: in.Magnitude,
			DepthKm:   in.EpicenterDepthKm,
			Location:  Coordinates{Latitude: in.Latitude, Longitude: in.Longitude},
		},
		Wave: TsunamiWave{
			MaximumHeightM:   height,
			EstimatedSpeedMS: speed,
			PeriodMinutes:    period,
		},
		CoastalImpact: CoastalImpact{
			InundationDepthM: inundation,
			MaximumRunUpM:    math.Max(0, height*1.5*in.CoastSlope),
			AffectedAreaSqKm: height * inundation * 100,
		},
		Timing: TsunamiTiming{
			TravelTimeHours:     travel,
			ArrivalTime:         now.Add(time.Duration(travel * float64(time.Hour))),
			TimeToEscapeMinutes: EscapeTimeMinutes(travel),
		},
		RiskAssessment: TsunamiRiskAssessment{
			RiskScore:             score,
			RiskLevel:             ClassifyTsunamiRisk(score, height),
			ThreatLevel:           TsunamiThreatLevel(height),
			CoastalVulnerability:  CoastalVulnerability.FirstWeight(in.Latitude, in.Longitude),
			InMajorSubductionZone: SubductionZones.Any(in.Latitude, in.Longitude),
		},
		Recommendation: TsunamiRecommendation(height, travel),
		Timestamp:      now,
	}
}
