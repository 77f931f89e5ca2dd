// Package domain models the hazard risk vocabulary shared by the predictors,
// the orchestrator and the transport adapters: per-hazard inputs and results,
// the static zone tables, the classification tables and the physical
// post-processing formulas. Everything here is a pure function of its inputs
// except timestamps, which come from the package clock (see [SetClock]).
//
// # Hazards
//
// Three independent hazards are scored: earthquake, flood and tsunami. Each
// has a fixed-order feature vector; the order is the schema of the model
// trained on it and must never change once a model is fitted.
//
//	earthquake: latitude, longitude, depth_km, days_since_last_quake,
//	            crustal_strain, plate_motion_cm_yr, temperature_c, pressure_mb
//	flood:      rainfall_mm, soil_moisture, elevation_m, slope_degrees,
//	            river_distance_km, urbanization_factor, dam_capacity_ratio,
//	            antecedent_moisture
//	tsunami:    earthquake_magnitude, epicenter_depth_km, distance_to_coast_km,
//	            coast_slope, ocean_depth_m, latitude, longitude,
//	            water_temperature_c, sst_anomaly
//
// # Classification tables
//
// All thresholds are strict upper bounds ("<").
//
//	Earthquake risk:  <0.2 LOW | <0.4 MODERATE | <0.6 ELEVATED | <0.8 HIGH | else CRITICAL
//	Flood risk:       <0.2 NO FLOOD RISK | <0.35 LOW | <0.5 MODERATE | <0.65 HIGH | <0.8 VERY HIGH | else CRITICAL
//	Flood warning:    0.6·score + 0.4·clamp(rain/100): <0.25 GREEN | <0.4 YELLOW | <0.6 ORANGE | else RED
//	Tsunami risk:     0.6·score + 0.4·clamp(height/10): <0.2 NO TSUNAMI THREAT | <0.4 LOW | <0.6 MODERATE | <0.75 HIGH | else CRITICAL
//	Tsunami threat:   wave height only: <0.5m ADVISORY | <1m WATCH | <2m WARNING | else MAJOR WARNING
//
// # Zone tables
//
// Zones are closed latitude/longitude rectangles with a scalar weight. Lookups
// never fail: points outside every zone get the table's default weight.
//
// The earthquake table keeps a known asymmetry: the reported zone name is the
// first containing zone in declaration order, while the tectonic risk is the
// maximum weight over every containing zone. The two can disagree when zones
// overlap; both behaviors are preserved deliberately (see [ZoneSet.FirstMatch]
// and [ZoneSet.MaxWeight]).
//
// # Summary placeholders
//
// The multi-hazard summary's overall level and threats are constants, not an
// aggregation of the three results. See [PlaceholderSummary].
package domain
