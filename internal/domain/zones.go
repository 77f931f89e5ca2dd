package domain

import (
	"github.com/twpayne/go-geom"
)

// GeoZone is a named closed rectangle with a scalar weight. The weight's
// meaning depends on the table: base tectonic risk, flood-prone base risk,
// subduction maximum magnitude or coastal vulnerability.
type GeoZone struct {
	Name   string
	Family string
	Weight float64
	bounds *geom.Bounds
}

// NewGeoZone builds a zone from latitude and longitude ranges.
func NewGeoZone(name, family string, latMin, latMax, lonMin, lonMax, weight float64) GeoZone {
	return GeoZone{
		Name:   name,
		Family: family,
		Weight: weight,
		bounds: geom.NewBounds(geom.XY).Set(lonMin, latMin, lonMax, latMax),
	}
}

// Contains reports whether the point lies inside or on the edge of the zone.
func (z GeoZone) Contains(lat, lon float64) bool {
	return z.bounds.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

// Label is the zone name qualified by its family when it has one,
// e.g. "Japan (ring_of_fire)".
func (z GeoZone) Label() string {
	if z.Family == "" {
		return z.Name
	}
	return z.Name + " (" + z.Family + ")"
}

// ZoneSet is an ordered, read-only zone table with a default weight for
// points outside every zone.
type ZoneSet struct {
	Zones         []GeoZone
	DefaultWeight float64
}

// MaxWeight returns the largest weight over every zone containing the point,
// or the default weight when none does. The default also acts as a floor.
func (s ZoneSet) MaxWeight(lat, lon float64) float64 {
	best := s.DefaultWeight
	for _, z := range s.Zones {
		if z.Contains(lat, lon) && z.Weight > best {
			best = z.Weight
		}
	}
	return best
}

// FirstMatch returns the first containing zone in declaration order.
func (s ZoneSet) FirstMatch(lat, lon float64) (GeoZone, bool) {
	for _, z := range s.Zones {
		if z.Contains(lat, lon) {
			return z, true
		}
	}
	return GeoZone{}, false
}

// FirstWeight returns the weight of the first containing zone, or the default.
func (s ZoneSet) FirstWeight(lat, lon float64) float64 {
	if z, ok := s.FirstMatch(lat, lon); ok {
		return z.Weight
	}
	return s.DefaultWeight
}

// Any reports whether any zone contains the point.
func (s ZoneSet) Any(lat, lon float64) bool {
	_, ok := s.FirstMatch(lat, lon)
	return ok
}

// Zone families for the earthquake table, in scan order.
const (
	FamilyRingOfFire = "ring_of_fire"
	FamilyAlpineBelt = "alpine_belt"
)

// NonActiveZone is the tectonic zone label for points outside every zone.
const NonActiveZone = "Non-active zone"

// TectonicZones lists seismic zones family by family. Base risk defaults to
// 0.1 outside every zone.
var TectonicZones = ZoneSet{
	DefaultWeight: 0.1,
	Zones: []GeoZone{
		NewGeoZone("Pacific Northwest", FamilyRingOfFire, 45, 50, -125, -120, 0.8),
		NewGeoZone("California", FamilyRingOfFire, 32, 42, -125, -114, 0.85),
		NewGeoZone("Mexico", FamilyRingOfFire, 14, 20, -105, -95, 0.75),
		NewGeoZone("Japan", FamilyRingOfFire, 30, 45, 130, 145, 0.9),
		NewGeoZone("Philippines", FamilyRingOfFire, 5, 20, 120, 135, 0.8),
		NewGeoZone("Mediterranean", FamilyAlpineBelt, 30, 45, -10, 45, 0.7),
		NewGeoZone("India-Himalayas", FamilyAlpineBelt, 24, 35, 68, 95, 0.75),
		NewGeoZone("Central Asia", FamilyAlpineBelt, 35, 50, 65, 100, 0.7),
	},
}

// FloodProneBasins lists river basins with their base flood risk.
var FloodProneBasins = ZoneSet{
	DefaultWeight: 0.1,
	Zones: []GeoZone{
		NewGeoZone("Ganga Basin", "", 22, 32, 72, 88, 0.7),
		NewGeoZone("Brahmaputra", "", 24, 30, 88, 95, 0.75),
		NewGeoZone("Amazon Basin", "", -10, 5, -75, -50, 0.7),
		NewGeoZone("Mississippi", "", 28, 45, -100, -85, 0.6),
		NewGeoZone("Yangtze", "", 28, 35, 108, 120, 0.65),
	},
}

// SubductionZones lists major tsunami source zones weighted by their maximum
// credible magnitude.
var SubductionZones = ZoneSet{
	Zones: []GeoZone{
		NewGeoZone("Cascadia", "", 43, 49, -126, -123, 9.0),
		NewGeoZone("Japan Trench", "", 30, 45, 140, 145, 9.2),
		NewGeoZone("Kuril-Kamchatka", "", 45, 60, 150, 160, 8.8),
		NewGeoZone("Indian Ocean", "", -10, 5, 90, 100, 9.0),
		NewGeoZone("Peru-Chile", "", -50, -10, -80, -70, 9.5),
	},
}

// CoastalVulnerability lists exposed coastlines. Unlisted coasts default to 0.3.
var CoastalVulnerability = ZoneSet{
	DefaultWeight: 0.3,
	Zones: []GeoZone{
		NewGeoZone("Japanese Coast", "", 30, 45, 130, 145, 0.9),
		NewGeoZone("Indian Ocean Rim", "", -10, 5, 40, 100, 0.85),
		NewGeoZone("Pacific Northwest Coast", "", 43, 49, -127, -123, 0.8),
	},
}
