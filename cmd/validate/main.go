// Command validate checks the hazard engine's documented properties over
// randomly drawn inputs: score bounds and classification tables, physical
// guards, magnitude ranges, idempotence, batch ordering, grid consistency and
// the reference scenarios. Each phase reports PASS or FAIL with details.
//
// Usage:
//
//	go run ./cmd/validate -n 500 -seed 7
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/engine"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	checks int
	errors []string
}

func (p *phase) check(ok bool, format string, args ...any) {
	p.checks++
	if !ok {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	n := flag.Int("n", 500, "random inputs per phase")
	seed := flag.Uint64("seed", 7, "seed for inputs and model training")
	samples := flag.Int("training-samples", 500, "synthetic training samples per model")
	flag.Parse()

	if *n < 1 || *samples < 10 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*n, *seed, *samples); code != 0 {
		os.Exit(code)
	}
}

func run(n int, seed uint64, samples int) int {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Hazard Engine Property Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(engine.Config{Samples: samples, Seed: seed}, engine.SyntheticFields{Seed: seed}, nil,
		logger, observability.NewMetricsForTesting())

	start := time.Now()
	if err := eng.EnsureTrained(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: train models: %v\n", err)
		return 1
	}
	fmt.Printf("Trained 3 models on %d samples each in %s\n", samples, time.Since(start).Round(time.Millisecond))

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	phases := []*phase{
		validateScoreBounds(eng, rng, n),
		validateFloodDepth(eng, rng, n),
		validateTsunamiPhysics(eng, rng, n),
		validateMagnitudeRange(eng, rng, n),
		validateIdempotence(eng, rng, n),
		validateOrdering(eng, rng, n),
		validateScenarios(eng),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %5d checks  %s\n", p.name, p.checks, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == 20 {
				fmt.Printf("  ... %d more\n", len(p.errors)-i)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Random inputs ──

func uniform(rng *rand.Rand, lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

func randomEarthquake(rng *rand.Rand) domain.EarthquakeInput {
	in := domain.NewEarthquakeInput(uniform(rng, -90, 90), uniform(rng, -180, 180))
	in.DepthKm = uniform(rng, 0, 100)
	in.DaysSinceLastQuake = uniform(rng, 0, 3650)
	in.CrustalStrain = rng.Float64()
	in.PlateMotionCmYr = uniform(rng, 0, 10)
	return in
}

func randomFlood(rng *rand.Rand) domain.FloodInput {
	in := domain.NewFloodInput()
	in.RainfallMm = uniform(rng, 0, 400)
	in.SoilMoisture = rng.Float64()
	in.ElevationM = uniform(rng, 0, 3000)
	in.SlopeDeg = uniform(rng, 0, 45)
	in.RiverDistanceKm = uniform(rng, 0, 100)
	in.Urbanization = rng.Float64()
	in.DamCapacityRatio = rng.Float64()
	in.AntecedentMoisture = rng.Float64()
	return in
}

func randomTsunami(rng *rand.Rand) domain.TsunamiInput {
	in := domain.NewTsunamiInput()
	in.Magnitude = uniform(rng, 5, 9.5)
	in.EpicenterDepthKm = uniform(rng, 0, 100)
	in.CoastDistanceKm = uniform(rng, 1, 1000)
	in.CoastSlope = uniform(rng, 0.001, 0.1)
	in.OceanDepthM = uniform(rng, 10, 6000)
	in.Latitude = uniform(rng, -60, 60)
	in.Longitude = uniform(rng, -180, 180)
	return in
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

// ── Phase 1: score bounds and classification tables ──

func validateScoreBounds(eng *engine.Engine, rng *rand.Rand, n int) *phase {
	p := &phase{name: "Phase 1: Scores in [0,1], labels match tables"}
	for i := range n {
		eq, err := eng.Earthquake().Predict(randomEarthquake(rng))
		if err != nil {
			p.check(false, "earthquake %d: %v", i, err)
			continue
		}
		p.check(inUnit(eq.RiskScore), "earthquake %d: score %v", i, eq.RiskScore)
		p.check(eq.RiskLevel == domain.ClassifyEarthquakeRisk(eq.RiskScore), "earthquake %d: level %q for %v", i, eq.RiskLevel, eq.RiskScore)

		fl, err := eng.Flood().Predict(randomFlood(rng))
		if err != nil {
			p.check(false, "flood %d: %v", i, err)
			continue
		}
		p.check(inUnit(fl.RiskScore), "flood %d: score %v", i, fl.RiskScore)
		p.check(fl.RiskLevel == domain.ClassifyFloodRisk(fl.RiskScore), "flood %d: level %q for %v", i, fl.RiskLevel, fl.RiskScore)

		ts, err := eng.Tsunami().Predict(randomTsunami(rng))
		if err != nil {
			p.check(false, "tsunami %d: %v", i, err)
			continue
		}
		ra := ts.RiskAssessment
		p.check(inUnit(ra.RiskScore), "tsunami %d: score %v", i, ra.RiskScore)
		p.check(ra.ThreatLevel == domain.TsunamiThreatLevel(ts.Wave.MaximumHeightM), "tsunami %d: threat %q for %v m", i, ra.ThreatLevel, ts.Wave.MaximumHeightM)
		p.check((ra.ThreatLevel == domain.ThreatAdvisory) == (ts.Wave.MaximumHeightM < 0.5),
			"tsunami %d: advisory/height mismatch (%q, %v m)", i, ra.ThreatLevel, ts.Wave.MaximumHeightM)
	}
	return p
}

// ── Phase 2: flood water depth ──

func validateFloodDepth(eng *engine.Engine, rng *rand.Rand, n int) *phase {
	p := &phase{name: "Phase 2: Flood water depth >= 0"}
	for i := range n {
		in := randomFlood(rng)
		res, err := eng.Flood().Predict(in)
		if err != nil {
			p.check(false, "flood %d: %v", i, err)
			continue
		}
		p.check(res.PredictedWaterDepthM >= 0, "flood %d: depth %v for rain %v", i, res.PredictedWaterDepthM, in.RainfallMm)
		for _, soil := range []string{"sand", "loam", "clay", "unknown"} {
			q := domain.CurveNumberRunoff(in.RainfallMm, soil)
			p.check(q >= 0 && q <= in.RainfallMm, "runoff %s: %v for rain %v", soil, q, in.RainfallMm)
		}
	}
	return p
}

// ── Phase 3: tsunami physics ──

func validateTsunamiPhysics(eng *engine.Engine, rng *rand.Rand, n int) *phase {
	p := &phase{name: "Phase 3: Tsunami height >= 0, travel time > 0"}
	for i := range n {
		in := randomTsunami(rng)
		res, err := eng.Tsunami().Predict(in)
		if err != nil {
			p.check(false, "tsunami %d: %v", i, err)
			continue
		}
		p.check(res.Wave.MaximumHeightM >= 0, "tsunami %d: height %v", i, res.Wave.MaximumHeightM)
		p.check(res.Timing.TravelTimeHours > 0, "tsunami %d: travel %v h over %v km", i, res.Timing.TravelTimeHours, in.CoastDistanceKm)
	}

	dry := domain.NewTsunamiInput()
	dry.OceanDepthM = 0
	res, err := eng.Tsunami().Predict(dry)
	p.check(err == nil, "dry ocean: %v", err)
	p.check(res.Wave.EstimatedSpeedMS == 0 && res.Timing.TravelTimeHours == 0, "dry ocean: speed %v travel %v",
		res.Wave.EstimatedSpeedMS, res.Timing.TravelTimeHours)
	return p
}

// ── Phase 4: magnitude range ──

func validateMagnitudeRange(eng *engine.Engine, rng *rand.Rand, n int) *phase {
	p := &phase{name: "Phase 4: Earthquake magnitude range"}
	for i := range n {
		res, err := eng.Earthquake().Predict(randomEarthquake(rng))
		if err != nil {
			p.check(false, "earthquake %d: %v", i, err)
			continue
		}
		r := res.PredictedMagnitudeRange
		p.check(r[0] <= res.ExpectedMagnitude && res.ExpectedMagnitude <= r[1], "earthquake %d: %v outside %v", i, res.ExpectedMagnitude, r)
		p.check(r[0] >= 2 && r[1] <= 9, "earthquake %d: range %v", i, r)
	}
	return p
}

// ── Phase 5: idempotence ──

func validateIdempotence(eng *engine.Engine, rng *rand.Rand, n int) *phase {
	p := &phase{name: "Phase 5: Repeated predictions are identical"}
	for i := range n {
		in := randomFlood(rng)
		a, errA := eng.Flood().Predict(in)
		b, errB := eng.Flood().Predict(in)
		p.check(errA == nil && errB == nil, "flood %d: %v %v", i, errA, errB)
		p.check(a == b, "flood %d: %+v != %+v", i, a, b)

		eq := randomEarthquake(rng)
		c, _ := eng.Earthquake().Predict(eq)
		d, _ := eng.Earthquake().Predict(eq)
		p.check(c == d, "earthquake %d: %+v != %+v", i, c, d)
	}
	return p
}

// ── Phase 6: batch order and grid consistency ──

func validateOrdering(eng *engine.Engine, rng *rand.Rand, n int) *phase {
	p := &phase{name: "Phase 6: Batch order, series length, grid cells"}

	queries := make([]domain.EarthquakeQuery, n)
	for i := range queries {
		lat, lon := uniform(rng, -60, 60), uniform(rng, -180, 180)
		queries[i] = domain.EarthquakeQuery{Latitude: &lat, Longitude: &lon}
	}
	batch, err := eng.Earthquake().PredictBatch(queries)
	p.check(err == nil, "batch: %v", err)
	p.check(len(batch) == n, "batch: %d results for %d queries", len(batch), n)
	for i := range min(len(batch), n) {
		p.check(batch[i].Location.Latitude == *queries[i].Latitude, "batch %d: out of order", i)
	}

	rain := make([]float64, n)
	for i := range rain {
		rain[i] = uniform(rng, 0, 300)
	}
	moisture := make([]float64, n/2)
	for i := range moisture {
		moisture[i] = rng.Float64()
	}
	series, err := eng.Flood().PredictTemporalSeries(rain, moisture)
	p.check(err == nil, "series: %v", err)
	p.check(len(series) == n, "series: %d results for %d steps", len(series), n)
	for i := range min(len(series), n) {
		p.check(series[i].RainfallMm == rain[i], "series %d: out of order", i)
	}

	lats := domain.Linspace(-30, 30, 7)
	lons := domain.Linspace(100, 160, 9)
	grid, err := eng.Earthquake().HighRiskZones(context.Background(), lats, lons)
	p.check(err == nil, "grid: %v", err)
	for i, lat := range lats {
		for j, lon := range lons {
			if i >= len(grid) || j >= len(grid[i]) {
				p.check(false, "grid: missing cell %d,%d", i, j)
				continue
			}
			want, err := eng.Earthquake().Model().Predict(domain.EarthquakeGridFeatures(lat, lon))
			p.check(err == nil && grid[i][j] == domain.Clamp01(want), "grid %d,%d: %v != %v", i, j, grid[i][j], want)
		}
	}
	return p
}

// ── Phase 7: reference scenarios ──

func validateScenarios(eng *engine.Engine) *phase {
	p := &phase{name: "Phase 7: Reference scenarios"}

	eq, err := eng.PredictEarthquake(35, 140, 20, 0.9)
	p.check(err == nil, "japan: %v", err)
	p.check(strings.HasPrefix(eq.TectonicZone, "Japan"), "japan: zone %q", eq.TectonicZone)
	p.check(eq.TectonicRisk == 0.9, "japan: tectonic risk %v", eq.TectonicRisk)
	p.check(math.Abs(eq.ExpectedMagnitude-7.1) < 1e-9, "japan: expected magnitude %v", eq.ExpectedMagnitude)

	dry, err := eng.PredictFlood(0, 0, 10, 0.3)
	p.check(err == nil, "dry flood: %v", err)
	p.check(slices.Contains([]string{domain.FloodNone, domain.FloodLow}, dry.RiskLevel), "dry flood: %q", dry.RiskLevel)

	wet, err := eng.PredictFlood(0, 0, 200, 0.9)
	p.check(err == nil, "wet flood: %v", err)
	p.check(slices.Contains([]string{domain.FloodHigh, domain.FloodVeryHigh, domain.FloodCritical}, wet.RiskLevel), "wet flood: %q", wet.RiskLevel)

	alerts := eng.RunEmergencyAlert(domain.MultiHazardReport{
		Earthquake: domain.EarthquakeResult{RiskLevel: domain.QuakeCritical},
		Flood:      domain.FloodResult{RiskLevel: domain.FloodLow},
		Tsunami:    domain.TsunamiResult{RiskAssessment: domain.TsunamiRiskAssessment{ThreatLevel: domain.ThreatAdvisory}},
	})
	p.check(alerts.AlertCount == 1, "alert: count %d", alerts.AlertCount)
	p.check(len(alerts.ActiveAlerts) == 1 && alerts.ActiveAlerts[0].DisasterType == domain.DisasterEarthquake, "alert: %+v", alerts.ActiveAlerts)

	report, err := eng.PredictAllHazards(context.Background(), domain.AssessmentParams{Latitude: 35, Longitude: 140, RainfallMm: 50, EarthquakeMagnitude: 6})
	p.check(err == nil, "all hazards: %v", err)
	p.check(cmp.Equal(report.Summary, domain.PlaceholderSummary(domain.CoordinateLabel(35, 140))), "all hazards: summary %+v", report.Summary)
	return p
}
