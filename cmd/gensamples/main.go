// Command gensamples writes synthetic training sets and sample assessment
// requests as JSON fixtures. It uses the same generators the service trains
// on, so fixtures match what a seeded deployment learns from.
//
// Usage:
//
//	go run ./cmd/gensamples -out data/samples -n 500 -seed 42 -requests 100
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/hazard"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixtures")
	n := flag.Int("n", model.DefaultSamples, "samples per hazard")
	seed := flag.Uint64("seed", model.DefaultForestSeed, "generator seed (0 draws a random one)")
	requests := flag.Int("requests", 0, "number of sample assessment requests to write")
	flag.Parse()

	if *out == "" || *n < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	generators := map[domain.Hazard]model.Generator{
		domain.HazardEarthquake: hazard.NewEarthquakeGenerator(*seed),
		domain.HazardFlood:      hazard.NewFloodGenerator(*seed),
		domain.HazardTsunami:    hazard.NewTsunamiGenerator(*seed),
	}

	for _, h := range domain.Hazards {
		ts := generators[h].Generate(*n)
		if err := ts.Validate(); err != nil {
			return fmt.Errorf("%s samples: %w", h, err)
		}
		path := filepath.Join(*out, string(h)+"_training.json")
		if err := writeJSON(path, ts); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		mean, std := stat.PopMeanStdDev(ts.Y, nil)
		log.Printf("%s: %d samples, label mean %.3f std %.3f -> %s", h, ts.Len(), mean, std, path)
	}

	if *requests > 0 {
		path := filepath.Join(*out, "assessment_requests.json")
		if err := writeJSON(path, sampleRequests(*requests, *seed)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("requests: %d -> %s", *requests, path)
	}
	return nil
}

// sampleRequests draws requests over populated latitudes. Roughly one in
// five omits the optional fields to exercise the defaults.
func sampleRequests(n int, seed uint64) []domain.AssessmentRequest {
	rng := rand.New(rand.NewPCG(seed, ^seed))
	out := make([]domain.AssessmentRequest, n)
	for i := range out {
		lat := -60 + rng.Float64()*120
		lon := -180 + rng.Float64()*360
		req := domain.AssessmentRequest{
			ID:        fmt.Sprintf("req-%05d", i+1),
			Latitude:  &lat,
			Longitude: &lon,
		}
		if rng.IntN(5) > 0 {
			rain := rng.Float64() * 250
			mag := 5 + rng.Float64()*4
			req.RainfallMm = &rain
			req.EarthquakeMagnitude = &mag
		}
		out[i] = req
	}
	return out
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
