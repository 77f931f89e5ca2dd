// Package hazard implements the earthquake, flood and tsunami predictors and
// their synthetic sample generators. Each predictor composes a
// [model.RiskModel] with the physical post-processing and classification in
// the domain package.
package hazard

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

// DefaultWorkers bounds grid sweep parallelism when the caller passes 0.
const DefaultWorkers = 4

// newSource returns a PCG source. A zero seed draws a random one.
func newSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// base carries what every predictor shares.
type base struct {
	model   *model.RiskModel
	metrics *observability.Metrics
	workers int
}

func newBase(m *model.RiskModel, metrics *observability.Metrics, workers int) base {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return base{model: m, metrics: metrics, workers: workers}
}

// Model exposes the underlying risk model.
func (b base) Model() *model.RiskModel { return b.model }

// score evaluates the model, training it on first use, and records latency.
func (b base) score(x []float64) (float64, error) {
	start := time.Now()
	s, err := b.model.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("%s prediction: %w", b.model.Hazard(), err)
	}
	b.metrics.PredictionDuration.WithLabelValues(string(b.model.Hazard())).Observe(time.Since(start).Seconds())
	return s, nil
}

func (b base) count(level string) {
	b.metrics.Predictions.WithLabelValues(string(b.model.Hazard()), level).Inc()
}

// cellFunc computes one grid cell from the published fit.
type cellFunc func(fit *model.Fit, i, j int) (float64, error)

// sweep trains the model once up front, then fills a rows×cols grid with rows
// evaluated in parallel. Every cell sees the same fit.
func (b base) sweep(ctx context.Context, rows, cols int, cell cellFunc) (domain.Grid, error) {
	if err := b.model.EnsureTrained(ctx); err != nil {
		return nil, err
	}
	fit, err := b.model.Current()
	if err != nil {
		return nil, err
	}

	grid := domain.NewGrid(rows, cols)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := range cols {
				v, err := cell(fit, i, j)
				if err != nil {
					return fmt.Errorf("cell (%d, %d): %w", i, j, err)
				}
				grid[i][j] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}

// scoreCell evaluates a feature vector and clamps it to [0, 1].
func scoreCell(fit *model.Fit, x []float64) (float64, error) {
	s, err := fit.Predict(x)
	if err != nil {
		return 0, err
	}
	return domain.Clamp01(s), nil
}
