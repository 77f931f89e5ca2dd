package learn

import (
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest averages fully grown regression trees, each fitted on a
// bootstrap resample of the training set. A fixed Seed makes the fit
// reproducible regardless of how trees are scheduled across goroutines.
type RandomForest struct {
	NEstimators    int     `json:"n_estimators"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
	Seed           uint64  `json:"seed"`
	Trees          []*Tree `json:"trees"`
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(nEstimators int, seed uint64) *RandomForest {
	return &RandomForest{
		NEstimators:    nEstimators,
		MinSamplesLeaf: 1,
		Seed:           seed,
	}
}

// Fit replaces any previous fit. Trees are grown in parallel.
func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	if _, err := validateXY(X, y); err != nil {
		return err
	}

	master := rand.New(rand.NewPCG(f.Seed, f.Seed^0x9e3779b97f4a7c15))
	seeds := make([]uint64, f.NEstimators)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	trees := make([]*Tree, f.NEstimators)
	cfg := TreeConfig{MinSamplesLeaf: f.MinSamplesLeaf}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		g.Go(func() error {
			r := rand.New(rand.NewPCG(seeds[t], uint64(t)))
			idx := make([]int, len(X))
			for i := range idx {
				idx[i] = r.IntN(len(X))
			}
			trees[t] = fitTree(X, y, idx, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.Trees = trees
	return nil
}

// Predict averages the trees. An unfitted forest predicts 0.
func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(f.Trees))
}
