package learn

// GradientBoosting is a least-squares gradient-boosted ensemble of shallow
// regression trees.
type GradientBoosting struct {
	NEstimators  int     `json:"n_estimators"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	Init         float64 `json:"init"`
	Trees        []*Tree `json:"trees"`
}

// NewGradientBoosting creates an unfitted booster with depth-3 trees.
func NewGradientBoosting(nEstimators int, learningRate float64) *GradientBoosting {
	return &GradientBoosting{
		NEstimators:  nEstimators,
		LearningRate: learningRate,
		MaxDepth:     3,
	}
}

// Fit replaces any previous fit. Each stage fits a tree to the current
// residuals and adds it with the learning-rate shrinkage.
func (g *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if _, err := validateXY(X, y); err != nil {
		return err
	}

	var sum float64
	for _, v := range y {
		sum += v
	}
	g.Init = sum / float64(len(y))
	g.Trees = make([]*Tree, 0, g.NEstimators)

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.Init
	}
	residual := make([]float64, len(y))
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	cfg := TreeConfig{MaxDepth: g.MaxDepth}
	for stage := 0; stage < g.NEstimators; stage++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := fitTree(X, residual, idx, cfg)
		for i, row := range X {
			pred[i] += g.LearningRate * tree.Predict(row)
		}
		g.Trees = append(g.Trees, tree)
	}
	return nil
}

// Predict sums the initial estimate and every shrunken stage.
func (g *GradientBoosting) Predict(x []float64) float64 {
	out := g.Init
	for _, t := range g.Trees {
		out += g.LearningRate * t.Predict(x)
	}
	return out
}
