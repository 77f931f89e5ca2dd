package learn

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearDataset(n int, seed uint64) ([][]float64, []float64) {
	r := rand.New(rand.NewPCG(seed, seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		a, b := r.Float64(), r.Float64()
		X[i] = []float64{a, b}
		y[i] = 0.7*a + 0.3*b
	}
	return X, y
}

func TestFitScaler(t *testing.T) {
	X := [][]float64{{1, 5}, {2, 5}, {3, 5}}
	s, err := FitScaler(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant feature keeps unit scale")

	z, err := s.Transform([]float64{2, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, z)

	// Values outside the training range are not clamped.
	z, err = s.Transform([]float64{100, 5})
	require.NoError(t, err)
	assert.Greater(t, z[0], 100.0)
}

func TestFitScaler_Errors(t *testing.T) {
	_, err := FitScaler(nil)
	require.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = FitScaler([][]float64{{1, 2}, {3}})
	require.Error(t, err)

	s, err := FitScaler([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	_, err = s.Transform([]float64{1})
	require.Error(t, err)
}

func TestTree_FitsStepFunction(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {10}, {11}, {12}, {13}}
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	tree := fitTree(X, y, []int{0, 1, 2, 3, 4, 5, 6, 7}, TreeConfig{MaxDepth: 1})

	assert.Equal(t, 0, tree.Root.Feature)
	assert.InDelta(t, 6.5, tree.Root.Threshold, 1e-12)
	assert.Equal(t, 0.0, tree.Predict([]float64{-5}))
	assert.Equal(t, 1.0, tree.Predict([]float64{50}))
}

func TestTree_PureTargetsStayLeaf(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}}
	y := []float64{0.4, 0.4, 0.4}

	tree := fitTree(X, y, []int{0, 1, 2}, TreeConfig{})
	assert.Nil(t, tree.Root.Left)
	assert.InDelta(t, 0.4, tree.Predict([]float64{7}), 1e-12)
}

func TestGradientBoosting_LearnsLinearSurface(t *testing.T) {
	X, y := linearDataset(400, 1)
	g := NewGradientBoosting(100, 0.1)
	require.NoError(t, g.Fit(X, y))
	require.Len(t, g.Trees, 100)

	var sse float64
	for i, row := range X {
		d := g.Predict(row) - y[i]
		sse += d * d
	}
	rmse := math.Sqrt(sse / float64(len(X)))
	assert.Less(t, rmse, 0.05)
}

func TestRandomForest_SeedIsReproducible(t *testing.T) {
	X, y := linearDataset(200, 2)

	a := NewRandomForest(20, 42)
	b := NewRandomForest(20, 42)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	probe := []float64{0.25, 0.75}
	assert.Equal(t, a.Predict(probe), b.Predict(probe))
	assert.InDelta(t, 0.7*0.25+0.3*0.75, a.Predict(probe), 0.1)
}

func TestRegressors_RejectBadInput(t *testing.T) {
	regressors := map[string]Regressor{
		"boosting": NewGradientBoosting(5, 0.1),
		"forest":   NewRandomForest(5, 1),
	}
	for name, r := range regressors {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, r.Fit(nil, nil), ErrEmptyTrainingSet)
			require.Error(t, r.Fit([][]float64{{1}}, []float64{1, 2}))
		})
	}
}

func TestGradientBoosting_JSONRestorePredictsIdentically(t *testing.T) {
	X, y := linearDataset(100, 3)
	g := NewGradientBoosting(10, 0.1)
	require.NoError(t, g.Fit(X, y))

	data, err := json.Marshal(g)
	require.NoError(t, err)
	var restored GradientBoosting
	require.NoError(t, json.Unmarshal(data, &restored))

	for _, row := range X[:10] {
		assert.InDelta(t, g.Predict(row), restored.Predict(row), 1e-12)
	}
}
