// Package learn implements the small set of supervised-learning primitives the
// hazard models need: a standardization transform and two tree-ensemble
// regressors (least-squares gradient boosting and a bootstrap random forest).
//
// Models are plain structs with exported fields so a fitted model can be
// serialized to JSON and restored without refitting.
package learn

import (
	"errors"
	"fmt"
)

// ErrEmptyTrainingSet is returned when a fit is attempted with no samples.
var ErrEmptyTrainingSet = errors.New("learn: empty training set")

// Regressor is anything that can be fitted on a feature matrix and evaluated
// on a single feature vector.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
}

// validateXY checks the matrix is rectangular and aligned with the targets.
// Returns the number of features per row.
func validateXY(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("learn: %d samples but %d targets", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return 0, errors.New("learn: samples have no features")
	}
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("learn: sample %d has %d features, want %d", i, len(row), width)
		}
	}
	return width, nil
}
