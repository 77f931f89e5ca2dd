package learn

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes each feature to zero mean and unit variance using the
// population statistics of the matrix it was fitted on. The transform is
// linear and never clamps: values outside the training range map to
// standardized values outside the training range.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-feature mean and standard deviation. Constant
// features get a scale of 1 so they standardize to 0 instead of NaN.
func FitScaler(X [][]float64) (*Scaler, error) {
	width, err := validateXY(X, make([]float64, len(X)))
	if err != nil {
		return nil, err
	}

	s := &Scaler{
		Mean:  make([]float64, width),
		Scale: make([]float64, width),
	}
	col := make([]float64, len(X))
	for j := 0; j < width; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s, nil
}

// Width is the number of features the scaler was fitted on.
func (s *Scaler) Width() int { return len(s.Mean) }

// Transform standardizes a single feature vector into a new slice.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("learn: scaler fitted on %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

// TransformAll standardizes every row of X.
func (s *Scaler) TransformAll(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		z, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = z
	}
	return out, nil
}
