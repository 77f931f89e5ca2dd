package model

import (
	"errors"
	"fmt"
)

// TrainingSet is a labeled feature matrix with its schema.
type TrainingSet struct {
	Features []string    `json:"features"`
	X        [][]float64 `json:"x"`
	Y        []float64   `json:"y"`
}

// NewTrainingSet allocates room for n samples.
func NewTrainingSet(features []string, n int) TrainingSet {
	return TrainingSet{
		Features: features,
		X:        make([][]float64, 0, n),
		Y:        make([]float64, 0, n),
	}
}

// Add appends one labeled sample.
func (ts *TrainingSet) Add(x []float64, y float64) {
	ts.X = append(ts.X, x)
	ts.Y = append(ts.Y, y)
}

// Len is the number of samples.
func (ts TrainingSet) Len() int { return len(ts.Y) }

// Validate checks the set is non-empty, rectangular, matches its schema and
// has labels in [0, 1].
func (ts TrainingSet) Validate() error {
	if len(ts.X) == 0 {
		return errors.New("empty training set")
	}
	if len(ts.X) != len(ts.Y) {
		return fmt.Errorf("%d samples but %d labels", len(ts.X), len(ts.Y))
	}
	for i, row := range ts.X {
		if len(row) != len(ts.Features) {
			return fmt.Errorf("sample %d: %w: got %d features, want %d", i, ErrSchemaMismatch, len(row), len(ts.Features))
		}
	}
	for i, y := range ts.Y {
		if y < 0 || y > 1 {
			return fmt.Errorf("sample %d: label %v outside [0, 1]", i, y)
		}
	}
	return nil
}
