package domain

import "gonum.org/v1/gonum/floats"

// Grid is a row-major 2D grid of scores or heights.
type Grid [][]float64

// NewGrid returns a zeroed rows×cols grid.
func NewGrid(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

// Shape returns the row and column counts.
func (g Grid) Shape() (rows, cols int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g), len(g[0])
}

// Max returns the largest cell, or 0 for an empty grid.
func (g Grid) Max() float64 {
	var best float64
	first := true
	for _, row := range g {
		for _, v := range row {
			if first || v > best {
				best, first = v, false
			}
		}
	}
	return best
}

// CountAbove counts cells strictly greater than limit.
func (g Grid) CountAbove(limit float64) int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			if v > limit {
				n++
			}
		}
	}
	return n
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
