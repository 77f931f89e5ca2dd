package learn

import (
	"cmp"
	"slices"
)

// Node is a binary regression tree node. Leaves have nil children and carry
// the mean target of the samples that reached them.
type Node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Value     float64 `json:"value"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// Tree is a CART regression tree split on squared-error reduction.
type Tree struct {
	Root *Node `json:"root"`
}

// TreeConfig bounds tree growth. A MaxDepth of 0 grows until leaves are pure
// or too small to split.
type TreeConfig struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// Predict walks the tree for a single feature vector.
func (t *Tree) Predict(x []float64) float64 {
	n := t.Root
	for n.Left != nil {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// fitTree grows a tree over the samples selected by idx. idx may contain
// duplicates (bootstrap samples).
func fitTree(X [][]float64, y []float64, idx []int, cfg TreeConfig) *Tree {
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	b := &treeBuilder{X: X, y: y, cfg: cfg, scratch: make([]int, len(idx))}
	return &Tree{Root: b.grow(slices.Clone(idx), 0)}
}

type treeBuilder struct {
	X       [][]float64
	y       []float64
	cfg     TreeConfig
	scratch []int
}

func (b *treeBuilder) grow(idx []int, depth int) *Node {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	node := &Node{Value: sum / float64(len(idx))}

	if len(idx) < b.cfg.MinSamplesSplit || (b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) {
		return node
	}

	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		return node
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = b.grow(left, depth+1)
	node.Right = b.grow(right, depth+1)
	return node
}

// bestSplit scans every feature for the threshold maximizing
// sumL²/nL + sumR²/nR, which is equivalent to minimizing the children's
// summed squared error.
func (b *treeBuilder) bestSplit(idx []int, total float64) (int, float64, bool) {
	n := len(idx)
	parentScore := total * total / float64(n)
	bestScore := parentScore
	bestFeature, bestThreshold := 0, 0.0
	found := false

	sorted := b.scratch[:n]
	width := len(b.X[idx[0]])
	for f := 0; f < width; f++ {
		copy(sorted, idx)
		slices.SortFunc(sorted, func(a, c int) int {
			return cmp.Compare(b.X[a][f], b.X[c][f])
		})

		var leftSum float64
		for k := 0; k < n-1; k++ {
			leftSum += b.y[sorted[k]]
			nl, nr := k+1, n-k-1
			if nl < b.cfg.MinSamplesLeaf {
				continue
			}
			if nr < b.cfg.MinSamplesLeaf {
				break
			}
			lo, hi := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr)
			if score > bestScore+1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}
