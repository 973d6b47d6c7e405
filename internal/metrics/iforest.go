package metrics

import (
	"math"
	"math/rand"

	"nyayadrishti/casemetrics/internal/frame"
)

// Forest defaults
const (
	DefaultTrees      = 200
	DefaultMaxSamples = 256
	DefaultSeed       = 42
)

const eulerGamma = 0.5772156649

// isoNode is one node of an isolation tree. Leaves have feature -1.
type isoNode struct {
	feature   int
	threshold float64
	left      *isoNode
	right     *isoNode
	size      int
}

// IsolationForest scores rows by how quickly random axis-aligned splits
// isolate them.
type IsolationForest struct {
	Trees      int
	MaxSamples int
	Seed       int64

	roots      []*isoNode
	sampleSize int
	offset     float64
}

// NewIsolationForest returns a forest with the default shape and seed.
func NewIsolationForest() *IsolationForest {
	return &IsolationForest{Trees: DefaultTrees, MaxSamples: DefaultMaxSamples, Seed: DefaultSeed}
}

// Fit builds the trees over X (rows of equal width) and sets the decision
// offset so that roughly a contamination share of X scores below zero.
func (f *IsolationForest) Fit(X [][]float64, contamination float64) {
	rng := rand.New(rand.NewSource(f.Seed))

	n := len(X)
	f.sampleSize = min(f.MaxSamples, n)
	maxDepth := int(math.Ceil(math.Log2(float64(max(f.sampleSize, 2)))))

	f.roots = make([]*isoNode, f.Trees)
	for t := range f.roots {
		perm := rng.Perm(n)[:f.sampleSize]
		f.roots[t] = buildTree(X, perm, 0, maxDepth, rng)
	}

	f.offset, _ = frame.Quantile(f.ScoreSamples(X), contamination)
}

func buildTree(X [][]float64, idx []int, depth, maxDepth int, rng *rand.Rand) *isoNode {
	leaf := &isoNode{feature: -1, size: len(idx)}
	if depth >= maxDepth || len(idx) <= 1 {
		return leaf
	}

	width := len(X[idx[0]])
	lo := make([]float64, width)
	hi := make([]float64, width)
	for j := 0; j < width; j++ {
		lo[j], hi[j] = math.Inf(1), math.Inf(-1)
	}
	for _, i := range idx {
		for j, v := range X[i] {
			lo[j] = math.Min(lo[j], v)
			hi[j] = math.Max(hi[j], v)
		}
	}
	var splittable []int
	for j := 0; j < width; j++ {
		if hi[j] > lo[j] {
			splittable = append(splittable, j)
		}
	}
	if len(splittable) == 0 {
		return leaf
	}

	feature := splittable[rng.Intn(len(splittable))]
	threshold := lo[feature] + rng.Float64()*(hi[feature]-lo[feature])

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &isoNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(X, left, depth+1, maxDepth, rng),
		right:     buildTree(X, right, depth+1, maxDepth, rng),
		size:      len(idx),
	}
}

func pathLength(n *isoNode, x []float64) float64 {
	depth := 0.0
	for n.feature >= 0 {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return depth + averagePathLength(n.size)
}

// averagePathLength is the expected path length of an unsuccessful search in
// a binary search tree of n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// ScoreSamples returns the opposite of the anomaly score of each row: values
// near -1 are anomalous, values near -0.5 are normal.
func (f *IsolationForest) ScoreSamples(X [][]float64) []float64 {
	out := make([]float64, len(X))
	norm := averagePathLength(f.sampleSize)
	for i, x := range X {
		if norm == 0 || len(f.roots) == 0 {
			out[i] = -1
			continue
		}
		var sum float64
		for _, root := range f.roots {
			sum += pathLength(root, x)
		}
		mean := sum / float64(len(f.roots))
		out[i] = -math.Pow(2, -mean/norm)
	}
	return out
}

// DecisionFunction shifts ScoreSamples by the fitted offset. Negative values
// are outliers.
func (f *IsolationForest) DecisionFunction(X [][]float64) []float64 {
	scores := f.ScoreSamples(X)
	for i := range scores {
		scores[i] -= f.offset
	}
	return scores
}

// Predict flags every row whose decision value is negative.
func (f *IsolationForest) Predict(X [][]float64) []bool {
	dec := f.DecisionFunction(X)
	out := make([]bool, len(dec))
	for i, d := range dec {
		out[i] = d < 0
	}
	return out
}
