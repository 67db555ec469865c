package loader

import (
	"fmt"
	"math/rand"
)

// Fold holds the row indexes of one cross-validation split.
type Fold struct {
	Train []int
	Test  []int
}

// KFoldOptions configures KFold.
type KFoldOptions struct {
	Shuffle     bool
	RandomState int64
}

// KFold splits n rows into k consecutive folds. The first n%k folds hold one
// extra row. Without Shuffle, fold i tests a contiguous block of rows.
func KFold(n, k int, opts KFoldOptions) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("loader: k-fold needs k >= 2, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("loader: cannot split %d rows into %d folds", n, k)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if opts.Shuffle {
		rng := rand.New(rand.NewSource(opts.RandomState))
		rng.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	}

	folds := make([]Fold, k)
	start := 0
	for f := range folds {
		size := n / k
		if f < n%k {
			size++
		}
		end := start + size
		test := append([]int(nil), indices[start:end]...)
		train := make([]int, 0, n-size)
		train = append(train, indices[:start]...)
		train = append(train, indices[end:]...)
		folds[f] = Fold{Train: train, Test: test}
		start = end
	}
	return folds, nil
}

// Take selects the rows of X and y named by idx.
func Take(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
