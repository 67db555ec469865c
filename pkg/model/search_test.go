package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steps(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 3)}
		if i >= n/2 {
			y[i] = 1
		}
	}
	return X, y
}

func TestDefaultGrid(t *testing.T) {
	grid := DefaultGrid()
	require.Len(t, grid, 10)
	assert.Equal(t, Params{MaxDepth: 5, Criterion: Gini}, grid[0])
	assert.Equal(t, Params{MaxDepth: 5, Criterion: Entropy}, grid[1])
	assert.Equal(t, Params{MaxDepth: 0, Criterion: Entropy}, grid[9])
	assert.Equal(t, "max_depth=none criterion=entropy", grid[9].String())
}

func TestGridSearch(t *testing.T) {
	X, y := steps(12)

	res, err := GridSearch(context.Background(), X, y, DefaultGrid(), SearchOptions{Folds: 3, Workers: 4, RandomState: 42})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 10)

	for i, c := range res.Candidates {
		assert.Equal(t, DefaultGrid()[i], c.Params)
		assert.Len(t, c.FoldScores, 3)
		assert.LessOrEqual(t, c.Mean, res.Best.Mean)
	}
	// every candidate separates the steps perfectly, so the first wins
	assert.Equal(t, 1.0, res.Best.Mean)
	assert.Equal(t, 0, res.BestIndex)

	out := res.Render()
	assert.Contains(t, out, "best")
	assert.Contains(t, out, "entropy")
	assert.Contains(t, out, "max depth")
}

func TestGridSearchWorkersDoNotChangeResult(t *testing.T) {
	X := make([][]float64, 60)
	y := make([]int, 60)
	for i := range X {
		X[i] = []float64{float64(i % 7), float64(i % 11), float64((i * 13) % 17)}
		if (i%7)*(i%11) > 20 {
			y[i] = 1
		}
	}
	grid := DefaultGrid()
	opts := SearchOptions{Folds: 6, MaxFeatures: 2, RandomState: 42}

	opts.Workers = 1
	serial, err := GridSearch(context.Background(), X, y, grid, opts)
	require.NoError(t, err)

	opts.Workers = 8
	parallel, err := GridSearch(context.Background(), X, y, grid, opts)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestGridSearchErrors(t *testing.T) {
	X, y := steps(12)

	_, err := GridSearch(context.Background(), X, y, nil, SearchOptions{})
	assert.Error(t, err)

	_, err = GridSearch(context.Background(), X, y[:3], DefaultGrid(), SearchOptions{})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = GridSearch(context.Background(), X[:4], y[:4], DefaultGrid(), SearchOptions{Folds: 6})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = GridSearch(ctx, X, y, DefaultGrid(), SearchOptions{Folds: 3})
	assert.ErrorIs(t, err, context.Canceled)
}
