package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line() ([][]float64, []int) {
	return [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}, []int{0, 0, 0, 1, 1, 1}
}

func TestDecisionTreeSeparable(t *testing.T) {
	X, y := line()
	tree := NewDecisionTreeClassifier(WithRandomState(42))
	require.NoError(t, tree.Fit(X, y))

	assert.Equal(t, y, tree.Predict(X))
	assert.Equal(t, []int{0, 1}, tree.Predict([][]float64{{6.5}, {6.6}}))
	assert.Equal(t, []int{0, 1}, tree.Classes())
	assert.Equal(t, 1, tree.Depth())
	assert.Equal(t, 2, tree.NLeaves())
	assert.Equal(t, []float64{1}, tree.FeatureImportances())

	out, err := tree.Export([]string{"x"}, []string{"neg", "pos"})
	require.NoError(t, err)
	want := "|--- x <= 6.5000\n" +
		"|   |--- class: neg (samples=3, gini=0.000, value=[1.00, 0.00])\n" +
		"|--- x >  6.5000\n" +
		"|   |--- class: pos (samples=3, gini=0.000, value=[0.00, 1.00])\n"
	assert.Equal(t, want, out)
}

func TestDecisionTreePicksInformativeFeature(t *testing.T) {
	X := [][]float64{{0, 1}, {1, 2}, {0, 3}, {1, 10}, {0, 11}, {1, 12}}
	y := []int{0, 0, 0, 1, 1, 1}

	for _, criterion := range []string{Gini, Entropy} {
		tree := NewDecisionTreeClassifier(WithCriterion(criterion), WithRandomState(1))
		require.NoError(t, tree.Fit(X, y))
		assert.Equal(t, []float64{0, 1}, tree.FeatureImportances(), criterion)
		assert.Equal(t, y, tree.Predict(X), criterion)
	}
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}}
	y := []int{0, 0, 1, 1, 0, 0, 1, 1}

	shallow := NewDecisionTreeClassifier(WithMaxDepth(1), WithRandomState(42))
	require.NoError(t, shallow.Fit(X, y))
	assert.Equal(t, 1, shallow.Depth())
	assert.Equal(t, 2, shallow.NLeaves())

	deep := NewDecisionTreeClassifier(WithRandomState(42))
	require.NoError(t, deep.Fit(X, y))
	assert.Equal(t, y, deep.Predict(X))
	assert.Greater(t, deep.Depth(), 1)

	sum := 0.0
	for _, v := range deep.FeatureImportances() {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-12)
}

func TestDecisionTreeMinSamplesLeaf(t *testing.T) {
	X, _ := line()
	y := []int{0, 0, 0, 0, 0, 1}

	tree := NewDecisionTreeClassifier(WithMinSamplesLeaf(2), WithRandomState(42))
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, 2, tree.NLeaves())
	assert.Equal(t, []int{0}, tree.Predict([][]float64{{12}}), "tie in the leaf goes to the lower class")

	out, err := tree.Export([]string{"x"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "class: 0 (samples=2, gini=0.500, value=[0.50, 0.50])")
}

func TestDecisionTreeMaxFeaturesIsSeeded(t *testing.T) {
	X := make([][]float64, 40)
	y := make([]int, 40)
	for i := range X {
		X[i] = []float64{float64(i % 7), float64(i % 5), float64(i % 3), float64(i), float64(i % 2)}
		if (i%7)+(i%3) > 4 {
			y[i] = 1
		}
	}
	export := func(seed int64) string {
		tree := NewDecisionTreeClassifier(WithMaxDepth(3), WithMaxFeatures(2), WithRandomState(seed))
		require.NoError(t, tree.Fit(X, y))
		out, err := tree.Export(nil, nil)
		require.NoError(t, err)
		return out
	}
	first := export(42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, export(42))
	}
}

func TestDecisionTreeLabels(t *testing.T) {
	X, _ := line()
	tree := NewDecisionTreeClassifier(WithRandomState(42))
	require.NoError(t, tree.Fit(X, []int{7, 7, 7, 3, 3, 3}))
	assert.Equal(t, []int{3, 7}, tree.Classes())
	assert.Equal(t, []int{7, 3}, tree.Predict([][]float64{{0}, {20}}))

	out, err := tree.Export(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "feature_0 <= 6.5000")
	assert.Contains(t, out, "class: 7")
}

func TestDecisionTreeSingleClass(t *testing.T) {
	X, _ := line()
	tree := NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, []int{1, 1, 1, 1, 1, 1}))
	assert.Equal(t, 0, tree.Depth())
	assert.Equal(t, []float64{0}, tree.FeatureImportances())
	assert.Equal(t, []int{1}, tree.Predict([][]float64{{5}}))
}

func TestDecisionTreeFitErrors(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []int
		opts []Option
		want error
	}{
		{"empty", nil, nil, nil, ErrEmptyInput},
		{"no columns", [][]float64{{}}, []int{0}, nil, ErrEmptyInput},
		{"length mismatch", [][]float64{{1}, {2}}, []int{0}, nil, ErrLengthMismatch},
		{"ragged", [][]float64{{1, 2}, {2}}, []int{0, 1}, nil, ErrRaggedInput},
		{"nan", [][]float64{{1}, {math.NaN()}}, []int{0, 1}, nil, ErrNaNInput},
		{"criterion", [][]float64{{1}, {2}}, []int{0, 1}, []Option{WithCriterion("log_loss")}, ErrCriterion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDecisionTreeClassifier(tt.opts...).Fit(tt.X, tt.y)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewDecisionTreeClassifier().Export(nil, nil)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestImpurity(t *testing.T) {
	assert.Equal(t, 0.5, giniFromCounts([]int{5, 5}))
	assert.Equal(t, 0.0, giniFromCounts([]int{4, 0}))
	assert.Equal(t, 0.0, giniFromCounts([]int{0, 0}))
	assert.Equal(t, 1.0, entropyFromCounts([]int{3, 3}))
	assert.Equal(t, 0.0, entropyFromCounts([]int{0, 3}))
}
