package loader

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFoldContiguous(t *testing.T) {
	folds, err := KFold(10, 3, KFoldOptions{})
	require.NoError(t, err)
	require.Len(t, folds, 3)

	assert.Equal(t, []int{0, 1, 2, 3}, folds[0].Test)
	assert.Equal(t, []int{4, 5, 6}, folds[1].Test)
	assert.Equal(t, []int{7, 8, 9}, folds[2].Test)
	assert.Equal(t, []int{0, 1, 2, 3, 7, 8, 9}, folds[1].Train)
}

func TestKFoldPartition(t *testing.T) {
	for _, opts := range []KFoldOptions{{}, {Shuffle: true, RandomState: 42}} {
		folds, err := KFold(37, 6, opts)
		require.NoError(t, err)

		var seen []int
		for _, f := range folds {
			assert.Len(t, f.Train, 37-len(f.Test))
			seen = append(seen, f.Test...)
			for _, i := range f.Test {
				assert.NotContains(t, f.Train, i)
			}
		}
		sort.Ints(seen)
		for i, v := range seen {
			assert.Equal(t, i, v)
		}
	}
}

func TestKFoldShuffleIsSeeded(t *testing.T) {
	a, err := KFold(20, 4, KFoldOptions{Shuffle: true, RandomState: 7})
	require.NoError(t, err)
	b, err := KFold(20, 4, KFoldOptions{Shuffle: true, RandomState: 7})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKFoldErrors(t *testing.T) {
	_, err := KFold(10, 1, KFoldOptions{})
	assert.Error(t, err)
	_, err = KFold(3, 6, KFoldOptions{})
	assert.Error(t, err)
}

func TestTake(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}}
	y := []int{0, 1, 0}
	xs, ys := Take(X, y, []int{2, 0})
	assert.Equal(t, [][]float64{{2}, {0}}, xs)
	assert.Equal(t, []int{0, 0}, ys)
}
