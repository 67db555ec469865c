package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyMatrix is returned when fitting on a matrix without rows.
	ErrEmptyMatrix = errors.New("stats: empty matrix")
	// ErrNotFitted is returned by Transform before Fit.
	ErrNotFitted = errors.New("stats: scaler not fitted")
)

// StandardScaler centres columns on their mean and divides by their
// population standard deviation. Columns lists the indexes to scale; nil
// means every column and an empty slice scales nothing.
type StandardScaler struct {
	Columns []int
	Mean    []float64
	Std     []float64
	fit     bool
}

// NewStandardScaler returns a scaler for the given column indexes. With no
// arguments every column is scaled.
func NewStandardScaler(columns ...int) *StandardScaler {
	return &StandardScaler{Columns: columns}
}

func (s *StandardScaler) columns(c int) []int {
	if s.Columns != nil {
		return s.Columns
	}
	all := make([]int, c)
	for j := range all {
		all[j] = j
	}
	return all
}

// Fit learns mean and std of the selected columns. Zero std becomes 1 so
// constant columns map to 0.
func (s *StandardScaler) Fit(X *mat.Dense) error {
	if X == nil || X.IsEmpty() {
		return ErrEmptyMatrix
	}
	r, c := X.Dims()
	if r == 0 {
		return ErrEmptyMatrix
	}
	cols := s.columns(c)
	for _, j := range cols {
		if j < 0 || j >= c {
			return fmt.Errorf("stats: column %d out of range [0, %d)", j, c)
		}
	}

	s.Mean = make([]float64, len(cols))
	s.Std = make([]float64, len(cols))
	col := make([]float64, r)
	for k, j := range cols {
		mat.Col(col, j, X)
		s.Mean[k], s.Std[k] = stat.PopMeanStdDev(col, nil)
		if s.Std[k] == 0 {
			s.Std[k] = 1
		}
	}
	s.fit = true
	return nil
}

// Transform returns a scaled copy of X. Unselected columns are copied as is.
func (s *StandardScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	if !s.fit {
		return nil, ErrNotFitted
	}
	if X == nil || X.IsEmpty() {
		return nil, ErrEmptyMatrix
	}
	r, c := X.Dims()
	cols := s.columns(c)
	if len(cols) != len(s.Mean) {
		return nil, fmt.Errorf("stats: scaler fitted on %d columns, matrix selects %d", len(s.Mean), len(cols))
	}
	pos := make(map[int]int, len(cols))
	for k, j := range cols {
		if j >= c {
			return nil, fmt.Errorf("stats: column %d out of range [0, %d)", j, c)
		}
		pos[j] = k
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		if k, ok := pos[j]; ok {
			return (v - s.Mean[k]) / s.Std[k]
		}
		return v
	}, X)
	return out, nil
}

// FitTransform fits on X and returns X standardised.
func (s *StandardScaler) FitTransform(X *mat.Dense) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
