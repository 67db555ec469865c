package dataprep

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDegenerateLabel is returned when the label holds fewer than two classes.
	ErrDegenerateLabel = errors.New("dataprep: label has fewer than two classes")
	// ErrMissingValue is returned when the encoder meets a missing cell.
	ErrMissingValue = errors.New("dataprep: missing value")
)

// Encoded is a table turned into a numeric design matrix.
type Encoded struct {
	X              *mat.Dense
	Y              []int
	FeatureNames   []string
	NumericColumns []int
	// Levels holds the sorted distinct values of each categorical column.
	Levels map[string][]string
	// Positive is the label value encoded as 1.
	Positive string
	// LabelName is the indicator name of the positive class.
	LabelName string
}

// AlignReport lists the columns Align had to add or remove.
type AlignReport struct {
	Added   []string
	Dropped []string
}

// Empty reports whether the column sets already matched.
func (r AlignReport) Empty() bool { return len(r.Added) == 0 && len(r.Dropped) == 0 }

// IndicatorName names the indicator column of one category value.
func IndicatorName(col, value string) string { return col + "_" + value }

// DummyEncode builds the design matrix of df. Numeric columns come first in
// table order, then one indicator per categorical value except the
// lexicographically first. The label goes through the same scheme and must
// produce a single indicator, which becomes Y.
func DummyEncode(df dataframe.DataFrame, label string) (*Encoded, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	n := df.Nrow()
	if n == 0 {
		return nil, ErrEmptyFrame
	}
	if indexOf(df.Names(), label) < 0 {
		return nil, fmt.Errorf("dataprep: label column %q not found", label)
	}

	enc := &Encoded{Levels: map[string][]string{}}
	var columns [][]float64

	types := df.Types()
	for i, name := range df.Names() {
		if name == label || types[i] == series.String {
			continue
		}
		col := df.Col(name)
		if col.HasNaN() {
			return nil, fmt.Errorf("%w in column %q", ErrMissingValue, name)
		}
		enc.NumericColumns = append(enc.NumericColumns, len(enc.FeatureNames))
		enc.FeatureNames = append(enc.FeatureNames, name)
		columns = append(columns, col.Float())
	}

	for i, name := range df.Names() {
		if name == label || types[i] != series.String {
			continue
		}
		values, levels, err := categories(df.Col(name))
		if err != nil {
			return nil, err
		}
		enc.Levels[name] = levels
		for _, level := range levels[1:] {
			enc.FeatureNames = append(enc.FeatureNames, IndicatorName(name, level))
			columns = append(columns, indicator(values, level))
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataprep: no feature columns besides %q", label)
	}

	values, levels, err := categories(df.Col(label))
	if err != nil {
		return nil, err
	}
	switch {
	case len(levels) < 2:
		return nil, fmt.Errorf("%w: %q holds %v", ErrDegenerateLabel, label, levels)
	case len(levels) > 2:
		return nil, fmt.Errorf("dataprep: label %q has %d classes, want 2", label, len(levels))
	}
	enc.Levels[label] = levels
	enc.Positive = levels[1]
	enc.LabelName = IndicatorName(label, levels[1])
	enc.Y = make([]int, n)
	for i, v := range values {
		if v == enc.Positive {
			enc.Y[i] = 1
		}
	}

	enc.X = mat.NewDense(n, len(columns), nil)
	for j, col := range columns {
		enc.X.SetCol(j, col)
	}
	return enc, nil
}

// categories returns the raw values of a string column and its sorted levels.
func categories(s series.Series) ([]string, []string, error) {
	if s.HasNaN() {
		return nil, nil, fmt.Errorf("%w in column %q", ErrMissingValue, s.Name)
	}
	values := s.Records()
	set := map[string]struct{}{}
	for _, v := range values {
		set[v] = struct{}{}
	}
	levels := make([]string, 0, len(set))
	for v := range set {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	return values, levels, nil
}

func indicator(values []string, level string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == level {
			out[i] = 1
		}
	}
	return out
}

// Rows copies X into a row-major slice of slices.
func (e *Encoded) Rows() [][]float64 {
	r, c := e.X.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		copy(out[i], e.X.RawRowView(i))
	}
	return out
}

// Align returns a copy of e whose features follow names exactly. Features
// e lacks are filled with zeros and features names lacks are dropped.
func (e *Encoded) Align(names []string) (*Encoded, AlignReport, error) {
	var report AlignReport
	if len(names) == 0 {
		return nil, report, errors.New("dataprep: align to an empty feature set")
	}
	pos := make(map[string]int, len(e.FeatureNames))
	for j, name := range e.FeatureNames {
		pos[name] = j
	}
	want := make(map[string]struct{}, len(names))
	for _, name := range names {
		want[name] = struct{}{}
	}
	for _, name := range e.FeatureNames {
		if _, ok := want[name]; !ok {
			report.Dropped = append(report.Dropped, name)
		}
	}

	r, _ := e.X.Dims()
	out := &Encoded{
		X:            mat.NewDense(r, len(names), nil),
		Y:            append([]int(nil), e.Y...),
		FeatureNames: append([]string(nil), names...),
		Levels:       e.Levels,
		Positive:     e.Positive,
		LabelName:    e.LabelName,
	}
	numeric := map[string]bool{}
	for _, j := range e.NumericColumns {
		numeric[e.FeatureNames[j]] = true
	}
	col := make([]float64, r)
	for j, name := range names {
		src, ok := pos[name]
		if !ok {
			report.Added = append(report.Added, name)
			continue
		}
		if numeric[name] {
			out.NumericColumns = append(out.NumericColumns, j)
		}
		mat.Col(col, src, e.X)
		out.X.SetCol(j, col)
	}
	return out, report, nil
}
