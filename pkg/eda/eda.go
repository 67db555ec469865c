// Package eda computes the descriptive tables used to explore the census
// data before modelling: class balance, numeric summaries, category counts,
// correlations and per-class breakdowns.
package eda

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/data"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/dataprep"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/stats"
)

var (
	ErrUnknownColumn = errors.New("eda: unknown column")
	ErrNotNumeric    = errors.New("eda: column is not numeric")
	ErrEmpty         = errors.New("eda: empty table")
)

// ValueCount is one distinct value and how often it occurs.
type ValueCount struct {
	Value   string
	Count   int
	Percent float64
}

// ClassBalance counts rows per income class.
func ClassBalance(df dataframe.DataFrame) ([]ValueCount, error) {
	return ValueCounts(df, data.Income)
}

// ValueCounts counts the distinct non-missing values of col, most frequent
// first. Equal counts are ordered by value. Percent is relative to the
// non-missing rows.
func ValueCounts(df dataframe.DataFrame, col string) ([]ValueCount, error) {
	s, err := column(df, col)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	total := 0
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		counts[e.String()]++
		total++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n, Percent: 100 * float64(n) / float64(total)})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Value < out[b].Value
	})
	return out, nil
}

// ColumnValues lists the distinct values of one categorical column.
type ColumnValues struct {
	Column string
	Values []string
}

// Uniques returns the sorted distinct non-missing values of every string
// column, in table order.
func Uniques(df dataframe.DataFrame) []ColumnValues {
	var out []ColumnValues
	for _, name := range df.Names() {
		s := df.Col(name)
		if s.Type() != series.String {
			continue
		}
		seen := map[string]bool{}
		values := []string{}
		for i := 0; i < s.Len(); i++ {
			e := s.Elem(i)
			if e.IsNA() || seen[e.String()] {
				continue
			}
			seen[e.String()] = true
			values = append(values, e.String())
		}
		sort.Strings(values)
		out = append(out, ColumnValues{Column: name, Values: values})
	}
	return out
}

// Summary describes one numeric column. Std is the sample standard
// deviation. Outliers counts values outside the 1.5 IQR fences.
type Summary struct {
	Column   string
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	Q25      float64
	Q50      float64
	Q75      float64
	Max      float64
	Outliers int
}

// Describe summarises every numeric column, ignoring missing values.
func Describe(df dataframe.DataFrame) []Summary {
	var out []Summary
	for _, name := range NumericColumns(df) {
		x := present(df.Col(name).Float())
		s := Summary{Column: name, Count: len(x)}
		if len(x) > 0 {
			s.Mean = stats.Mean(x)
			s.Std = stats.SampleStd(x)
			s.Min, s.Max = stats.MinMax(x)
			s.Q25 = stats.Percentile(x, 25)
			s.Q50 = stats.Median(x)
			s.Q75 = stats.Percentile(x, 75)
			lo, hi := stats.IQRFences(x)
			s.Outliers = stats.CountOutside(x, lo, hi)
		}
		out = append(out, s)
	}
	return out
}

// NumericColumns names the int and float columns of df in table order.
func NumericColumns(df dataframe.DataFrame) []string {
	var out []string
	for _, name := range df.Names() {
		switch df.Col(name).Type() {
		case series.Int, series.Float:
			out = append(out, name)
		}
	}
	return out
}

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  *mat.SymDense
}

// Correlation computes pairwise Pearson correlation between cols, or between
// all numeric columns when cols is empty. Rows missing any of the columns
// are skipped. A constant column correlates 0 with everything but itself.
func Correlation(df dataframe.DataFrame, cols ...string) (*CorrMatrix, error) {
	if len(cols) == 0 {
		cols = NumericColumns(df)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no numeric columns", ErrNotNumeric)
	}
	vals := make([][]float64, len(cols))
	for j, c := range cols {
		s, err := numericColumn(df, c)
		if err != nil {
			return nil, err
		}
		vals[j] = s.Float()
	}
	keep := make([]bool, df.Nrow())
	n := 0
	for i := range keep {
		keep[i] = true
		for j := range vals {
			if math.IsNaN(vals[j][i]) {
				keep[i] = false
				break
			}
		}
		if keep[i] {
			n++
		}
	}
	if n == 0 {
		return nil, ErrEmpty
	}
	for j := range vals {
		x := make([]float64, 0, n)
		for i, v := range vals[j] {
			if keep[i] {
				x = append(x, v)
			}
		}
		vals[j] = x
	}

	m := mat.NewSymDense(len(cols), nil)
	for a := range cols {
		m.SetSym(a, a, 1)
		for b := a + 1; b < len(cols); b++ {
			m.SetSym(a, b, stats.Correlation(vals[a], vals[b]))
		}
	}
	return &CorrMatrix{Columns: append([]string{}, cols...), Values: m}, nil
}

// Pivot holds the mean of each numeric column per group.
type Pivot struct {
	By      string
	Groups  []string
	Columns []string
	Means   [][]float64 // Means[group][column]
}

// PivotMeans averages every numeric column within each value of by.
// Groups are sorted.
func PivotMeans(df dataframe.DataFrame, by string) (*Pivot, error) {
	keys, err := column(df, by)
	if err != nil {
		return nil, err
	}
	var cols []string
	for _, c := range NumericColumns(df) {
		if c != by {
			cols = append(cols, c)
		}
	}
	groups, index := groupIndex(keys)
	vals := make([][]float64, len(cols))
	for j, c := range cols {
		vals[j] = df.Col(c).Float()
	}

	p := &Pivot{By: by, Groups: groups, Columns: cols, Means: make([][]float64, len(groups))}
	for g := range groups {
		p.Means[g] = make([]float64, len(cols))
		for j := range cols {
			var x []float64
			for _, i := range index[g] {
				if v := vals[j][i]; !math.IsNaN(v) {
					x = append(x, v)
				}
			}
			p.Means[g][j] = math.NaN()
			if len(x) > 0 {
				p.Means[g][j] = stats.Mean(x)
			}
		}
	}
	return p, nil
}

// Contingency counts rows per (row value, column value) pair.
type Contingency struct {
	Row    string
	Col    string
	Rows   []string
	Cols   []string
	Counts [][]int // Counts[row][col]
}

// Crosstab counts the rows of df per value of col and value of by. Both
// axes are sorted. Rows missing either value are skipped.
func Crosstab(df dataframe.DataFrame, col, by string) (*Contingency, error) {
	s, err := column(df, col)
	if err != nil {
		return nil, err
	}
	rows, _ := groupIndex(s)
	labels := make([]string, s.Len())
	for i := range labels {
		if !s.Elem(i).IsNA() {
			labels[i] = s.Elem(i).String()
		}
	}
	return crosstab(df, col, by, rows, labels)
}

// RangeCounts bins the numeric column col into equal-width ranges and
// counts rows per range and value of by. Ranges are ordered low to high.
func RangeCounts(df dataframe.DataFrame, col string, bins int, by string) (*Contingency, error) {
	if bins < 1 {
		return nil, fmt.Errorf("eda: %d bins", bins)
	}
	s, err := numericColumn(df, col)
	if err != nil {
		return nil, err
	}
	x := s.Float()
	kept := present(x)
	if len(kept) == 0 {
		return nil, ErrEmpty
	}
	if lo, hi := stats.MinMax(kept); lo == hi {
		bins = 1
	}
	ranges := dataprep.BinLabels(kept, bins)
	assigned := dataprep.BinContinuous(kept, bins)
	labels := make([]string, len(x))
	k := 0
	for i, v := range x {
		if math.IsNaN(v) {
			continue
		}
		labels[i] = ranges[assigned[k]]
		k++
	}
	return crosstab(df, col, by, ranges, labels)
}

// crosstab counts rows by labels[i] and the value of by; empty labels are
// skipped.
func crosstab(df dataframe.DataFrame, col, by string, rows, labels []string) (*Contingency, error) {
	keys, err := column(df, by)
	if err != nil {
		return nil, err
	}
	cols, _ := groupIndex(keys)
	rowAt := indexMap(rows)
	colAt := indexMap(cols)

	counts := make([][]int, len(rows))
	for r := range counts {
		counts[r] = make([]int, len(cols))
	}
	for i, l := range labels {
		if l == "" || keys.Elem(i).IsNA() {
			continue
		}
		counts[rowAt[l]][colAt[keys.Elem(i).String()]]++
	}
	return &Contingency{Row: col, Col: by, Rows: rows, Cols: cols, Counts: counts}, nil
}

func column(df dataframe.DataFrame, col string) (series.Series, error) {
	if df.Nrow() == 0 {
		return series.Series{}, ErrEmpty
	}
	for _, n := range df.Names() {
		if n == col {
			return df.Col(col), nil
		}
	}
	return series.Series{}, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
}

func numericColumn(df dataframe.DataFrame, col string) (series.Series, error) {
	s, err := column(df, col)
	if err != nil {
		return s, err
	}
	if t := s.Type(); t != series.Int && t != series.Float {
		return s, fmt.Errorf("%w: %q", ErrNotNumeric, col)
	}
	return s, nil
}

// groupIndex returns the sorted distinct non-missing values of s and, for
// each, the row indexes holding it.
func groupIndex(s series.Series) ([]string, [][]int) {
	byValue := map[string][]int{}
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		byValue[e.String()] = append(byValue[e.String()], i)
	}
	groups := make([]string, 0, len(byValue))
	for g := range byValue {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	index := make([][]int, len(groups))
	for i, g := range groups {
		index[i] = byValue[g]
	}
	return groups, index
}

func indexMap(xs []string) map[string]int {
	m := make(map[string]int, len(xs))
	for i, x := range xs {
		m[x] = i
	}
	return m
}

func present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
