package dataprep

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// MissingColumn is the missing-value tally for one column.
type MissingColumn struct {
	Column  string
	Count   int
	Percent float64
}

// MissingReport lists missing counts per column, highest share first.
// Ties keep table order.
func MissingReport(df dataframe.DataFrame) []MissingColumn {
	n := df.Nrow()
	out := make([]MissingColumn, 0, df.Ncol())
	for _, name := range df.Names() {
		count := 0
		for _, isNaN := range df.Col(name).IsNaN() {
			if isNaN {
				count++
			}
		}
		pct := 0.0
		if n > 0 {
			pct = 100 * float64(count) / float64(n)
		}
		out = append(out, MissingColumn{Column: name, Count: count, Percent: pct})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// RowsWithMissing counts rows that hold at least one missing cell.
func RowsWithMissing(df dataframe.DataFrame) int {
	count := 0
	for _, m := range missingMask(df) {
		if m {
			count++
		}
	}
	return count
}
