package dataprep

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/data"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/stats"
)

// ErrEmptyFrame is returned when a stage receives, or would produce, a table
// without rows.
var ErrEmptyFrame = errors.New("dataprep: empty frame")

// DefaultOutlierThreshold is the capital-gain bound above which a training row
// is treated as an outlier.
const DefaultOutlierThreshold = 40000

// DroppedColumns are removed unconditionally during cleaning.
var DroppedColumns = []string{data.Fnlwgt, data.Education}

// CleanOptions configures Clean.
type CleanOptions struct {
	FilterOutliers   bool
	OutlierThreshold int
}

// CleanReport counts what Clean removed.
type CleanReport struct {
	RowsIn      int
	Outliers    int
	Missing     int
	Duplicates  int
	RowsOut     int
	DroppedCols []string
}

func (r CleanReport) String() string {
	return fmt.Sprintf("rows in=%d outliers=%d missing=%d duplicates=%d rows out=%d",
		r.RowsIn, r.Outliers, r.Missing, r.Duplicates, r.RowsOut)
}

// Clean returns a new table with outliers, incomplete rows and duplicates
// removed, the unused columns dropped and capital-loss folded into
// capital-gain.
func Clean(df dataframe.DataFrame, opts CleanOptions) (dataframe.DataFrame, CleanReport, error) {
	report := CleanReport{RowsIn: df.Nrow()}
	if df.Err != nil {
		return dataframe.DataFrame{}, report, df.Err
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, report, ErrEmptyFrame
	}

	outlier := make([]bool, df.Nrow())
	if opts.FilterOutliers {
		if indexOf(df.Names(), data.CapitalGain) < 0 {
			return dataframe.DataFrame{}, report, fmt.Errorf("dataprep: outlier filter needs %s", data.CapitalGain)
		}
		outlier = stats.AboveMask(df.Col(data.CapitalGain).Float(), float64(opts.OutlierThreshold))
	}
	nan := missingMask(df)

	keep := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		switch {
		case outlier[i]:
			report.Outliers++
		case nan[i]:
			report.Missing++
		default:
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return dataframe.DataFrame{}, report, fmt.Errorf("%w: no rows left after cleaning (%s)", ErrEmptyFrame, report)
	}

	out, dups := DropDuplicates(df.Subset(keep))
	report.Duplicates = dups
	for _, col := range DroppedColumns {
		if indexOf(out.Names(), col) >= 0 {
			out = out.Drop(col)
			report.DroppedCols = append(report.DroppedCols, col)
		}
	}

	out, err := FuseCapital(out)
	if err != nil {
		return dataframe.DataFrame{}, report, err
	}
	if out.Err != nil {
		return dataframe.DataFrame{}, report, out.Err
	}
	report.RowsOut = out.Nrow()
	return out, report, nil
}

// FuseCapital replaces capital-gain with capital-gain minus capital-loss and
// drops capital-loss. Tables without capital-loss are returned unchanged.
func FuseCapital(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	names := df.Names()
	if indexOf(names, data.CapitalLoss) < 0 {
		return df, nil
	}
	if indexOf(names, data.CapitalGain) < 0 {
		return df, fmt.Errorf("dataprep: %s present without %s", data.CapitalLoss, data.CapitalGain)
	}
	gain, err := df.Col(data.CapitalGain).Int()
	if err != nil {
		return df, fmt.Errorf("dataprep: read %s: %w", data.CapitalGain, err)
	}
	loss, err := df.Col(data.CapitalLoss).Int()
	if err != nil {
		return df, fmt.Errorf("dataprep: read %s: %w", data.CapitalLoss, err)
	}
	net := make([]int, len(gain))
	for i := range gain {
		net[i] = gain[i] - loss[i]
	}
	out := df.Mutate(series.New(net, series.Int, data.CapitalGain)).Drop(data.CapitalLoss)
	return out, out.Err
}

// DropDuplicates removes repeated rows, keeping the first occurrence, and
// returns how many rows it removed.
func DropDuplicates(df dataframe.DataFrame) (dataframe.DataFrame, int) {
	if df.Nrow() == 0 {
		return df, 0
	}
	seen := make(map[string]struct{}, df.Nrow())
	keep := make([]int, 0, df.Nrow())
	for i, row := range df.Records()[1:] {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keep = append(keep, i)
		}
	}
	if len(keep) == df.Nrow() {
		return df, 0
	}
	return df.Subset(keep), df.Nrow() - len(keep)
}

// missingMask flags rows with at least one missing cell.
func missingMask(df dataframe.DataFrame) []bool {
	mask := make([]bool, df.Nrow())
	for _, name := range df.Names() {
		for i, isNaN := range df.Col(name).IsNaN() {
			if isNaN {
				mask[i] = true
			}
		}
	}
	return mask
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
