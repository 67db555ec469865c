package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrSchemaMismatch is returned when a row does not fit the census layout.
	ErrSchemaMismatch = errors.New("data: schema mismatch")
	// ErrNoRecords is returned when a file holds no data rows.
	ErrNoRecords = errors.New("data: no records")
)

// LoadOptions controls how a census file is read.
type LoadOptions struct {
	// SkipRows is the number of leading rows dropped before parsing.
	SkipRows int
}

// DefaultLoadOptions skips the first line, as both published files start
// with a line that is not a record.
func DefaultLoadOptions() LoadOptions { return LoadOptions{SkipRows: 1} }

// LoadCensus reads a comma-plus-space separated census file into a table
// keyed by CensusSchema. Numeric columns are typed as ints and the "?" token
// becomes NaN.
func LoadCensus(path string, opts LoadOptions) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("data: open census file: %w", err)
	}
	defer file.Close()

	return LoadReader(bufio.NewReader(file), path, opts)
}

// LoadReader is LoadCensus over an arbitrary reader; name is used in errors.
func LoadReader(r io.Reader, name string, opts LoadOptions) (dataframe.DataFrame, error) {
	schema := CensusSchema()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // checked below so the error names the line
	reader.LazyQuotes = true

	records := [][]string{schema.Names()}
	seen := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("data: read %s: %w", name, err)
		}
		seen++
		if seen <= opts.SkipRows {
			continue
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRow(schema, rec)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s line %d: %v", ErrSchemaMismatch, name, line, err)
		}
		records = append(records, row)
	}
	if len(records) == 1 {
		return dataframe.DataFrame{}, fmt.Errorf("%w in %s", ErrNoRecords, name)
	}

	types := make(map[string]series.Type, schema.Len())
	for i, col := range schema.FeatureNames {
		if schema.Types[i] == Numeric {
			types[col] = series.Int
		} else {
			types[col] = series.String
		}
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
		dataframe.NaNValues([]string{MissingToken}),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("data: build table from %s: %w", name, df.Err)
	}
	return df, nil
}

// parseRow validates one record against the schema and returns a normalised copy.
func parseRow(schema Schema, rec []string) ([]string, error) {
	if len(rec) != schema.Len() {
		return nil, fmt.Errorf("got %d fields, want %d", len(rec), schema.Len())
	}
	row := make([]string, len(rec))
	for i, field := range rec {
		v := strings.TrimSpace(field)
		if v == MissingToken {
			row[i] = v
			continue
		}
		if schema.Types[i] == Numeric {
			if _, err := strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("column %q: %q is not an integer", schema.FeatureNames[i], v)
			}
		}
		if schema.FeatureNames[i] == schema.Label {
			// the test file terminates labels with a period
			v = strings.TrimSuffix(v, ".")
		}
		row[i] = v
	}
	return row, nil
}
