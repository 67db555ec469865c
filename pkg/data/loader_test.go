package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRows = `|1x3 Cross validator
39, State-gov, 77516, Bachelors, 13, Never-married, Adm-clerical, Not-in-family, White, Male, 2174, 0, 40, United-States, <=50K.
54, ?, 180211, Some-college, 10, Married-civ-spouse, ?, Husband, Asian-Pac-Islander, Male, 0, 0, 60, South, >50K.
`

func TestLoadReader(t *testing.T) {
	df, err := LoadReader(strings.NewReader(twoRows), "inline", DefaultLoadOptions())
	require.NoError(t, err)

	rows, cols := df.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 15, cols)
	assert.Equal(t, CensusSchema().Names(), df.Names())

	assert.Equal(t, series.Int, df.Col(Age).Type())
	assert.Equal(t, series.String, df.Col(Workclass).Type())

	ages, err := df.Col(Age).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{39, 54}, ages)

	t.Run("label period is stripped", func(t *testing.T) {
		assert.Equal(t, []string{LowIncome, HighIncome}, df.Col(Income).Records())
	})

	t.Run("question mark becomes missing", func(t *testing.T) {
		assert.Equal(t, []bool{false, true}, df.Col(Workclass).IsNaN())
		assert.Equal(t, []bool{false, true}, df.Col(Occupation).IsNaN())
		assert.False(t, df.Col(NativeCountry).HasNaN())
	})
}

func TestLoadReaderSkipRows(t *testing.T) {
	df, err := LoadReader(strings.NewReader(twoRows), "inline", LoadOptions{SkipRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, df.Nrow())
	assert.True(t, df.Col(Workclass).HasNaN())
	assert.Equal(t, []string{HighIncome}, df.Col(Income).Records())
}

func TestLoadReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "wrong column count",
			input: "skip\n39, State-gov, 77516, Bachelors, 13\n",
			want:  ErrSchemaMismatch,
		},
		{
			name:  "non numeric age",
			input: "skip\nold, State-gov, 77516, Bachelors, 13, Never-married, Adm-clerical, Not-in-family, White, Male, 2174, 0, 40, United-States, <=50K\n",
			want:  ErrSchemaMismatch,
		},
		{
			name:  "only the skipped line",
			input: "|1x3 Cross validator\n",
			want:  ErrNoRecords,
		},
		{
			name:  "empty input",
			input: "",
			want:  ErrNoRecords,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tt.input), "inline", DefaultLoadOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoadReaderMismatchNamesLine(t *testing.T) {
	input := twoRows + "1, 2, 3\n"
	_, err := LoadReader(strings.NewReader(input), "adult.test", DefaultLoadOptions())
	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "adult.test line 4")
}

func TestLoadCensus(t *testing.T) {
	df, err := LoadCensus(filepath.Join("testdata", "adult_sample.data"), DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, 41, df.Nrow())
	assert.True(t, df.Col(NativeCountry).HasNaN())
}

func TestLoadCensusMissingFile(t *testing.T) {
	_, err := LoadCensus(filepath.Join(t.TempDir(), "nope.data"), DefaultLoadOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCensusSchema(t *testing.T) {
	s := CensusSchema()
	assert.Equal(t, 15, s.Len())
	assert.Equal(t, 14, s.Index(Income))
	assert.Equal(t, -1, s.Index("salary"))
	assert.True(t, s.IsNumeric(CapitalGain))
	assert.False(t, s.IsNumeric(Workclass))
	assert.False(t, s.IsNumeric("salary"))
}
