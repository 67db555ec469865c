package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/data"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/dataprep"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/model"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TrainPath = filepath.Join("testdata", "adult.data")
	cfg.TestPath = filepath.Join("testdata", "adult.test")
	return cfg
}

type failStage struct{}

func (failStage) Name() string { return "explode" }
func (failStage) Apply(dataframe.DataFrame) (dataframe.DataFrame, error) {
	return dataframe.DataFrame{}, errors.New("boom")
}

func TestPipelineStopsAtFailingStage(t *testing.T) {
	raw, err := data.LoadCensus(testConfig().TrainPath, data.DefaultLoadOptions())
	require.NoError(t, err)

	clean := &cleanStage{opts: dataprep.CleanOptions{}}
	_, err = NewPipeline(zerolog.Nop(), clean, failStage{}).Apply(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explode: boom")
	assert.Equal(t, 41, clean.report.RowsIn, "earlier stages still ran")
}

func TestPrepare(t *testing.T) {
	p, err := Prepare(testConfig().TrainPath, PrepareOptions{
		Load:  data.DefaultLoadOptions(),
		Clean: dataprep.CleanOptions{FilterOutliers: true, OutlierThreshold: dataprep.DefaultOutlierThreshold},
	})
	require.NoError(t, err)

	assert.Equal(t, 41, p.Raw.Nrow())
	assert.Equal(t, dataprep.CleanReport{
		RowsIn: 41, Outliers: 1, Missing: 2, Duplicates: 1, RowsOut: 37,
		DroppedCols: []string{data.Fnlwgt, data.Education},
	}, p.Clean)
	assert.True(t, p.Regroup.Empty())
	assert.Equal(t, 37, p.Table.Nrow())

	enc := p.Encoded
	assert.Len(t, enc.Y, 37)
	assert.Equal(t, 11, sum(enc.Y))
	assert.NotContains(t, enc.FeatureNames, data.Fnlwgt)

	t.Run("reference row", func(t *testing.T) {
		first := p.Table.Subset([]int{0})
		assert.Equal(t, dataprep.Government, first.Col(data.Workclass).Records()[0])
		assert.Equal(t, dataprep.WhiteCollar, first.Col(data.Occupation).Records()[0])
		assert.Equal(t, dataprep.US, first.Col(data.NativeCountry).Records()[0])
		assert.Equal(t, []string{"2174"}, first.Col(data.CapitalGain).Records())
		assert.Equal(t, 0, enc.Y[0])
	})

	t.Run("row with unknown workclass is gone", func(t *testing.T) {
		ages, err := p.Table.Col(data.Age).Int()
		require.NoError(t, err)
		hours, err := p.Table.Col(data.HoursPerWeek).Int()
		require.NoError(t, err)
		for i := range ages {
			assert.False(t, ages[i] == 54 && hours[i] == 60, "row %d", i)
		}
	})
}

func TestPrepareMissingFile(t *testing.T) {
	_, err := Prepare(filepath.Join(t.TempDir(), "adult.data"), PrepareOptions{Load: data.DefaultLoadOptions()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	res, err := Run(testConfig(), zerolog.New(&buf))
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), res.RunID)
	assert.Contains(t, buf.String(), "own statistics")

	assert.Equal(t, []string{data.LowIncome, data.HighIncome}, res.ClassNames)
	assert.Equal(t, res.Train.Encoded.FeatureNames, res.FeatureNames)
	assert.LessOrEqual(t, res.Tree.Depth(), 3)

	assert.Equal(t, 37, res.Train.Clean.RowsOut)
	assert.Equal(t, 13, res.Test.Clean.RowsOut)
	assert.Zero(t, res.Test.Clean.Outliers)

	assert.Equal(t, 26, res.TrainReport.Classes[0].Support)
	assert.Equal(t, 11, res.TrainReport.Classes[1].Support)
	assert.Equal(t, 7, res.TestReport.Classes[0].Support)
	assert.Equal(t, 6, res.TestReport.Classes[1].Support)
	assert.Equal(t, "test", res.TestReport.Title)

	assert.Contains(t, res.Alignment.Dropped, "race_Other")
	assert.Contains(t, res.Alignment.Added, "race_Asian-Pac-Islander")

	total := 0.0
	for i, fi := range res.Importances {
		assert.Contains(t, res.FeatureNames, fi.Feature)
		if i > 0 {
			assert.LessOrEqual(t, fi.Importance, res.Importances[i-1].Importance)
		}
		total += fi.Importance
	}
	assert.InDelta(t, 1, total, 1e-9)

	out, err := res.Tree.Export(res.FeatureNames, res.ClassNames)
	require.NoError(t, err)
	assert.Contains(t, out, "class: ")
}

func TestRunIsDeterministic(t *testing.T) {
	a, err := Run(testConfig(), zerolog.Nop())
	require.NoError(t, err)
	b, err := Run(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	ea, _ := a.Tree.Export(a.FeatureNames, a.ClassNames)
	eb, _ := b.Tree.Export(b.FeatureNames, b.ClassNames)
	assert.Equal(t, ea, eb)
	assert.Equal(t, a.TestReport, b.TestReport)
}

func TestRunScalerPolicies(t *testing.T) {
	cfg := testConfig()
	independent, err := Run(cfg, zerolog.Nop())
	require.NoError(t, err)

	cfg.Scaler = Shared
	var buf bytes.Buffer
	shared, err := Run(cfg, zerolog.New(&buf))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "own statistics")

	// the training side does not depend on the policy
	assert.Equal(t, independent.TrainReport, shared.TrainReport)

	cfg.Scaler = "global"
	_, err = Run(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunFilteringTestOutliers(t *testing.T) {
	cfg := testConfig()
	cfg.FilterTestOutliers = true
	cfg.OutlierThreshold = 7000
	res, err := Run(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Test.Clean.Outliers)
	assert.Equal(t, 12, res.Test.Clean.RowsOut)
}

func TestRunMissingTestFile(t *testing.T) {
	cfg := testConfig()
	cfg.TestPath = filepath.Join(t.TempDir(), "adult.test")
	_, err := Run(cfg, zerolog.Nop())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSearch(t *testing.T) {
	grid := []model.Params{{MaxDepth: 1, Criterion: model.Gini}, {MaxDepth: 3, Criterion: model.Entropy}}
	res, err := Search(context.Background(), testConfig(), SearchConfig{Grid: grid, Folds: 3, Workers: 2}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	for i, c := range res.Candidates {
		assert.Equal(t, grid[i], c.Params)
		assert.Len(t, c.FoldScores, 3)
		assert.GreaterOrEqual(t, c.Mean, 0.0)
		assert.LessOrEqual(t, c.Mean, 1.0)
	}
	assert.Equal(t, res.Candidates[res.BestIndex], res.Best)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, testConfig(), DefaultSearchConfig(), zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}

type constantClassifier int

func (c constantClassifier) Fit([][]float64, []int) error { return nil }

func (c constantClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range out {
		out[i] = int(c)
	}
	return out
}

func TestScaleAndEvaluate(t *testing.T) {
	encoded := func(vals ...float64) *dataprep.Encoded {
		return &dataprep.Encoded{
			X:              mat.NewDense(2, 2, vals),
			Y:              []int{0, 1},
			FeatureNames:   []string{data.Age, "sex_Male"},
			NumericColumns: []int{0},
		}
	}
	train := encoded(0, 1, 2, 0)
	test := encoded(4, 1, 6, 0)

	t.Run("shared", func(t *testing.T) {
		strain, stest, err := scale(train, test, Shared)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{-1, 1}, {1, 0}}, strain.Rows())
		assert.Equal(t, [][]float64{{3, 1}, {5, 0}}, stest.Rows())
		assert.Equal(t, 0.0, train.X.At(0, 0), "input matrix untouched")
	})

	t.Run("independent", func(t *testing.T) {
		_, stest, err := scale(train, test, Independent)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{-1, 1}, {1, 0}}, stest.Rows())
		assert.Equal(t, test.Y, stest.Y)
	})

	report, err := evaluate(constantClassifier(1), test, []string{data.LowIncome, data.HighIncome}, "test")
	require.NoError(t, err)
	assert.Equal(t, "test", report.Title)
	assert.InDelta(t, 0.5, report.Accuracy, 1e-12)
}
