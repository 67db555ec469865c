package pipeline

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/data"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/dataprep"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/model"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/stats"
)

// ScalerPolicy decides which statistics standardise the test matrix.
type ScalerPolicy string

const (
	// Independent fits a second scaler on the test matrix.
	Independent ScalerPolicy = "independent"
	// Shared reuses the scaler fitted on the training matrix.
	Shared ScalerPolicy = "shared"
)

// TreeConfig holds the classifier hyperparameters.
type TreeConfig struct {
	MaxDepth    int
	Criterion   string
	MaxFeatures int
	RandomState int64
}

// Config is everything one train/test run needs.
type Config struct {
	TrainPath          string
	TestPath           string
	SkipRows           int
	OutlierThreshold   int
	FilterTestOutliers bool
	Scaler             ScalerPolicy
	Tree               TreeConfig
}

// DefaultConfig reproduces the reference run: depth-3 gini tree on seven
// sampled features, seed 42, outliers removed from training data only.
func DefaultConfig() Config {
	return Config{
		TrainPath:        "data/adult.data",
		TestPath:         "data/adult.test",
		SkipRows:         1,
		OutlierThreshold: dataprep.DefaultOutlierThreshold,
		Scaler:           Independent,
		Tree: TreeConfig{
			MaxDepth:    3,
			Criterion:   model.Gini,
			MaxFeatures: 7,
			RandomState: 42,
		},
	}
}

// FeatureImportance pairs a feature with its share of impurity decrease.
type FeatureImportance struct {
	Feature    string
	Importance float64
}

// Result is the outcome of Run.
type Result struct {
	RunID        string
	Train        *Prepared
	Test         *Prepared
	Tree         *model.DecisionTreeClassifier
	FeatureNames []string
	ClassNames   []string
	TrainReport  *model.ClassificationReport
	TestReport   *model.ClassificationReport
	Importances  []FeatureImportance
	Alignment    dataprep.AlignReport
}

// Run prepares both files, trains the tree on the training matrix and scores
// it on both.
func Run(cfg Config, log zerolog.Logger) (*Result, error) {
	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Logger()

	if cfg.Scaler == "" {
		cfg.Scaler = Independent
	}
	if cfg.Scaler != Independent && cfg.Scaler != Shared {
		return nil, fmt.Errorf("pipeline: unknown scaler policy %q", cfg.Scaler)
	}
	if cfg.Scaler == Independent {
		log.Warn().Msg("test matrix is standardised with its own statistics, not the training scaler")
	}

	train, err := Prepare(cfg.TrainPath, trainOptions(cfg, log))
	if err != nil {
		return nil, err
	}
	test, err := Prepare(cfg.TestPath, testOptions(cfg, log))
	if err != nil {
		return nil, err
	}

	names := train.Encoded.FeatureNames
	testEnc, align, err := test.Encoded.Align(names)
	if err != nil {
		return nil, err
	}
	if !align.Empty() {
		log.Warn().Strs("added", align.Added).Strs("dropped", align.Dropped).Msg("test features aligned to training features")
	}

	scaledTrain, scaledTest, err := scale(train.Encoded, testEnc, cfg.Scaler)
	if err != nil {
		return nil, err
	}

	tree := NewTree(cfg.Tree)
	if err := tree.Fit(scaledTrain.Rows(), scaledTrain.Y); err != nil {
		return nil, fmt.Errorf("pipeline: fit: %w", err)
	}
	log.Info().Int("depth", tree.Depth()).Int("leaves", tree.NLeaves()).Msg("tree trained")

	classNames := train.Encoded.Levels[data.Income]
	trainReport, err := evaluate(tree, scaledTrain, classNames, "train")
	if err != nil {
		return nil, err
	}
	testReport, err := evaluate(tree, scaledTest, classNames, "test")
	if err != nil {
		return nil, err
	}
	log.Info().Float64("train_accuracy", trainReport.Accuracy).Float64("test_accuracy", testReport.Accuracy).Msg("evaluated")

	return &Result{
		RunID:        runID,
		Train:        train,
		Test:         test,
		Tree:         tree,
		FeatureNames: names,
		ClassNames:   classNames,
		TrainReport:  trainReport,
		TestReport:   testReport,
		Importances:  rankImportances(names, tree.FeatureImportances()),
		Alignment:    align,
	}, nil
}

// NewTree builds an unfitted classifier from cfg.
func NewTree(cfg TreeConfig) *model.DecisionTreeClassifier {
	return model.NewDecisionTreeClassifier(
		model.WithMaxDepth(cfg.MaxDepth),
		model.WithCriterion(cfg.Criterion),
		model.WithMaxFeatures(cfg.MaxFeatures),
		model.WithRandomState(cfg.RandomState),
	)
}

func trainOptions(cfg Config, log zerolog.Logger) PrepareOptions {
	return PrepareOptions{
		Load:   data.LoadOptions{SkipRows: cfg.SkipRows},
		Clean:  dataprep.CleanOptions{FilterOutliers: true, OutlierThreshold: cfg.OutlierThreshold},
		Logger: log,
	}
}

func testOptions(cfg Config, log zerolog.Logger) PrepareOptions {
	return PrepareOptions{
		Load:   data.LoadOptions{SkipRows: cfg.SkipRows},
		Clean:  dataprep.CleanOptions{FilterOutliers: cfg.FilterTestOutliers, OutlierThreshold: cfg.OutlierThreshold},
		Logger: log,
	}
}

// scale standardises the numeric columns of both encodings under policy and
// returns copies holding the scaled matrices.
func scale(train, test *dataprep.Encoded, policy ScalerPolicy) (*dataprep.Encoded, *dataprep.Encoded, error) {
	trainScaler := stats.NewStandardScaler(numeric(train)...)
	Xtrain, err := trainScaler.FitTransform(train.X)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: scale train: %w", err)
	}

	testScaler := trainScaler
	if policy == Independent {
		testScaler = stats.NewStandardScaler(numeric(test)...)
		if err := testScaler.Fit(test.X); err != nil {
			return nil, nil, fmt.Errorf("pipeline: scale test: %w", err)
		}
	}
	Xtest, err := testScaler.Transform(test.X)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: scale test: %w", err)
	}
	return withX(train, Xtrain), withX(test, Xtest), nil
}

// evaluate scores clf on enc and titles the report.
func evaluate(clf model.Classifier, enc *dataprep.Encoded, classNames []string, title string) (*model.ClassificationReport, error) {
	report, err := model.NewClassificationReport(enc.Y, clf.Predict(enc.Rows()), []int{0, 1}, classNames)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s report: %w", title, err)
	}
	report.Title = title
	return report, nil
}

// numeric returns the numeric column indexes as a non-nil slice, so an
// encoding without numeric columns scales nothing.
func numeric(enc *dataprep.Encoded) []int {
	return append([]int{}, enc.NumericColumns...)
}

func withX(enc *dataprep.Encoded, X *mat.Dense) *dataprep.Encoded {
	out := *enc
	out.X = X
	return &out
}

// rankImportances sorts features by importance, highest first, dropping zeros.
func rankImportances(names []string, importances []float64) []FeatureImportance {
	var out []FeatureImportance
	for j, v := range importances {
		if v > 0 {
			out = append(out, FeatureImportance{Feature: names[j], Importance: v})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Importance > out[b].Importance })
	return out
}
