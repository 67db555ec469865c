package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/model"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/stats"
)

// SearchConfig configures the cross-validated hyperparameter search.
type SearchConfig struct {
	Grid    []model.Params
	Folds   int
	Workers int
	Shuffle bool
}

// DefaultSearchConfig is six contiguous folds over the default grid.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{Grid: model.DefaultGrid(), Folds: 6}
}

// Search prepares the training file and grid-searches tree depth and
// criterion on it. The test file is not read.
func Search(ctx context.Context, cfg Config, sc SearchConfig, log zerolog.Logger) (*model.SearchResult, error) {
	log = log.With().Str("run_id", uuid.NewString()).Logger()

	train, err := Prepare(cfg.TrainPath, trainOptions(cfg, log))
	if err != nil {
		return nil, err
	}
	X, err := stats.NewStandardScaler(numeric(train.Encoded)...).FitTransform(train.Encoded.X)
	if err != nil {
		return nil, fmt.Errorf("pipeline: scale train: %w", err)
	}
	scaled := withX(train.Encoded, X)

	grid := sc.Grid
	if len(grid) == 0 {
		grid = model.DefaultGrid()
	}
	start := time.Now()
	res, err := model.GridSearch(ctx, scaled.Rows(), scaled.Y, grid, model.SearchOptions{
		Folds:       sc.Folds,
		Workers:     sc.Workers,
		Shuffle:     sc.Shuffle,
		MaxFeatures: cfg.Tree.MaxFeatures,
		RandomState: cfg.Tree.RandomState,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: search: %w", err)
	}
	log.Info().
		Int("candidates", len(res.Candidates)).
		Str("best", res.Best.Params.String()).
		Float64("score", res.Best.Mean).
		Dur("took", time.Since(start)).
		Msg("grid search done")
	return res, nil
}
