package model

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/loader"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/stats"
)

// Params is one grid point.
type Params struct {
	MaxDepth  int // 0 => unbounded
	Criterion string
}

func (p Params) String() string {
	depth := "none"
	if p.MaxDepth > 0 {
		depth = fmt.Sprint(p.MaxDepth)
	}
	return fmt.Sprintf("max_depth=%s criterion=%s", depth, p.Criterion)
}

// DefaultGrid crosses depths {5, 10, 50, 100, unbounded} with both criteria,
// depth-major.
func DefaultGrid() []Params {
	var grid []Params
	for _, d := range []int{5, 10, 50, 100, 0} {
		for _, c := range []string{Gini, Entropy} {
			grid = append(grid, Params{MaxDepth: d, Criterion: c})
		}
	}
	return grid
}

// SearchOptions configures GridSearch. Tree options not in the grid come
// from MaxFeatures and RandomState.
type SearchOptions struct {
	Folds       int
	Workers     int
	Shuffle     bool
	MaxFeatures int
	RandomState int64
}

// CandidateScore is the cross-validated score of one grid point.
type CandidateScore struct {
	Params     Params
	FoldScores []float64
	Mean       float64
	Std        float64
}

// SearchResult lists every candidate in grid order and the winner.
type SearchResult struct {
	Candidates []CandidateScore
	Best       CandidateScore
	BestIndex  int
}

// GridSearch scores each grid point by mean k-fold accuracy. The best
// candidate has the highest mean; ties go to the earlier grid point.
// Candidates run concurrently; the result does not depend on Workers.
func GridSearch(ctx context.Context, X [][]float64, y []int, grid []Params, opts SearchOptions) (*SearchResult, error) {
	if len(grid) == 0 {
		return nil, errors.New("search: empty grid")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrLengthMismatch, len(X), len(y))
	}
	if opts.Folds == 0 {
		opts.Folds = 6
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	folds, err := loader.KFold(len(X), opts.Folds, loader.KFoldOptions{Shuffle: opts.Shuffle, RandomState: opts.RandomState})
	if err != nil {
		return nil, err
	}

	scores := make([]CandidateScore, len(grid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, params := range grid {
		i, params := i, params
		g.Go(func() error {
			fold := make([]float64, len(folds))
			for k, f := range folds {
				if err := gctx.Err(); err != nil {
					return err
				}
				Xtr, ytr := loader.Take(X, y, f.Train)
				Xte, yte := loader.Take(X, y, f.Test)
				tree := NewDecisionTreeClassifier(
					WithMaxDepth(params.MaxDepth),
					WithCriterion(params.Criterion),
					WithMaxFeatures(opts.MaxFeatures),
					WithRandomState(opts.RandomState),
				)
				if err := tree.Fit(Xtr, ytr); err != nil {
					return fmt.Errorf("search: %s fold %d: %w", params, k, err)
				}
				fold[k] = Accuracy(yte, tree.Predict(Xte))
			}
			scores[i] = CandidateScore{
				Params:     params,
				FoldScores: fold,
				Mean:       stats.Mean(fold),
				Std:        stats.Std(fold),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := range scores {
		if scores[i].Mean > scores[best].Mean {
			best = i
		}
	}
	return &SearchResult{Candidates: scores, Best: scores[best], BestIndex: best}, nil
}

// Render lists the candidates with their mean and spread, marking the best.
func (r *SearchResult) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(TableStyle())
	tw.SetTitle("grid search (mean k-fold accuracy)")
	tw.AppendHeader(table.Row{"#", "max depth", "criterion", "mean", "std", ""})
	for i, c := range r.Candidates {
		depth := "none"
		if c.Params.MaxDepth > 0 {
			depth = fmt.Sprint(c.Params.MaxDepth)
		}
		mark := ""
		if i == r.BestIndex {
			mark = "best"
		}
		tw.AppendRow(table.Row{i + 1, depth, c.Params.Criterion, fmt.Sprintf("%.4f", c.Mean), fmt.Sprintf("%.4f", c.Std), mark})
	}
	return tw.Render() + "\n"
}
