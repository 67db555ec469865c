// Package config loads run settings from defaults, an optional YAML file and
// ADULT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/logging"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/model"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/pipeline"
)

// EnvPrefix prefixes every environment override, e.g. ADULT_TREE_MAX_DEPTH.
const EnvPrefix = "ADULT"

type Config struct {
	Data    DataConfig     `yaml:"data" envconfig:"DATA"`
	Clean   CleanConfig    `yaml:"clean" envconfig:"CLEAN"`
	Scaler  string         `yaml:"scaler" envconfig:"SCALER" validate:"oneof=independent shared"`
	Tree    TreeConfig     `yaml:"tree" envconfig:"TREE"`
	Search  SearchConfig   `yaml:"search" envconfig:"SEARCH"`
	EDA     EDAConfig      `yaml:"eda" envconfig:"EDA"`
	Logging logging.Config `yaml:"logging" envconfig:"LOGGING"`
}

type DataConfig struct {
	Train    string `yaml:"train" envconfig:"TRAIN" validate:"required"`
	Test     string `yaml:"test" envconfig:"TEST" validate:"required"`
	SkipRows int    `yaml:"skip_rows" envconfig:"SKIP_ROWS" validate:"gte=0"`
}

type CleanConfig struct {
	OutlierThreshold   int  `yaml:"outlier_threshold" envconfig:"OUTLIER_THRESHOLD" validate:"gt=0"`
	FilterTestOutliers bool `yaml:"filter_test_outliers" envconfig:"FILTER_TEST_OUTLIERS"`
}

type TreeConfig struct {
	MaxDepth    int    `yaml:"max_depth" envconfig:"MAX_DEPTH" validate:"gte=0"`
	Criterion   string `yaml:"criterion" envconfig:"CRITERION" validate:"oneof=gini entropy"`
	MaxFeatures int    `yaml:"max_features" envconfig:"MAX_FEATURES" validate:"gte=0"`
	RandomState int64  `yaml:"random_state" envconfig:"RANDOM_STATE"`
	ShowTree    bool   `yaml:"show_tree" envconfig:"SHOW_TREE"`
}

type SearchConfig struct {
	Depths   []int    `yaml:"depths" envconfig:"DEPTHS" validate:"required,dive,gte=0"`
	Criteria []string `yaml:"criteria" envconfig:"CRITERIA" validate:"required,dive,oneof=gini entropy"`
	Folds    int      `yaml:"folds" envconfig:"FOLDS" validate:"gte=2"`
	Workers  int      `yaml:"workers" envconfig:"WORKERS" validate:"gte=0"`
	Shuffle  bool     `yaml:"shuffle" envconfig:"SHUFFLE"`
}

type EDAConfig struct {
	PlotsDir  string `yaml:"plots_dir" envconfig:"PLOTS_DIR"`
	AgeBins   int    `yaml:"age_bins" envconfig:"AGE_BINS" validate:"gt=0"`
	HoursBins int    `yaml:"hours_bins" envconfig:"HOURS_BINS" validate:"gt=0"`
}

// Default mirrors pipeline.DefaultConfig and the default search grid.
func Default() Config {
	p := pipeline.DefaultConfig()
	return Config{
		Data: DataConfig{Train: p.TrainPath, Test: p.TestPath, SkipRows: p.SkipRows},
		Clean: CleanConfig{
			OutlierThreshold:   p.OutlierThreshold,
			FilterTestOutliers: p.FilterTestOutliers,
		},
		Scaler: string(p.Scaler),
		Tree: TreeConfig{
			MaxDepth:    p.Tree.MaxDepth,
			Criterion:   p.Tree.Criterion,
			MaxFeatures: p.Tree.MaxFeatures,
			RandomState: p.Tree.RandomState,
		},
		Search: SearchConfig{
			Depths:   []int{5, 10, 50, 100, 0},
			Criteria: []string{model.Gini, model.Entropy},
			Folds:    pipeline.DefaultSearchConfig().Folds,
		},
		EDA:     EDAConfig{AgeBins: 10, HoursBins: 5},
		Logging: logging.DefaultConfig(),
	}
}

// Load applies the YAML file at path (skipped when path is empty) and then
// the environment on top of Default, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readFile decodes path over cfg. Keys absent from the file keep their
// current value; unknown keys are an error.
func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Pipeline converts the settings a train/test run needs.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		TrainPath:          c.Data.Train,
		TestPath:           c.Data.Test,
		SkipRows:           c.Data.SkipRows,
		OutlierThreshold:   c.Clean.OutlierThreshold,
		FilterTestOutliers: c.Clean.FilterTestOutliers,
		Scaler:             pipeline.ScalerPolicy(c.Scaler),
		Tree: pipeline.TreeConfig{
			MaxDepth:    c.Tree.MaxDepth,
			Criterion:   c.Tree.Criterion,
			MaxFeatures: c.Tree.MaxFeatures,
			RandomState: c.Tree.RandomState,
		},
	}
}

// SearchGrid crosses Depths with Criteria, depth-major.
func (c *Config) SearchGrid() pipeline.SearchConfig {
	var grid []model.Params
	for _, d := range c.Search.Depths {
		for _, crit := range c.Search.Criteria {
			grid = append(grid, model.Params{MaxDepth: d, Criterion: crit})
		}
	}
	return pipeline.SearchConfig{
		Grid:    grid,
		Folds:   c.Search.Folds,
		Workers: c.Search.Workers,
		Shuffle: c.Search.Shuffle,
	}
}
