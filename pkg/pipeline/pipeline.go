package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/data"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/dataprep"
)

// Stage is one table-to-table step. Apply must not modify its input.
type Stage interface {
	Name() string
	Apply(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// Pipeline chains stages and logs the table shape after each one.
type Pipeline struct {
	steps []Stage
	log   zerolog.Logger
}

func NewPipeline(log zerolog.Logger, steps ...Stage) *Pipeline {
	return &Pipeline{steps: steps, log: log}
}

// Apply runs every stage in order and stops at the first error.
func (p *Pipeline) Apply(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, step := range p.steps {
		out, err := step.Apply(df)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%s: %w", step.Name(), err)
		}
		rows, cols := out.Dims()
		p.log.Debug().Str("stage", step.Name()).Int("rows", rows).Int("cols", cols).Msg("stage done")
		df = out
	}
	return df, nil
}

// cleanStage wraps dataprep.Clean and keeps its report.
type cleanStage struct {
	opts   dataprep.CleanOptions
	report dataprep.CleanReport
}

func (s *cleanStage) Name() string { return "clean" }

func (s *cleanStage) Apply(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	out, report, err := dataprep.Clean(df, s.opts)
	s.report = report
	return out, err
}

// regroupStage wraps dataprep.Regroup and keeps its report.
type regroupStage struct {
	rules  dataprep.RegroupRules
	report dataprep.RegroupReport
}

func (s *regroupStage) Name() string { return "regroup" }

func (s *regroupStage) Apply(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	out, report, err := dataprep.Regroup(df, s.rules)
	s.report = report
	return out, err
}

// PrepareOptions configures Prepare.
type PrepareOptions struct {
	Load   data.LoadOptions
	Clean  dataprep.CleanOptions
	Rules  dataprep.RegroupRules
	Logger zerolog.Logger
}

// Prepared is one dataset file after loading, cleaning, regrouping and encoding.
type Prepared struct {
	Name    string
	Raw     dataframe.DataFrame
	Table   dataframe.DataFrame
	Clean   dataprep.CleanReport
	Regroup dataprep.RegroupReport
	Encoded *dataprep.Encoded
}

// Prepare loads path and runs it through clean, regroup and encode.
func Prepare(path string, opts PrepareOptions) (*Prepared, error) {
	raw, err := data.LoadCensus(path, opts.Load)
	if err != nil {
		return nil, err
	}
	return PrepareFrame(raw, path, opts)
}

// PrepareFrame is Prepare for a table that is already loaded.
func PrepareFrame(raw dataframe.DataFrame, name string, opts PrepareOptions) (*Prepared, error) {
	log := opts.Logger.With().Str("dataset", name).Logger()
	rules := opts.Rules
	if rules == nil {
		rules = dataprep.CensusRules()
	}

	rows, cols := raw.Dims()
	log.Info().Int("rows", rows).Int("cols", cols).Msg("loaded")
	for _, m := range dataprep.MissingReport(raw) {
		if m.Count > 0 {
			log.Debug().Str("column", m.Column).Int("missing", m.Count).Float64("pct", m.Percent).Msg("missing values")
		}
	}

	clean := &cleanStage{opts: opts.Clean}
	regroup := &regroupStage{rules: rules}
	table, err := NewPipeline(log, clean, regroup).Apply(raw)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", name, err)
	}

	log.Info().
		Int("outliers", clean.report.Outliers).
		Int("missing", clean.report.Missing).
		Int("duplicates", clean.report.Duplicates).
		Int("rows", clean.report.RowsOut).
		Msg("cleaned")
	for col, values := range regroup.report.Unmapped {
		for v, n := range values {
			log.Warn().Str("column", col).Str("value", v).Int("rows", n).Msg("value not covered by regroup rules, kept as is")
		}
	}

	enc, err := dataprep.DummyEncode(table, data.Income)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: encode: %w", name, err)
	}
	log.Info().Int("features", len(enc.FeatureNames)).Int("positives", sum(enc.Y)).Msg("encoded")

	return &Prepared{
		Name:    name,
		Raw:     raw,
		Table:   table,
		Clean:   clean.report,
		Regroup: regroup.report,
		Encoded: enc,
	}, nil
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}
