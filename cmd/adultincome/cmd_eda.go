package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/data"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/dataprep"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/eda"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/pipeline"
)

func newEDACmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eda",
		Short: "Describe the training file before and after cleaning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			p, err := pipeline.Prepare(cfg.Data.Train, pipeline.PrepareOptions{
				Load: data.LoadOptions{SkipRows: cfg.Data.SkipRows},
				Clean: dataprep.CleanOptions{
					FilterOutliers:   true,
					OutlierThreshold: cfg.Clean.OutlierThreshold,
				},
				Logger: log,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := describeRaw(out, p); err != nil {
				return err
			}
			fmt.Fprintln(out, p.Clean.String())
			if err := describe(out, p, cfg.EDA.AgeBins, cfg.EDA.HoursBins); err != nil {
				return err
			}

			if cfg.EDA.PlotsDir == "" {
				return nil
			}
			files, err := eda.SavePlots(p.Table, data.Income, cfg.EDA.PlotsDir)
			if err != nil {
				return err
			}
			log.Info().Int("files", len(files)).Str("dir", cfg.EDA.PlotsDir).Msg("plots written")
			return nil
		},
	}
}

// describeRaw prints the tables for the file as loaded: missing values,
// every numeric column including fnlwgt and capital-loss, the original
// category values and their correlation.
func describeRaw(out io.Writer, p *pipeline.Prepared) error {
	fmt.Fprint(out, eda.RenderMissing(dataprep.MissingReport(p.Raw)))
	fmt.Fprint(out, eda.RenderSummaries("raw numeric columns", eda.Describe(p.Raw)))
	fmt.Fprint(out, eda.RenderUniques("raw categorical values", eda.Uniques(p.Raw)))
	corr, err := eda.Correlation(p.Raw)
	if err != nil {
		return err
	}
	fmt.Fprint(out, eda.RenderCorrelation("raw correlation", corr))
	return nil
}

// describe prints the exploratory tables for the cleaned, regrouped table.
func describe(out io.Writer, p *pipeline.Prepared, ageBins, hoursBins int) error {
	df := p.Table
	balance, err := eda.ClassBalance(df)
	if err != nil {
		return err
	}
	fmt.Fprint(out, eda.RenderCounts(data.Income, balance))
	fmt.Fprint(out, eda.RenderSummaries("cleaned numeric columns", eda.Describe(df)))
	fmt.Fprint(out, eda.RenderUniques("cleaned categorical values", eda.Uniques(df)))

	corr, err := eda.Correlation(df)
	if err != nil {
		return err
	}
	fmt.Fprint(out, eda.RenderCorrelation("cleaned correlation", corr))

	pivot, err := eda.PivotMeans(df, data.Income)
	if err != nil {
		return err
	}
	fmt.Fprint(out, eda.RenderPivot(pivot))

	for _, u := range eda.Uniques(df) {
		if u.Column == data.Income {
			continue
		}
		ct, err := eda.Crosstab(df, u.Column, data.Income)
		if err != nil {
			return err
		}
		fmt.Fprint(out, eda.RenderContingency(ct))
	}
	for _, r := range []struct {
		col  string
		bins int
	}{{data.Age, ageBins}, {data.HoursPerWeek, hoursBins}} {
		ct, err := eda.RangeCounts(df, r.col, r.bins, data.Income)
		if err != nil {
			return err
		}
		fmt.Fprint(out, eda.RenderContingency(ct))
	}
	return nil
}
