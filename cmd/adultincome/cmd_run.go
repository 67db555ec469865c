package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/model"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/pipeline"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Train on the training file and report on both files (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}
}

func runRun(cmd *cobra.Command, opts *options) error {
	cfg, log, err := opts.load(cmd)
	if err != nil {
		return err
	}
	res, err := pipeline.Run(cfg.Pipeline(), log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.TrainReport.Render())
	fmt.Fprintln(out, res.TestReport.Render())
	fmt.Fprintln(out, renderImportances(res.Importances))
	if cfg.Tree.ShowTree {
		tree, err := res.Tree.Export(res.FeatureNames, res.ClassNames)
		if err != nil {
			return err
		}
		fmt.Fprint(out, tree)
	}
	return nil
}

func renderImportances(importances []pipeline.FeatureImportance) string {
	tw := table.NewWriter()
	tw.SetStyle(model.TableStyle())
	tw.SetTitle("feature importance")
	tw.AppendHeader(table.Row{"feature", "importance"})
	for _, fi := range importances {
		tw.AppendRow(table.Row{fi.Feature, fmt.Sprintf("%.4f", fi.Importance)})
	}
	return tw.Render()
}
