package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/pipeline"
)

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Cross-validate tree depth and criterion on the training file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			res, err := pipeline.Search(cmd.Context(), cfg.Pipeline(), cfg.SearchGrid(), log)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Render())
			return nil
		},
	}
}
