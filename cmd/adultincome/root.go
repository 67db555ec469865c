// adultincome trains and evaluates a decision tree on the UCI Adult census
// data.
//
// Usage:
//
//	adultincome [run] [--config=<file>] [--train=<path>] [--test=<path>] [--scaler=independent|shared] [--show-tree]
//	adultincome eda [--plots-dir=<dir>]
//	adultincome search
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/config"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/logging"
)

// options are the flags shared by every command. Set flags override the
// config file and environment.
type options struct {
	configPath string
	train      string
	test       string
	logLevel   string
	scaler     string
	plotsDir   string
	showTree   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "adultincome",
		Short:         "Predict >50K income on the UCI Adult census data with a decision tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringVar(&opts.train, "train", "", "training data file (default data/adult.data)")
	f.StringVar(&opts.test, "test", "", "test data file (default data/adult.test)")
	f.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn or error")
	f.StringVar(&opts.scaler, "scaler", "", "test scaling policy: independent or shared")
	f.StringVar(&opts.plotsDir, "plots-dir", "", "write EDA charts as PNG into this directory")
	f.BoolVar(&opts.showTree, "show-tree", false, "print the fitted tree")

	root.AddCommand(newRunCmd(opts), newEDACmd(opts), newSearchCmd(opts))
	return root
}

// load resolves the configuration and the logger for one command.
func (o *options) load(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	flags := cmd.Flags()
	if flags.Changed("train") {
		cfg.Data.Train = o.train
	}
	if flags.Changed("test") {
		cfg.Data.Test = o.test
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("scaler") {
		cfg.Scaler = o.scaler
	}
	if flags.Changed("plots-dir") {
		cfg.EDA.PlotsDir = o.plotsDir
	}
	if flags.Changed("show-tree") {
		cfg.Tree.ShowTree = o.showTree
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log, _ := logging.New(logging.DefaultConfig(), os.Stderr)
		log.Error().Err(err).Msg("adultincome failed")
		fmt.Fprintln(os.Stderr, "run 'adultincome --help' for usage")
		os.Exit(1)
	}
}
