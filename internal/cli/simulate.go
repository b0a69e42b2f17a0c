package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeltaTestSoftware/cliqueplot/internal/experiment"
	"github.com/DeltaTestSoftware/cliqueplot/internal/results"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Config    string
	Output    string
	Seed      uint64
	Workers   int
	MaxTrials int
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the retrieval experiment and write results.csv",
		Long: `Runs the retrieval experiment on a clique associative memory: for each
number of stored messages, random messages are learned, some of their
sub-messages erased, and the guided and blind recall error rates measured.

Parameters default to the published experiment (100 clusters of 64 fanals,
messages of order 12, 3 erased sub-messages, 4 guided iterations) and can be
overridden by a YAML file.

Example:
  cliqueplot simulate
  cliqueplot simulate --config small.yaml --workers 4 --seed 7 -o results.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML file with experiment parameters")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", InputFile, "path of the results table to write")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (default: time based unless set in the config)")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.NumCPU(), "number of steps simulated concurrently")
	cmd.Flags().IntVar(&opts.MaxTrials, "max-trials", 0, "upper bound on trials per step, 0 for none")

	return cmd
}

func simulateConfig(cmd *cobra.Command, opts *SimulateOptions) (experiment.Config, error) {
	cfg := experiment.DefaultConfig()
	if opts.Config != "" {
		var err error
		if cfg, err = experiment.LoadConfig(opts.Config); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	switch {
	case flags.Changed("seed"):
		cfg.Seed = opts.Seed
	case cfg.Seed == 0:
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("max-trials") {
		cfg.MaxTrials = opts.MaxTrials
	}
	return cfg, cfg.Validate()
}

func runSimulate(cmd *cobra.Command, opts *SimulateOptions) error {
	cfg, err := simulateConfig(cmd, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid experiment config", err)
	}

	out := opts.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(opts.Dir, out)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := experiment.ProgressPrinter(cmd.ErrOrStderr(), cfg.Steps+1)
	sw, err := experiment.Run(ctx, cfg, progress)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	if err := results.WriteFile(out, results.Header, sw.Rows()); err != nil {
		return WrapExitError(ExitFailure, "failed to write results", err)
	}
	slog.Info("results written", "path", out, "run", sw.RunID, "rows", len(sw.Steps))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(sw.Steps), out)
	return nil
}
