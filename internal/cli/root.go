package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	plot "github.com/DeltaTestSoftware/cliqueplot"
)

// RootOptions holds global flags and the hooks tests replace.
type RootOptions struct {
	Verbose bool

	// Dir is the directory holding results.csv and results.png.
	Dir string

	// Show displays a figure and blocks until the viewer is closed.
	Show func(*plot.Figure) error
}

// NewRootCommand creates the root command. Run without a subcommand it plots
// results.csv from the working directory.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		Dir:  ".",
		Show: (*plot.Figure).Show,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cliqueplot",
		Short: "Plot retrieval error rates of a clique associative memory",
		Long: `Plots guided and blind retrieval error rates against the number of stored
messages. The table is read from results.csv in the working directory, the
figure is written to results.png and then shown in a window.

Use "cliqueplot simulate" to regenerate results.csv.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, opts.Verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSimulateCommand(opts))

	return cmd
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
