// Command sparsemat benchmarks the sparse-matrix storage backends against a
// deterministic workload and prints per-backend and cross-backend rates.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oshokin/sparsemat/sparsemat"
	"github.com/oshokin/sparsemat/sparsemat/backend"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := sparsemat.DefaultOptions()

	var verbose bool

	cmd := &cobra.Command{
		Use:   "sparsemat",
		Short: "Benchmark pluggable sparse-matrix storage backends",
		Long: "sparsemat drives each storage backend through put, verify, miss-lookup\n" +
			"and delete phases on an identical deterministic coordinate stream,\n" +
			"cross-validating the backends against each other while timing them.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			runner, err := sparsemat.NewRunner(opts, logger)
			if err != nil {
				return err
			}

			summary, err := runner.Run()
			if summary != nil {
				fmt.Fprint(cmd.OutOrStdout(), summary.String())
			}

			return err
		},
	}

	flags := cmd.Flags()
	flags.Uint64Var(&opts.Items, "items", opts.Items,
		fmt.Sprintf("target population count per backend [%d, %d]", sparsemat.MinItems, sparsemat.MaxItems))
	flags.Uint32Var(&opts.Size, "size", opts.Size,
		fmt.Sprintf("matrix dimension, applied to both axes [%d, %d]", sparsemat.MinSize, sparsemat.MaxSize))
	flags.StringVar(&opts.Method, "method", opts.Method,
		fmt.Sprintf("backend to exercise: %q or one of %s",
			sparsemat.MethodAll, strings.Join(backend.Names(), ", ")))
	flags.Uint32Var(&opts.SeedW, "seed-w", opts.SeedW, "first word of the deterministic stream seed")
	flags.Uint32Var(&opts.SeedZ, "seed-z", opts.SeedZ, "second word of the deterministic stream seed")
	flags.StringVar(&opts.Path, "path", opts.Path, "scratch directory for file-backed backends")
	flags.BoolVar(&opts.FailFast, "fail-fast", opts.FailFast, "abort the whole run on the first backend failure")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
