// Command recs-collate streams newline- or whitespace-separated JSON
// records from stdin or one or more files, groups them by a composite key,
// and emits one aggregated JSON record per group.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/benbernard/recs-collate/aggregate"
	"github.com/benbernard/recs-collate/log"
	"github.com/benbernard/recs-collate/profile"
	"github.com/benbernard/recs-collate/version"
)

func main() {
	aggCfg := aggregate.NewConfig()
	logCfg := log.NewConfig()
	profCfg := profile.NewConfig()
	profiler := profCfg.NewProfiler()

	var (
		showVersion    bool
		listAggs       bool
		showAggregator string
	)

	rootCmd := &cobra.Command{
		Use:   "recs-collate [flags] [file ...]",
		Short: "Group JSON records by key and emit per-group aggregates",
		Long: `recs-collate reads a stream of JSON objects (one per record, whitespace
separated or concatenated), groups them by a user-declared composite key, and
emits one aggregated JSON object per group using a pluggable set of
aggregators (count, sum, average, min, max, variance, covariance,
correlation, mode, percentile, concatenate).

With no file arguments, records are read from stdin.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return profiler.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return profiler.Stop()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), versionString())
				return nil
			}

			if listAggs {
				printAggregatorList(cmd.OutOrStdout())
				return nil
			}

			if showAggregator != "" {
				return printAggregatorHelp(cmd.OutOrStdout(), showAggregator)
			}

			w, closeTee, err := logCfg.NewWriter(os.Stderr)
			if err != nil {
				return err
			}
			defer closeTee() //nolint:errcheck // best-effort flush on exit.

			handler, err := logCfg.NewHandler(w)
			if err != nil {
				return err
			}

			logger := slog.New(handler)

			return run(cmd.Context(), aggCfg, logger, args)
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version information and exit")
	rootCmd.Flags().BoolVar(&listAggs, "list-aggregators", false, "list every registered aggregator kind and exit")
	rootCmd.Flags().StringVar(&showAggregator, "show-aggregator", "", "print detailed help for one aggregator kind and exit")

	aggCfg.RegisterFlags(rootCmd.Flags())
	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profCfg.RegisterFlags(rootCmd.PersistentFlags())

	for _, err := range []error{
		aggCfg.RegisterCompletions(rootCmd),
		logCfg.RegisterCompletions(rootCmd),
		profCfg.RegisterCompletions(rootCmd),
	} {
		if err != nil {
			fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
		}
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "recs-collate: %v\n", err)

		if isConfigError(err) {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, rootCmd.UsageString())
		}

		os.Exit(1)
	}
}

// isConfigError reports whether err is (or wraps) one of this repository's
// configuration-error sentinels, per §7's rule that only configuration
// errors are followed by the usage banner.
func isConfigError(err error) bool {
	return errors.Is(err, aggregate.ErrInvalidConfig) ||
		errors.Is(err, aggregate.ErrUnknownAggregator) ||
		errors.Is(err, aggregate.ErrInvalidAggregatorSpec)
}

// run builds a Collator from cfg and drives it over every named input file
// (or stdin, when none are given), flushing remaining clumps at end of
// input.
func run(ctx context.Context, cfg *aggregate.Config, logger *slog.Logger, files []string) error {
	collator, err := cfg.NewCollator(os.Stdout)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		logger.InfoContext(ctx, "collating from stdin")

		if err := collator.Run(ctx, os.Stdin); err != nil {
			return err
		}
	} else {
		for _, name := range files {
			logger.InfoContext(ctx, "collating input file", slog.String("file", name))

			f, err := os.Open(name) //nolint:gosec // filename is a CLI argument, expected.
			if err != nil {
				return fmt.Errorf("%w: opening %q: %w", aggregate.ErrInvalidConfig, name, err)
			}

			err = collator.Run(ctx, f)

			closeErr := f.Close()
			if err != nil {
				return err
			}

			if closeErr != nil {
				return fmt.Errorf("closing %q: %w", name, closeErr)
			}
		}
	}

	if err := collator.Flush(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "collation complete")

	return nil
}

func versionString() string {
	return fmt.Sprintf("recs-collate %s (branch=%s revision=%s built=%s by=%s go=%s %s/%s)",
		orUnknown(version.Version), orUnknown(version.Branch), version.Revision,
		orUnknown(version.BuildDate), orUnknown(version.BuildUser),
		version.GoVersion, version.GoOS, version.GoArch)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}

func printAggregatorList(w io.Writer) {
	for _, name := range aggregate.KindNames() {
		k, _ := aggregate.Lookup(name)
		fmt.Fprintf(w, "%-12s %s\n", k.Name, k.Help)
	}
}

func printAggregatorHelp(w io.Writer, name string) error {
	k, ok := aggregate.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", aggregate.ErrUnknownAggregator, name)
	}

	fmt.Fprintf(w, "%s", k.Name)

	if k.ShortName != "" && k.ShortName != k.Name {
		fmt.Fprintf(w, " (short name: %s)", k.ShortName)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, k.Help)

	return nil
}
