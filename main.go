package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dusted-go/logging/prettylog"
	"github.com/spf13/cobra"
)

type rootArgs struct {
	Conf       string
	ConfNames  string
	Bench      string
	BenchNames string
	TmpDir     string
	Summary    string
	Count      int
	Verbose    bool
}

func newRootCmd() *cobra.Command {
	args := &rootArgs{}
	cmd := &cobra.Command{
		Use:   "movebench",
		Short: "Build and run the clone/take benchmarks under one or more Go toolchains",
		Long: `movebench builds the benchmark packages listed in a benchmarks file with
every configuration of a configurations file, runs them, and prints a
summary comparing the clone_vector and take_vector scenarios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts := slog.HandlerOptions{Level: slog.LevelInfo}
			if args.Verbose {
				opts.Level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(prettylog.New(&opts, prettylog.WithDestinationWriter(cmd.ErrOrStderr()))))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&args.Conf, "configs", "C", "", "configurations file")
	f.StringVarP(&args.ConfNames, "config-names", "c", "", "use configurations from comma-separated list (even if normally \"disabled\")")
	f.BoolVarP(&args.Verbose, "verbose", "v", false, "print commands as they are run")
	f.IntVarP(&args.Count, "count", "N", 1, "benchmark/test repeat count")
	f.StringVarP(&args.Bench, "benchmarks", "B", "", "benchmarks file")
	f.StringVarP(&args.BenchNames, "bench-names", "b", "", "run benchmarks in comma-separated list (even if normally \"disabled\")")
	f.StringVarP(&args.TmpDir, "tmp", "T", "tmp", "path to temporary directory")
	f.StringVar(&args.Summary, "summary", "", "write the aggregated results to this TOML file")
	return cmd
}

func run(cmd *cobra.Command, args *rootArgs) error {
	if args.Conf == "" {
		return errors.New("configurations file expected but not presented")
	}
	if args.Bench == "" {
		return errors.New("benchmarks file expected but not presented")
	}
	if args.Count < 0 {
		return fmt.Errorf("invalid repeat count %d", args.Count)
	}

	confList, err := loadConfigurations(args.Conf)
	if err != nil {
		return err
	}
	benchList, err := loadBenchmarks(args.Bench)
	if err != nil {
		return err
	}
	confList.selectConfigurations(args.ConfNames)
	benchList.selectBenchmarks(args.BenchNames)
	benchList.applyDefaults()

	tmp, err := initDir(args.TmpDir)
	if err != nil {
		return err
	}
	rep := NewReport()
	for _, c := range confList.Configurations {
		if c.Disabled {
			continue
		}
		c.resolvePgo()
		if err := buildBenchmarks(c, benchList.Benchmarks, tmp); err != nil {
			return err
		}
		if err := runBenchmarks(c, benchList.Benchmarks, tmp, args.Count, rep); err != nil {
			return err
		}
	}

	summaries, err := rep.Summaries()
	if err != nil {
		return err
	}
	comparisons := Compare(summaries)
	fmt.Fprintln(cmd.OutOrStdout())
	if err := printReport(cmd.OutOrStdout(), summaries, comparisons); err != nil {
		return err
	}
	if args.Summary != "" {
		if err := writeSummary(args.Summary, summaries, comparisons); err != nil {
			return err
		}
		slog.Info("Summary written", "path", args.Summary)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
