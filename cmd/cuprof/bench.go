package main

import (
	"github.com/danpilch/cuprof/pkg/benchmark"
	"github.com/danpilch/cuprof/pkg/trace"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newBenchCmd(g *globalOptions) *cobra.Command {
	opts := benchmark.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "bench <script>",
		Short: "Measure replay latency and profiler overhead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instrs, err := trace.ParseFile(args[0])
			if err != nil {
				return err
			}

			// Aborted instructions would warn on every iteration.
			quiet := logrus.New()
			quiet.SetLevel(logrus.ErrorLevel)
			opts.Replay = trace.Options{
				DefaultBudget: g.cfg.ComputeBudget,
				LogLimit:      g.cfg.LogBytesLimit,
				Logger:        quiet,
			}

			results, err := benchmark.Run(cmd.Context(), instrs, opts)
			benchmark.RenderResults(cmd.OutOrStdout(), results, benchmark.MeasureOverhead())
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", opts.Iterations, "measured iterations per instruction")
	cmd.Flags().IntVar(&opts.Warmup, "warmup", opts.Warmup, "warmup iterations per instruction")
	return cmd
}
