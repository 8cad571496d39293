package main

import (
	"fmt"

	"github.com/danpilch/cuprof/pkg/baseline"
	"github.com/spf13/cobra"
)

func newBaselineCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Save and compare per-section consumption baselines",
	}
	cmd.AddCommand(newBaselineSaveCmd(g), newBaselineListCmd(g), newBaselineCompareCmd(g), newBaselineDeleteCmd(g))
	return cmd
}

func newBaselineSaveCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <script>",
		Short: "Replay a script and store its section totals as a baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := replayFile(cmd, g, args[1])
			if err != nil {
				return err
			}
			if err := failedErr(results); err != nil {
				return fmt.Errorf("refusing to save baseline: %w", err)
			}

			b := baseline.NewBaseline(args[0], args[1], results)
			if err := baseline.NewStore(g.cfg.BaselineDir).Save(b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved baseline %q with %d sections\n", b.Name, len(b.Sections))
			return nil
		},
	}
}

func newBaselineListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := baseline.NewStore(g.cfg.BaselineDir).List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No baselines saved")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newBaselineCompareCmd(g *globalOptions) *cobra.Command {
	var failOnRegression bool

	cmd := &cobra.Command{
		Use:   "compare <name> <script>",
		Short: "Replay a script and compare net CU per section against a baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := baseline.NewStore(g.cfg.BaselineDir).Load(args[0])
			if err != nil {
				return err
			}
			results, err := replayFile(cmd, g, args[1])
			if err != nil {
				return err
			}

			th := baseline.Thresholds{
				Minor:    g.cfg.Drift.Minor,
				Moderate: g.cfg.Drift.Moderate,
				Major:    g.cfg.Drift.Major,
			}
			comparisons := baseline.Compare(b, baseline.Aggregate(results), th)
			baseline.RenderComparison(cmd.OutOrStdout(), b, comparisons)

			if n := baseline.Regressions(comparisons); failOnRegression && n > 0 {
				return fmt.Errorf("%d sections regressed", n)
			}
			return failedErr(results)
		},
	}

	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "exit non-zero when any section regresses")
	return cmd
}

func newBaselineDeleteCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a saved baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := baseline.NewStore(g.cfg.BaselineDir).Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted baseline %q\n", args[0])
			return nil
		},
	}
}
