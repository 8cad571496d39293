package main

import (
	"fmt"

	"github.com/danpilch/cuprof/pkg/debug"
	"github.com/danpilch/cuprof/pkg/output"
	"github.com/danpilch/cuprof/pkg/trace"
	"github.com/spf13/cobra"
)

func newReplayCmd(g *globalOptions) *cobra.Command {
	var raw, timing bool

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Replay an instruction script and print each section's consumption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := g.outputFormat()
			if err != nil {
				return err
			}
			results, err := replayFile(cmd, g, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := output.NewFormatter(format, w).Render(results); err != nil {
				return err
			}
			if raw {
				for _, r := range results {
					debug.DumpRawEntries(w, r.Name, r.Report)
				}
			}
			if timing {
				debug.TimingReport(w, debug.Timings(results))
			}
			return failedErr(results)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "dump sequence-level profiler state")
	cmd.Flags().BoolVar(&timing, "timing", false, "report replay wall time per instruction")
	return cmd
}

func replayFile(cmd *cobra.Command, g *globalOptions, path string) ([]trace.Result, error) {
	instrs, err := trace.ParseFile(path)
	if err != nil {
		return nil, err
	}
	g.logger.WithField("instructions", len(instrs)).Debug("Parsed script")
	return trace.Run(cmd.Context(), instrs, g.replayOptions(cmd.ErrOrStderr()))
}

func failedErr(results []trace.Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d instructions aborted", failed, len(results))
	}
	return nil
}
