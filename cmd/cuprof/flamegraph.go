package main

import (
	"fmt"
	"os"

	"github.com/danpilch/cuprof/pkg/flamegraph"
	"github.com/spf13/cobra"
)

func newFlamegraphCmd(g *globalOptions) *cobra.Command {
	opts := flamegraph.DefaultSVGOptions()
	var (
		outPath string
		folded  bool
	)

	cmd := &cobra.Command{
		Use:   "flamegraph <script>",
		Short: "Render net CU per section as a flame graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := replayFile(cmd, g, args[0])
			if err != nil {
				return err
			}

			stacks := make(map[string]uint64)
			for _, r := range results {
				if r.Report == nil {
					continue
				}
				for k, v := range flamegraph.Fold(r.Name, r.Report.Entries) {
					stacks[k] += v
				}
			}

			if folded {
				return flamegraph.WriteFolded(cmd.OutOrStdout(), stacks)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("cannot create %s: %w", outPath, err)
			}
			defer f.Close()

			if err := flamegraph.GenerateSVG(stacks, f, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "flamegraph.svg", "SVG output path")
	cmd.Flags().BoolVar(&folded, "folded", false, "print folded stacks instead of writing SVG")
	cmd.Flags().StringVar(&opts.Title, "title", opts.Title, "graph title")
	cmd.Flags().StringVar(&opts.ColorScheme, "colors", opts.ColorScheme, "color scheme: hot, cold, heap")
	return cmd
}
