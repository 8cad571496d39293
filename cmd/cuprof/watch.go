package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/danpilch/cuprof/pkg/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 100 * time.Millisecond

func newWatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <script>",
		Short: "Replay a script every time it changes, tracking net CU trends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := g.outputFormat()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("cannot start watcher: %w", err)
			}
			defer watcher.Close()

			// Editors replace files on save, so watch the directory.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("cannot watch %s: %w", path, err)
			}

			sparks := output.NewSparklineTracker(g.cfg.SparklineWindow)
			formatter := output.NewFormatter(format, cmd.OutOrStdout())
			formatter.SetSparklineTracker(sparks)

			render := func() {
				results, err := replayFile(cmd, g, path)
				if err != nil {
					g.logger.WithError(err).Warn("Replay failed")
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n--- %s ---\n", time.Now().Format("15:04:05"))
				if err := formatter.Render(results); err != nil {
					g.logger.WithError(err).Warn("Render failed")
				}
			}
			render()

			var debounce <-chan time.Time
			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
						continue
					}
					debounce = time.After(watchDebounce)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					g.logger.WithError(err).Warn("File watcher error")
				case <-debounce:
					debounce = nil
					render()
				}
			}
		},
	}
}
