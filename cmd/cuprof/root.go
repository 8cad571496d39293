package main

import (
	"context"
	"io"

	"github.com/danpilch/cuprof/pkg/config"
	"github.com/danpilch/cuprof/pkg/debug"
	"github.com/danpilch/cuprof/pkg/output"
	"github.com/danpilch/cuprof/pkg/trace"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	format     string
	logLevel   string
	pprofAddr  string
	traceCalls bool

	cfg    config.Config
	logger *logrus.Logger
	pprof  *debug.PprofServer
}

func newRootCmd() (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "cuprof",
		Short:         "Attribute compute units to profiled program sections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.cuprof/config.yaml)")
	flags.StringVarP(&opts.format, "format", "f", "", "output format: log, table, json, ai, tsv")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.pprofAddr, "pprof", "", "serve pprof on this address while running")
	flags.BoolVar(&opts.traceCalls, "trace", false, "trace every profiling syscall to stderr")

	cmd.AddCommand(
		newReplayCmd(opts),
		newWatchCmd(opts),
		newBaselineCmd(opts),
		newBenchCmd(opts),
		newFlamegraphCmd(opts),
	)
	return cmd, opts
}

// execute runs the command tree. Cobra skips post-run hooks when a command
// fails, so process-wide resources are released here instead.
func execute(ctx context.Context, cmd *cobra.Command, opts *globalOptions) error {
	defer opts.close()
	return cmd.ExecuteContext(ctx)
}

func (o *globalOptions) close() {
	if o.pprof == nil {
		return
	}
	if err := o.pprof.Stop(); err != nil {
		o.logger.WithError(err).Warn("pprof server shutdown failed")
	}
	o.pprof = nil
}

func (o *globalOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = cfg.Logger()

	if o.pprofAddr != "" {
		srv, err := debug.StartPprofServer(o.pprofAddr, o.logger)
		if err != nil {
			return err
		}
		o.pprof = srv
	}
	return nil
}

func (o *globalOptions) replayOptions(traceOut io.Writer) trace.Options {
	opts := trace.Options{
		DefaultBudget: o.cfg.ComputeBudget,
		LogLimit:      o.cfg.LogBytesLimit,
		Logger:        o.logger,
	}
	if o.traceCalls {
		opts.Tracer = debug.NewTraceLogger(traceOut)
	}
	return opts
}

func (o *globalOptions) outputFormat() (output.Format, error) {
	return output.ParseFormat(o.cfg.Format)
}
