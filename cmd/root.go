package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ramux/ra-multiplex/internal/config"
	apperrors "github.com/ramux/ra-multiplex/internal/errors"
	"github.com/ramux/ra-multiplex/internal/logger"
	"github.com/ramux/ra-multiplex/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRootCmd defines the main CLI command.  Without a subcommand it loads
// the configuration, installs the logger and runs until ctx is canceled.
func newRootCmd() *cobra.Command {
	var (
		cfgFile     string
		metricsAddr string
	)

	rootCmd := &cobra.Command{
		Use:   "ra-multiplex",
		Short: "ra-multiplex shares language server instances between editor clients",
		Long: `ra-multiplex keeps language server instances running in the background and
multiplexes editor clients onto them.

Configuration is read from <config dir>/ra-multiplex/config.toml.  Set
RA_MUX_LOG to override log_filters, e.g. RA_MUX_LOG=debug,gc=warn.`,
		Example: `
  ra-multiplex
  ra-multiplex --config ./config.toml --metrics-addr 127.0.0.1:9464
  ra-multiplex config defaults > ~/.config/ra-multiplex/config.toml
  ra-multiplex config check`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfgFile, metricsAddr, cmd.ErrOrStderr())
		},
	}

	// Add persistent flags (inherited by all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to a config file (default <config dir>/ra-multiplex/config.toml)")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on host:port at /metrics (disabled when empty)")

	rootCmd.AddCommand(newConfigCmd(&cfgFile))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.  A failure is
// reported through the logger when one is installed, otherwise on stderr.
func Execute(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		diag := logger.Diagnostic(rootCmd.ErrOrStderr())
		diag.Error("ra-multiplex failed", apperrors.Fields(err)...)
		_ = diag.Sync()
		return 1
	}
	return 0
}

// loadConfig reads path, or the platform config file when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runServer(ctx context.Context, cfgFile, metricsAddr string, stderr io.Writer) error {
	metrics.RegisterMetrics()

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.InitLogger(); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			fmt.Fprintf(stderr, "Error: flushing logs: %v\n", err)
		}
	}()

	log := logger.New("server")
	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	filter := logger.ActiveFilter()
	log.Info("ra-multiplex started",
		zap.String("version", version),
		zap.Stringer("listen", cfg.Listen),
		zap.Stringer("connect", cfg.Connect),
		zap.Stringer("instance_timeout", cfg.InstanceTimeout),
		zap.Duration("gc_interval", cfg.GCInterval.Duration()),
		zap.Strings("pass_environment", cfg.PassEnvironment.Values()),
		zap.Bool("file_logging", cfg.IsFileMode()),
		zap.Stringer("log_filter", filter),
		zap.String("log_filter_source", string(filter.Source())),
	)

	if metricsAddr != "" {
		addr, err := serveMetrics(ctx, metricsAddr)
		if err != nil {
			return err
		}
		log.Info("serving metrics", zap.Stringer("addr", addr))
	}

	<-ctx.Done()
	log.Info("shutting down", zap.NamedError("reason", context.Cause(ctx)))
	return nil
}
