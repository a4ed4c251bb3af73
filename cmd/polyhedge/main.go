package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/polyhedge/config"
)

// rootOptions son los flags globales y la configuración ya cargada.
type rootOptions struct {
	configPath string
	verbose    bool
	logFormat  string

	cfg *config.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "polyhedge",
		Short: "Analyze a trader's hedging on Polymarket Up/Down markets",
		Long: `polyhedge downloads a wallet's trades on a binary Up/Down market and
reconstructs its positions over time: average prices, when holding both
sides was locked in below $1.00, realized PnL and trading behavior.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "set log level to debug")
	root.PersistentFlags().StringVar(&opts.logFormat, "format", "", "log format: text|json (overrides config)")

	root.AddCommand(
		newFetchCmd(opts),
		newAnalyzeCmd(opts),
		newUserCmd(opts),
		newBatchCmd(opts),
		newHistoryCmd(opts),
		newReplayCmd(opts),
	)
	return root
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", o.configPath)
		return err
	}

	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	setupLogger(cfg.Log)

	o.cfg = cfg
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stdout queda para el reporte
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
