package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/offtake/config"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "offtake",
		Short: "Offtake strategy simulator for renewable generation",
		Long: `offtake compares CfD, PPA and merchant offtake strategies.

It runs Monte Carlo strategy-selection sweeps, CfD bid simulations,
price stress tests, NPV/IRR and lifetime ROI, and summarises the
CfD allocation dataset. The same operations are served over HTTP
by 'offtake serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", defaultConfigPath, "Path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Set log level to debug")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text|json (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newSweepCmd(),
		newRevenueCmd(),
		newBidCmd(),
		newStressCmd(),
		newNPVCmd(),
		newROICmd(),
		newMarketCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// loadConfig carga la configuración según los flags globales y configura el logger.
// Si --config no se indicó y el archivo por defecto no existe se usan los defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
	setupLogger(cmd.ErrOrStderr(), cfg.Log)

	slog.Debug("config loaded", "path", path, "dataset", cfg.Market.Dataset, "dsn", cfg.Storage.DSN)
	return cfg, nil
}

// setupLogger escribe a stderr: stdout queda para tablas y CSV.
func setupLogger(w io.Writer, cfg config.LogConfig) {
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

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
