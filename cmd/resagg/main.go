package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/resagg/internal/config"
	"github.com/spektr-org/resagg/internal/logger"
)

// ============================================================================
// RESAGG CLI — Aggregate simulator run tables into aligned column sets
// ============================================================================

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fatalf("%v", err)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// overrides returns the config overrides for the flags that were set.
func (g *globalFlags) overrides(cmd *cobra.Command, into map[string]any) {
	if cmd.Flags().Changed("log-level") {
		into["log.level"] = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		into["log.format"] = g.logFormat
	}
}

// logger builds the process logger from the loaded config.
func (g *globalFlags) logger(cfg *config.File) *zap.Logger {
	return logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "resagg",
		Short: "Result aggregation for geochemical reservoir simulator runs",
		Long: `resagg reads simulator output tables (one CSV per run) and merges time
series and spatial profiles from many runs and properties into one table with
stable column labels.

Commands:
  aggregate  - Build one aggregated table
  batch      - Run several job files concurrently
  describe   - Show the layout of run tables
  watch      - Re-aggregate whenever a run table changes

Examples:
  resagg aggregate --run runs/base --run runs/high-co2 -p pH --block 0 --unit year
  resagg aggregate --mode layer --run runs/base -p Porosity -p pH \
      --direction z --layer 1 --along x --time 3.1536e8 --x-slice 250 --format chart
  resagg describe runs/base:tec --format text
  resagg watch --config job.yaml --metrics-addr :9102`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Job file (YAML/JSON/TOML); flags override it")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "console", "Log format: console, json")

	root.AddCommand(newAggregateCmd(g))
	root.AddCommand(newBatchCmd(g))
	root.AddCommand(newDescribeCmd(g))
	root.AddCommand(newWatchCmd(g))
	return root
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
