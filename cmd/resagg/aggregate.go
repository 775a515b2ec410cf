package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/resagg/engine"
	"github.com/spektr-org/resagg/export"
	"github.com/spektr-org/resagg/helpers"
	"github.com/spektr-org/resagg/internal/config"
	"github.com/spektr-org/resagg/internal/metrics"
)

// jobFlags are the flags that describe one aggregation.
type jobFlags struct {
	runs       []string
	labels     []string
	properties []string
	mode       string
	title      string
	simulator  string
	block      int
	direction  string
	along      string
	layer      int
	atTime     float64
	unit       string
	xSlice     float64
	perFile    bool
	format     string
	out        string
	sqlite     string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringArrayVar(&f.runs, "run", nil, "Run as dir[:table] (repeatable, in order)")
	fs.StringArrayVar(&f.labels, "label", nil, "Cosmetic name per --run (repeatable)")
	fs.StringSliceVarP(&f.properties, "property", "p", nil, "Property column (repeatable)")
	fs.StringVar(&f.mode, "mode", "timeseries", "Mode: timeseries, grid, profile, layer")
	fs.StringVar(&f.title, "title", "", "Title for chart and JSON output")
	fs.StringVar(&f.simulator, "simulator", "", "Simulator: toughreact, tmvoc, tough3")
	fs.IntVar(&f.block, "block", 0, "Grid block ordinal for time series (0-based)")
	fs.StringVar(&f.direction, "direction", "x", "Profile axis, or the axis layers are counted along")
	fs.StringVar(&f.along, "along", "", "Layer profiles: axis used as x")
	fs.IntVar(&f.layer, "layer", 1, "Layer number (1-based)")
	fs.Float64Var(&f.atTime, "time", 0, "Fixed time in seconds for profiles")
	fs.StringVar(&f.unit, "unit", "second", "Time unit for time axes: second, minute, hour, day, year")
	fs.Float64Var(&f.xSlice, "x-slice", 0, "Keep only entries with x below this value")
	fs.BoolVar(&f.perFile, "per-file", false, "Iterate properties outside runs")
	fs.StringVar(&f.format, "format", "csv", "Output: csv, json, pretty, chart, yaml, text")
	fs.StringVar(&f.out, "out", "", "Write output to file instead of stdout")
	fs.StringVar(&f.sqlite, "sqlite", "", "Also store the table in this SQLite database")
}

// overrides maps the flags that were set onto config keys.
func (f *jobFlags) overrides(cmd *cobra.Command) (map[string]any, error) {
	set := make(map[string]any)
	changed := cmd.Flags().Changed

	if changed("run") {
		if changed("label") && len(f.labels) != len(f.runs) {
			return nil, engine.NewConfigurationError(
				fmt.Sprintf("%d labels for %d runs", len(f.labels), len(f.runs)), nil)
		}
		runs := make([]map[string]any, 0, len(f.runs))
		for i, s := range f.runs {
			run, err := engine.ParseRun(s)
			if err != nil {
				return nil, err
			}
			rc := map[string]any{"location": run.Location, "title": run.Title}
			if i < len(f.labels) {
				rc["label"] = f.labels[i]
			}
			runs = append(runs, rc)
		}
		set["runs"] = runs
	} else if changed("label") {
		return nil, engine.NewConfigurationError("--label needs --run", nil)
	}

	for flag, key := range map[string]string{
		"mode":      "mode",
		"title":     "title",
		"simulator": "simulator",
		"direction": "direction",
		"along":     "along",
		"unit":      "unit",
	} {
		if changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			set[key] = v
		}
	}
	if changed("property") {
		set["properties"] = f.properties
	}
	if changed("block") {
		set["block"] = f.block
	}
	if changed("layer") {
		set["layer"] = f.layer
	}
	if changed("time") {
		set["time"] = f.atTime
	}
	if changed("x-slice") {
		set["x_slice"] = f.xSlice
	}
	if changed("per-file") {
		set["per_file"] = f.perFile
	}
	if changed("format") {
		set["output.format"] = f.format
	}
	if changed("out") {
		set["output.path"] = f.out
	}
	if changed("sqlite") {
		set["output.sqlite"] = f.sqlite
	}
	return set, nil
}

// loadJob resolves config file, environment and flags into a validated config.
func loadJob(cmd *cobra.Command, g *globalFlags, f *jobFlags) (*config.File, error) {
	set, err := f.overrides(cmd)
	if err != nil {
		return nil, err
	}
	g.overrides(cmd, set)
	return config.Load(g.configPath, set)
}

func newAggregateCmd(g *globalFlags) *cobra.Command {
	f := &jobFlags{}
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build one aggregated table",
		Long: `Aggregate reads every run's table and writes one table whose columns come in
(x, result) pairs.

Modes:
  timeseries  values over time at --block, one property for every run or one
              property per run; time<i>/result<i>
  grid        every run × every property over time at --block;
              <property>time<i><j>/<property>result<i><j>
  profile     one property per run over every block at --time; x<i>/result<i>
  layer       properties over the blocks of --layer along --direction at --time,
              positioned along --along; <property>x<i><j>/<property>result<i><j>

Formats:
  csv       Wide table, one column per label (default)
  json      Compact JSON document
  pretty    Pretty-printed JSON document
  chart     Plot-ready chart config
  yaml      Label to value list mapping
  text      Per-column summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadJob(cmd, g, f)
			if err != nil {
				return err
			}
			log := g.logger(cfg)
			defer log.Sync()

			_, err = runJob(cmd.Context(), cfg, log, nil, cmd.OutOrStdout())
			return err
		},
	}
	f.register(cmd)
	return cmd
}

// runJob aggregates cfg's job and writes the output. rec may be nil.
func runJob(ctx context.Context, cfg *config.File, log *zap.Logger, rec *metrics.Recorder, stdout io.Writer) (*engine.AggregatedTable, error) {
	job := cfg.Job
	req, err := job.Request()
	if err != nil {
		return nil, err
	}
	opts, err := job.Options(log)
	if err != nil {
		return nil, err
	}

	facade := engine.NewFacade(helpers.NewTableReader(), opts...)
	start := time.Now()
	table, err := facade.Aggregate(req)
	if rec != nil {
		columns := 0
		if table != nil {
			columns = table.Len()
		}
		rec.RecordAggregation(string(req.Mode), time.Since(start), columns, err)
	}
	if err != nil {
		return nil, err
	}

	if err := writeOutput(stdout, cfg, req, facade.Titles(), table); err != nil {
		return nil, err
	}
	if cfg.Output.SQLite != "" {
		id, err := storeSQLite(ctx, cfg, req, table, log)
		if err != nil {
			return nil, err
		}
		log.Info("stored aggregation", zap.String("id", id), zap.String("db", cfg.Output.SQLite))
	}
	return table, nil
}

func storeSQLite(ctx context.Context, cfg *config.File, req engine.Request, table *engine.AggregatedTable, log *zap.Logger) (string, error) {
	sink, err := export.OpenSQLite(cfg.Output.SQLite, log)
	if err != nil {
		return "", err
	}
	defer sink.Close()
	return sink.Store(ctx, table, export.Meta{
		Mode:  string(req.Mode),
		Title: cfg.Job.Title,
		Runs:  runNames(req.Runs),
	})
}

// createOutput opens the --out file.
var createOutput = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// writeOutput writes table to cfg's output path, or stdout. A failed close of
// the output file is reported.
func writeOutput(stdout io.Writer, cfg *config.File, req engine.Request, titles []string, table *engine.AggregatedTable) (err error) {
	if cfg.Output.Path == "" {
		return render(stdout, cfg.Output.Format, cfg.Job.Title, req, titles, table)
	}

	file, err := createOutput(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", cfg.Output.Path, cerr)
		}
	}()
	return render(file, cfg.Output.Format, cfg.Job.Title, req, titles, table)
}
