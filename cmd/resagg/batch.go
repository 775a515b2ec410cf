package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/resagg/engine"
	"github.com/spektr-org/resagg/helpers"
	"github.com/spektr-org/resagg/internal/config"
)

func newBatchCmd(g *globalFlags) *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "batch JOB...",
		Short: "Run several job files concurrently",
		Long: `Batch loads every job file, aggregates them concurrently and writes each
table to its job's output.path. Any failure fails the batch and nothing is
written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := map[string]any{}
			g.overrides(cmd, set)

			var (
				files []*config.File
				items []engine.BatchItem
				log   *zap.Logger
			)
			for _, path := range args {
				cfg, err := config.Load(path, set)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if cfg.Output.Path == "" {
					return engine.NewConfigurationError(path+": batch jobs need output.path", nil)
				}
				if log == nil {
					log = g.logger(cfg)
					defer log.Sync()
				}

				req, err := cfg.Job.Request()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				opts, err := cfg.Job.Options(log.With(zap.String("job", path)))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				files = append(files, cfg)
				items = append(items, engine.BatchItem{
					Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
					Facade:  engine.NewFacade(helpers.NewTableReader(), opts...),
					Request: req,
				})
			}

			tables, err := engine.AggregateBatch(cmd.Context(), items, parallel)
			if err != nil {
				return err
			}
			for i, table := range tables {
				cfg := files[i]
				if err := writeOutput(cmd.OutOrStdout(), cfg, items[i].Request, items[i].Facade.Titles(), table); err != nil {
					return err
				}
				if cfg.Output.SQLite != "" {
					if _, err := storeSQLite(cmd.Context(), cfg, items[i].Request, table, log); err != nil {
						return err
					}
				}
				log.Info("batch job written",
					zap.String("job", items[i].Name),
					zap.String("out", cfg.Output.Path),
					zap.Int("columns", table.Len()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", 4, "Maximum jobs aggregated at once")
	return cmd
}
