package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/resagg/engine"
	"github.com/spektr-org/resagg/helpers"
	"github.com/spektr-org/resagg/internal/config"
	"github.com/spektr-org/resagg/schema"
)

// runLayout is one run's describe output.
type runLayout struct {
	Run       string         `json:"run"`
	Path      string         `json:"path"`
	FirstTime float64        `json:"firstTime"`
	LastTime  float64        `json:"lastTime"`
	Elements  []string       `json:"elements,omitempty"`
	Layout    *schema.Layout `json:"layout"`
}

func newDescribeCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "describe RUN...",
		Short: "Show the layout of run tables",
		Long: `Describe parses each run table (RUN is dir[:table]) and prints its time,
element and coordinate columns, properties, skipped columns and extent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := map[string]any{}
			g.overrides(cmd, set)
			cfg, err := config.LoadSettings(g.configPath, set)
			if err != nil {
				return err
			}
			log := g.logger(cfg)
			defer log.Sync()

			reader := helpers.NewTableReader()
			var out []runLayout
			for _, arg := range args {
				run, err := engine.ParseRun(arg)
				if err != nil {
					return err
				}
				t, err := reader.Load(run)
				if err != nil {
					return err
				}
				rl := runLayout{
					Run:      run.String(),
					Path:     helpers.TablePath(run),
					Elements: t.Elements(),
					Layout:   t.Layout,
				}
				if times := t.Times(); len(times) > 0 {
					rl.FirstTime, rl.LastTime = times[0], times[len(times)-1]
				}
				log.Debug("described run",
					zap.String("run", rl.Run),
					zap.Int("steps", t.Steps()),
					zap.Int("blocks", t.Blocks()),
					zap.Int("properties", len(t.Layout.Properties)))
				out = append(out, rl)
			}
			return writeLayouts(cmd.OutOrStdout(), out, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output: text, json, pretty")
	return cmd
}

func writeLayouts(w io.Writer, layouts []runLayout, format string) error {
	switch format {
	case "json", "pretty":
		enc := json.NewEncoder(w)
		if format == "pretty" {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(layouts)
	case "text":
		for i, rl := range layouts {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeLayoutText(w, rl)
		}
		return nil
	default:
		return engine.NewConfigurationError(fmt.Sprintf("unknown format %q", format), nil)
	}
}

func writeLayoutText(w io.Writer, rl runLayout) {
	l := rl.Layout
	fmt.Fprintf(w, "Run:         %s\n", rl.Run)
	fmt.Fprintf(w, "Table:       %s\n", rl.Path)
	fmt.Fprintf(w, "Time steps:  %d (%s to %s s)\n", l.TimeSteps,
		engine.FormatValue(rl.FirstTime), engine.FormatValue(rl.LastTime))
	fmt.Fprintf(w, "Blocks:      %d\n", l.Blocks)
	if l.ElementColumn != "" {
		fmt.Fprintf(w, "Elements:    %s\n", l.ElementColumn)
	}
	var coords []string
	for _, d := range []string{"x", "y", "z"} {
		if h, ok := l.CoordinateColumn(d); ok {
			coords = append(coords, fmt.Sprintf("%s=%s", d, h))
		}
	}
	if len(coords) > 0 {
		fmt.Fprintf(w, "Coordinates: %s\n", strings.Join(coords, ", "))
	}
	fmt.Fprintf(w, "Properties:  %s\n", strings.Join(l.PropertyNames(), ", "))
	for _, s := range l.SkippedColumns {
		fmt.Fprintf(w, "Skipped:     %s (%s)\n", s.Column, s.Reason)
	}
}
