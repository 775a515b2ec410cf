package config

import (
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/resagg/engine"
)

// File holds everything a resagg invocation can be configured with
type File struct {
	Job    Job          `mapstructure:",squash"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// Job describes one aggregation request
type Job struct {
	Simulator  string      `mapstructure:"simulator" validate:"omitempty,oneof=toughreact tmvoc tough3"`
	Mode       string      `mapstructure:"mode" validate:"required"`
	Title      string      `mapstructure:"title"`
	Runs       []RunConfig `mapstructure:"runs" validate:"required,min=1,dive"`
	Properties []string    `mapstructure:"properties" validate:"required,min=1,dive,required"`
	Block      int         `mapstructure:"block" validate:"gte=0"`
	Direction  string      `mapstructure:"direction" validate:"omitempty,oneof=x y z X Y Z"`
	Along      string      `mapstructure:"along" validate:"omitempty,oneof=x y z X Y Z"`
	Layer      int         `mapstructure:"layer" validate:"gte=0"`
	Time       float64     `mapstructure:"time"` // seconds
	Unit       string      `mapstructure:"unit"`
	XSlice     *float64    `mapstructure:"x_slice"`
	PerFile    bool        `mapstructure:"per_file"`
}

// RunConfig addresses one run table
type RunConfig struct {
	Location string `mapstructure:"location" validate:"required"`
	Title    string `mapstructure:"title"`
	Label    string `mapstructure:"label"` // cosmetic name used in charts
}

// OutputConfig holds output configuration
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=csv json pretty chart yaml text"`
	Path   string `mapstructure:"path"`
	SQLite string `mapstructure:"sqlite"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// WatchConfig holds watch-mode configuration
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce" validate:"gte=0"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// Run converts rc to an engine run.
func (rc RunConfig) Run() engine.Run {
	return engine.Run{Location: rc.Location, Title: rc.Title}
}

// Request builds the engine request described by j.
func (j Job) Request() (engine.Request, error) {
	mode, err := engine.ParseMode(j.Mode)
	if err != nil {
		return engine.Request{}, err
	}

	req := engine.Request{
		Mode:       mode,
		Properties: append([]string(nil), j.Properties...),
	}
	for _, rc := range j.Runs {
		req.Runs = append(req.Runs, rc.Run())
	}

	switch mode {
	case engine.ModeTimeSeries, engine.ModeTimeSeriesGrid:
		req.Key = engine.BlockKey(j.Block)
	case engine.ModeProfile:
		dir, err := engine.ParseDirection(j.Direction)
		if err != nil {
			return engine.Request{}, err
		}
		req.Key = engine.TimeKey(dir, j.Time)
	case engine.ModeLayerProfile:
		dir, err := engine.ParseDirection(j.Direction)
		if err != nil {
			return engine.Request{}, err
		}
		along, err := engine.ParseDirection(j.Along)
		if err != nil {
			return engine.Request{}, err
		}
		req.Key = engine.LayerKey(dir, j.Layer, j.Time)
		req.Along = along
	}
	return req, nil
}

// Options builds the engine options described by j.
func (j Job) Options(logger *zap.Logger) ([]engine.Option, error) {
	unit, err := engine.ParseTimeUnit(j.Unit)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithSimulator(engine.SimulatorType(j.Simulator)),
		engine.WithTimeUnit(unit),
		engine.WithPerFile(j.PerFile),
		engine.WithLogger(logger),
	}
	if j.XSlice != nil {
		opts = append(opts, engine.WithSliceBound(*j.XSlice))
	}
	if titles := j.Titles(); titles != nil {
		opts = append(opts, engine.WithTitles(titles...))
	}
	return opts, nil
}

// Titles returns one cosmetic title per run, or nil when no run has a label.
func (j Job) Titles() []string {
	labeled := false
	titles := make([]string, len(j.Runs))
	for i, rc := range j.Runs {
		titles[i] = rc.Label
		if rc.Label != "" {
			labeled = true
		} else {
			titles[i] = rc.Run().String()
		}
	}
	if !labeled {
		return nil
	}
	return titles
}
