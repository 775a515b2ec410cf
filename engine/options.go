package engine

import (
	"go.uber.org/zap"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for NewFacade / NewMultiRunAggregator
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Simulator  SimulatorType
	SliceBound float64
	Sliced     bool     // SliceBound is only honored when set
	PerFile    bool     // property-major iteration for grid modes
	TimeUnit   TimeUnit // display unit for time axes
	Titles     []string // cosmetic, one per run when given
	Logger     *zap.Logger
}

// WithSimulator records which simulator produced the runs. Informational.
func WithSimulator(s SimulatorType) Option {
	return func(c *config) {
		c.Simulator = s
	}
}

// WithSliceBound truncates every produced pair to entries with x < bound.
func WithSliceBound(bound float64) Option {
	return func(c *config) {
		c.SliceBound = bound
		c.Sliced = true
	}
}

// WithPerFile switches grid modes to property-major iteration: outer loop over
// properties, inner loop over runs. Labels then encode (property, run).
func WithPerFile(perFile bool) Option {
	return func(c *config) {
		c.PerFile = perFile
	}
}

// WithTimeUnit sets the display unit for time axes.
func WithTimeUnit(u TimeUnit) Option {
	return func(c *config) {
		c.TimeUnit = u
	}
}

// WithTitles sets cosmetic run titles. When given, there must be one per run.
func WithTitles(titles ...string) Option {
	return func(c *config) {
		c.Titles = titles
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		TimeUnit: Second,
		Logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// slice applies the configured window. Without a window it only checks pairing.
func (c *config) slice(x, y Series) (Series, Series, error) {
	if !c.Sliced {
		if err := checkPaired(x, y); err != nil {
			return nil, nil, err
		}
		return x, y, nil
	}
	return SliceRange(x, y, c.SliceBound)
}

// cell maps a (run, property) index pair to its (outer, inner) label suffix.
func (c *config) cell(run, property int) (outer, inner int) {
	if c.PerFile {
		return property, run
	}
	return run, property
}
