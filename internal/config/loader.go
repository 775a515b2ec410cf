package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/spektr-org/resagg/engine"
)

// EnvPrefix prefixes every environment override, e.g. RESAGG_UNIT=year.
const EnvPrefix = "RESAGG"

// Load reads configuration from defaults, an optional config file, the
// environment and finally overrides, in increasing precedence. Keys in
// overrides use the file's names ("x_slice", "output.format").
func Load(path string, overrides map[string]any) (*File, error) {
	cfg, err := load(path, overrides)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := Validate(cfg); err != nil {
		return nil, engine.NewConfigurationError("invalid config", err)
	}
	return cfg, nil
}

// LoadSettings is Load for commands that do not run a job, such as describe.
// Only the output, log and watch sections are validated.
func LoadSettings(path string, overrides map[string]any) (*File, error) {
	cfg, err := load(path, overrides)
	if err != nil {
		return nil, err
	}
	for _, section := range []any{&cfg.Output, &cfg.Log, &cfg.Watch} {
		if err := Validate(section); err != nil {
			return nil, engine.NewConfigurationError("invalid config", err)
		}
	}
	return cfg, nil
}

func load(path string, overrides map[string]any) (*File, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("x_slice")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, engine.NewConfigurationError("failed to read config file "+path, err)
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg File
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, engine.NewConfigurationError("failed to decode config", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Job defaults
	v.SetDefault("simulator", "")
	v.SetDefault("mode", string(engine.ModeTimeSeries))
	v.SetDefault("title", "")
	v.SetDefault("block", 0)
	v.SetDefault("direction", "x")
	v.SetDefault("along", "")
	v.SetDefault("layer", 1)
	v.SetDefault("time", 0.0)
	v.SetDefault("unit", string(engine.Second))
	v.SetDefault("per_file", false)

	// Output defaults
	v.SetDefault("output.format", "csv")
	v.SetDefault("output.path", "")
	v.SetDefault("output.sqlite", "")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Watch defaults
	v.SetDefault("watch.debounce", "500ms")
	v.SetDefault("watch.metrics_addr", "")
}
