package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/resagg/engine"
)

const jobYAML = `
simulator: toughreact
mode: layer
title: Porosity along the top layer
runs:
  - location: runs/base
    label: Base case
  - location: runs/high-co2
    title: tec
properties: [Porosity, pH]
direction: z
along: x
layer: 2
time: 3.1536e7
unit: year
x_slice: 250
per_file: true
output:
  format: yaml
  sqlite: out/results.db
log:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resagg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, jobYAML), nil)
	require.NoError(t, err)

	assert.Equal(t, "toughreact", cfg.Job.Simulator)
	require.Len(t, cfg.Job.Runs, 2)
	assert.Equal(t, "tec", cfg.Job.Runs[1].Title)
	require.NotNil(t, cfg.Job.XSlice)
	assert.Equal(t, 250.0, *cfg.Job.XSlice)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "default kept")
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)

	req, err := cfg.Job.Request()
	require.NoError(t, err)
	assert.Equal(t, engine.ModeLayerProfile, req.Mode)
	assert.Equal(t, engine.LayerKey(engine.DirZ, 2, 3.1536e7), req.Key)
	assert.Equal(t, engine.DirX, req.Along)
	assert.Equal(t, []engine.Run{{Location: "runs/base"}, {Location: "runs/high-co2", Title: "tec"}}, req.Runs)

	assert.Equal(t, []string{"Base case", "runs/high-co2:tec"}, cfg.Job.Titles())

	opts, err := cfg.Job.Options(nil)
	require.NoError(t, err)
	f := engine.NewFacade(nil, opts...)
	assert.Equal(t, engine.Year, f.TimeUnit())
	assert.Equal(t, []string{"Base case", "runs/high-co2:tec"}, f.Titles())
}

func TestLoadOverridesAndEnv(t *testing.T) {
	t.Setenv("RESAGG_UNIT", "day")
	t.Setenv("RESAGG_OUTPUT_FORMAT", "json")

	cfg, err := Load(writeConfig(t, jobYAML), map[string]any{
		"mode":       "timeseries",
		"block":      3,
		"properties": []string{"pH"},
	})
	require.NoError(t, err)

	assert.Equal(t, "day", cfg.Job.Unit)
	assert.Equal(t, "json", cfg.Output.Format)

	req, err := cfg.Job.Request()
	require.NoError(t, err)
	assert.Equal(t, engine.BlockKey(3), req.Key)
	assert.Equal(t, []string{"pH"}, req.Properties)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "mode: timeseries\nproperties: [pH]\n"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrConfiguration)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "runs", verrs[0].Field)
	assert.Equal(t, "is required", verrs[0].Message)

	_, err = Load(writeConfig(t, jobYAML), map[string]any{"simulator": "eclipse"})
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestLoadSettingsSkipsJob(t *testing.T) {
	cfg, err := LoadSettings("", map[string]any{"output.format": "pretty"})
	require.NoError(t, err)
	assert.Equal(t, "pretty", cfg.Output.Format)

	_, err = LoadSettings("", map[string]any{"log.format": "xml"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "format", verrs[0].Field)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestRequestErrors(t *testing.T) {
	_, err := Job{Mode: "histogram"}.Request()
	assert.ErrorIs(t, err, engine.ErrConfiguration)

	_, err = Job{Mode: "layer", Direction: "z"}.Request()
	assert.ErrorIs(t, err, engine.ErrConfiguration, "layer mode needs an along direction")

	_, err = Job{Unit: "fortnight"}.Options(nil)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}
