package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Scoring.UseBuiltin)
	assert.Nil(t, cfg.Scoring.Seed)
	assert.Equal(t, 2*time.Second, cfg.Presentation.SimulatedDelay)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PredictorConfig)
		want   string
	}{
		{"log level", func(c *PredictorConfig) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *PredictorConfig) { c.Logging.Format = "xml" }, "logging.format"},
		{"output format", func(c *PredictorConfig) { c.Output.Format = "sarif" }, "output.format"},
		{"no rules", func(c *PredictorConfig) { c.Scoring.UseBuiltin = false }, "rules_paths"},
		{"negative delay", func(c *PredictorConfig) { c.Presentation.SimulatedDelay = -time.Second }, "simulated_delay"},
		{"parallelism", func(c *PredictorConfig) { c.Scoring.Parallelism = -1 }, "parallelism"},
		{"address", func(c *PredictorConfig) { c.Server.Address = "" }, "server.address"},
		{"body limit", func(c *PredictorConfig) { c.Server.MaxBodyBytes = 0 }, "max_body_bytes"},
		{"batch limit", func(c *PredictorConfig) { c.Server.MaxBatchSize = 0 }, "max_batch_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
scoring:
  seed: 42
  rules_paths: [./rules]
presentation:
  simulated_delay: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Scoring.Seed)
	assert.Equal(t, int64(42), *cfg.Scoring.Seed)
	assert.Equal(t, []string{"./rules"}, cfg.Scoring.RulesPaths)
	assert.True(t, cfg.Scoring.UseBuiltin)
	assert.Equal(t, 500*time.Millisecond, cfg.Presentation.SimulatedDelay)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: sarif\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "output.format")

	require.NoError(t, os.WriteFile(path, []byte("logging: [broken"), 0644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveAndInitializeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	written, err := InitializeConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	_, err = InitializeConfig(path, false)
	assert.ErrorContains(t, err, "already exists")

	cfg := DefaultConfig()
	cfg.Output.Format = "json"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", loaded.Output.Format)

	_, err = InitializeConfig(path, true)
	require.NoError(t, err)
	loaded, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "table", loaded.Output.Format)
}

func TestDefaultLocationUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, FileName), path)

	require.NoError(t, SaveConfig(DefaultConfig(), ""))
	_, err = os.Stat(path)
	require.NoError(t, err)

	rulesDir, err := GetRulesDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, "rules"), rulesDir)
}
