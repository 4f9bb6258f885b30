package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/engine"
	"github.com/hupe1980/agentcell/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Engine.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.InitialBackoff.Std())
	assert.True(t, *cfg.Engine.CompensationEnabled)
	assert.Equal(t, "chain", cfg.Runner.Strategy)
	assert.Equal(t, 100, cfg.Runner.MaxSteps)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	doc := []byte(`
engine:
  max_retries: 3
  timeout: 5s
  initial_backoff: 100ms
  compensation_enabled: false
runner:
  strategy: simple
logging:
  level: debug
  format: text
`)

	cfg, err := Load(doc)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Engine.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Engine.Timeout.Std())
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.InitialBackoff.Std())
	assert.False(t, *cfg.Engine.CompensationEnabled)
	assert.Equal(t, "simple", cfg.Runner.Strategy)
	assert.Equal(t, logging.LogLevelDebug, cfg.LogLevel())
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load([]byte("engine: ["))

	require.Error(t, err)
	assert.Equal(t, core.KindConfig, core.KindOf(err))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative retries", "engine:\n  max_retries: -1"},
		{"backoff above ceiling", "engine:\n  max_backoff: 5m"},
		{"unknown strategy", "runner:\n  strategy: parallel"},
		{"unknown level", "logging:\n  level: verbose"},
		{"unknown format", "logging:\n  format: xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, core.KindConfig, core.KindOf(err))
		})
	}
}

func TestEngineOptions_Bridge(t *testing.T) {
	doc := []byte("engine:\n  max_retries: 4\n  timeout: 2s\n  compensation_enabled: false")
	cfg, err := Load(doc)
	require.NoError(t, err)

	e := engine.New(cfg.EngineOptions())
	assert.NotNil(t, e)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentcell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runner:\n  strategy: simple"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "simple", cfg.Runner.Strategy)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
