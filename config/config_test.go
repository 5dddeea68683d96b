package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gorevolve/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gorevolve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Engine.IntegrationSteps)
	assert.Equal(t, "left_riemann", cfg.Engine.IntegrationRule)
	assert.Equal(t, 50, cfg.Solid.Steps)
	assert.Equal(t, 50, cfg.History.MaxItems)
	assert.Equal(t, -10.0, cfg.Scan.Min)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
engine:
  integration_steps: 2000
  integration_rule: trapezoid
  evaluator: govaluate
scan:
  mode: bisection
locale: id
`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Engine.IntegrationSteps)
	assert.Equal(t, "trapezoid", cfg.Engine.IntegrationRule)
	assert.Equal(t, "govaluate", cfg.Engine.Evaluator)
	assert.Equal(t, "bisection", cfg.Scan.Mode)
	assert.Equal(t, "id", cfg.Locale)
	// untouched keys keep their defaults
	assert.Equal(t, 0.1, cfg.Scan.Step)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, `
engine:
  integration_steps: 0
  evaluator: mathjs
solid:
  steps: 1
`)
	_, err := config.Load(path, nil)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "engine.integration_steps")
	assert.Contains(t, msg, "engine.evaluator")
	assert.Contains(t, msg, "solid.steps")
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "engine: [1, 2"), nil)
	require.Error(t, err)

	_, err = config.Load(writeFile(t, strings.Repeat("#", config.MaxFileSize+1)), nil)
	require.Error(t, err)
}

func TestValidate_HistoryPath(t *testing.T) {
	cfg := config.Default()
	cfg.History.InMemory = false
	require.Error(t, cfg.Validate())
	cfg.History.Path = "/tmp/gorevolve"
	require.NoError(t, cfg.Validate())
}

func TestLog_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := config.Log{Level: "debug", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	logger.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = config.Log{Level: "loud", Format: "text"}.NewLogger(&buf)
	require.Error(t, err)
}

func TestLoad_LogsConfig(t *testing.T) {
	var buf bytes.Buffer
	logger, err := config.Log{Level: "info", Format: "text"}.NewLogger(&buf)
	require.NoError(t, err)
	_, err = config.Load("", logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "config loaded")
}
