package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "gomoku.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 15*time.Second, cfg.Events.Heartbeat)
	assert.Equal(t, 1, cfg.Events.Buffer)
	assert.Equal(t, "asc", cfg.History.Order)
}

func TestLoadFile(t *testing.T) {
	p := writeFile(t, `
addr: ":9000"
log:
  level: debug
  format: text
events:
  heartbeat: 5s
  buffer: 4
history:
  order: desc
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Events.Heartbeat)
	assert.Equal(t, 4, cfg.Events.Buffer)
	assert.Equal(t, "desc", cfg.History.Order)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	p := writeFile(t, "addr: \":9000\"\n")
	t.Setenv("GOMOKU_ADDR", ":7000")
	t.Setenv("GOMOKU_LOG_LEVEL", "warn")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	p := writeFile(t, `
log:
  level: loud
history:
  order: sideways
events:
  heartbeat: -1s
`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "history.order")
	assert.Contains(t, err.Error(), "events.heartbeat")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "addr: [unterminated"))
	assert.Error(t, err)
}
