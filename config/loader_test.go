package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8100, cfg.Server.HTTPPort)
	assert.Equal(t, 50000, cfg.Sandbox.MaxOutputLen)
	assert.Equal(t, 20, cfg.Sandbox.MaxCalls)
	assert.Equal(t, 5, cfg.Sandbox.MaxDepth)
	assert.Equal(t, 120*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8100, cfg.Server.HTTPPort)
}

func TestLoader_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 9000
sandbox:
  max_calls: 10
session:
  backend: redis
  redis:
    addr: redis:6379
`), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 10, cfg.Sandbox.MaxCalls)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "redis:6379", cfg.Session.Redis.Addr)
	// Untouched values keep their defaults.
	assert.Equal(t, 5, cfg.Sandbox.MaxDepth)
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("RLMBOX_SANDBOX_MAX_CALLS", "7")
	t.Setenv("RLMBOX_SANDBOX_TIMEOUT", "45s")
	t.Setenv("RLMBOX_LOG_LEVEL", "debug")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Sandbox.MaxCalls)
	assert.Equal(t, 45*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sandbox:\n  max_depth: 3\n"), 0o644))
	t.Setenv("RLMBOX_SANDBOX_MAX_DEPTH", "9")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Sandbox.MaxDepth)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }, "http_port"},
		{"bad output len", func(c *Config) { c.Sandbox.MaxOutputLen = -1 }, "max_output_len"},
		{"bad max calls", func(c *Config) { c.Sandbox.MaxCalls = 0 }, "max_calls"},
		{"bad backend", func(c *Config) { c.Session.Backend = "etcd" }, "backend"},
		{"redis without addr", func(c *Config) { c.Session.Backend = "redis"; c.Session.Redis.Addr = "" }, "redis.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
