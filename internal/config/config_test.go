package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tftp.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
port = "6969"
log_level = "debug"
num_tries = 3
base_dir = "/srv/tftp"
metrics_addr = ":9169"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "6969", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint(3), cfg.NumTries)
	assert.Equal(t, uint(5), cfg.ReadTimeout)
	assert.Equal(t, "/srv/tftp", cfg.BaseDir)
	assert.Equal(t, ":9169", cfg.MetricsAddr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `port = "6969"`)

	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvNumTries, "9")
	t.Setenv(EnvConsole, "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, uint(9), cfg.NumTries)
	assert.True(t, cfg.Console)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `prot = "69"`)

	_, err := Load(path)
	assert.ErrorIs(t, err, utils.ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config load failed")
}

func TestValidate(t *testing.T) {
	base := Default()
	base.BaseDir = "/tmp"

	require.NoError(t, Validate(base))

	tests := []func(c *ServerConfig){
		func(c *ServerConfig) { c.Port = "tftp" },
		func(c *ServerConfig) { c.Port = "0" },
		func(c *ServerConfig) { c.Port = "70000" },
		func(c *ServerConfig) { c.NumTries = 0 },
		func(c *ServerConfig) { c.ReadTimeout = 0 },
		func(c *ServerConfig) { c.BaseDir = "" },
	}

	for _, mutate := range tests {
		cfg := base
		mutate(&cfg)
		assert.ErrorIs(t, Validate(cfg), utils.ErrInvalidConfig)
	}
}
