package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ConfigYAML(t *testing.T) {
	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, 2*time.Second, cfg.Server.OperationDelay)
	assert.Equal(t, "/dlex", cfg.Sites.Root)
	assert.NotEmpty(t, cfg.Database.DSN)
	assert.Equal(t, "Orders loaded.", cfg.Messages.ListOK)
	assert.Equal(t, "Operation failed.", cfg.Messages.OperationFailed)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.UseMemoryStore())
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, Default().Messages, cfg.Messages)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HTTP_PORT", "18080")
	t.Setenv("OPERATION_DELAY", "150ms")
	t.Setenv("SITE_ROOT", "shop/")
	t.Setenv("POSTGRES_DSN", "")

	cfg, err := Load(filepath.Join("..", "..", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "18080", cfg.Server.HTTPPort)
	assert.Equal(t, 150*time.Millisecond, cfg.Server.OperationDelay)
	assert.Equal(t, "/shop", cfg.Sites.Root)
	assert.True(t, cfg.UseMemoryStore())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("messages:\n  MESSAGE_1: Loaded!\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Loaded!", cfg.Messages.ListOK)
	assert.Equal(t, Default().Messages.AddOK, cfg.Messages.AddOK)
	assert.Equal(t, "8080", cfg.Server.HTTPPort)
}

func TestLoad_InvalidDelay(t *testing.T) {
	t.Setenv("OPERATION_DELAY", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
