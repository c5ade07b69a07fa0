package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 720, cfg.JWT.ExpireHours)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Client.BaseURL)
	assert.Equal(t, 15, cfg.Client.TimeoutSeconds)
}

func TestReadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
jwt:
  secret: from-file
security:
  encryption_key: k1
client:
  base_url: http://sync.example:8080
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("UCC_JWT_SECRET", "from-env")

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "k1", cfg.Security.EncryptionKey)
	assert.Equal(t, "http://sync.example:8080", cfg.Client.BaseURL)
}

func TestReadMissingExplicitFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
