package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("api_url: http://todo.example.com/\nrequest_timeout: 3s\ndata_dir: " + dir + "\nmemory_session: true\nlog_level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://todo.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, dir, cfg.DataDir)
	assert.True(t, cfg.MemorySession)
	assert.Equal(t, log.DebugLevel, cfg.Level())
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("API_URL", "http://env.example.com")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("REQUEST_TIMEOUT", "7s")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://env.example.com", cfg.APIURL)
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	assert.Equal(t, dir, cfg.DataDir)
	assert.False(t, cfg.MemorySession)
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("REQUEST_TIMEOUT", "0s")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, log.InfoLevel, Config{LogLevel: "chatty"}.Level())
	assert.Equal(t, log.WarnLevel, Config{LogLevel: "WARN"}.Level())
}
