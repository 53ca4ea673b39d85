package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, "config")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	l, err := Load(t.TempDir())
	require.NoError(t, err)
	cfg := l.Current()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, l.ConfigFile())
}

func TestLoadFileAndEnv(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
server:
  addr: ":9090"
  cors_origins:
    - https://a.example
classifier:
  url: http://classifier:8001/api/assessment/analyze
  timeout: 5s
store:
  driver: sqlite
  path: /tmp/r.db
`)
	t.Setenv("SHEHUMAAN_CLASSIFIER_API_KEY", "secret")
	t.Setenv("SHEHUMAAN_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	l, err := Load(root)
	require.NoError(t, err)
	cfg := l.Current()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "secret", cfg.Classifier.APIKey)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.NotEmpty(t, l.ConfigFile())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown driver", body: "store:\n  driver: mongo\n"},
		{name: "zero timeout", body: "classifier:\n  timeout: 0s\n"},
		{name: "empty url", body: "classifier:\n  url: \"\"\n"},
		{name: "broken yaml", body: "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeConfig(t, root, tt.body)
			_, err := Load(root)
			assert.Error(t, err)
		})
	}
}
