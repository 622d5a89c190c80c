package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := readConfig(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ConfigVersion, cfg.Version)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, filepath.Join(dir, DefaultSessionFile), cfg.SessionFile)
	assert.Zero(t, cfg.GetRequestTimeout())
}

func TestReadConfigFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "config.yaml",
			content: `version: "0.1.0"
server_url: anc.example.org/
request_timeout: 30s
log_level: debug
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `version = "0.1.0"
server_url = "anc.example.org/"
request_timeout = "30s"
log_level = "debug"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			cfg, err := readConfig(path)
			require.NoError(t, err)
			assert.Equal(t, "http://anc.example.org", cfg.ServerURL)
			assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
			assert.Equal(t, "debug", cfg.LogLevel)
		})
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: http://from-file:8000\n"), 0o600))
	t.Setenv("ANCARE_SERVER_URL", "https://from-env.example.org")

	cfg, err := readConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example.org", cfg.ServerURL)
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unsupported version", "version: 1.0.0\n"},
		{"bad version", "version: latest\n"},
		{"negative timeout", "request_timeout: -1s\n"},
		{"malformed", "server_url: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := readConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestWriteConfig(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := &Config{
				Version:        ConfigVersion,
				ServerURL:      "http://anc.example.org",
				SessionFile:    "/tmp/ancare-session.json",
				RequestTimeout: 5 * time.Second,
			}
			require.NoError(t, cfg.WriteConfig(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			got, err := readConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.ServerURL, got.ServerURL)
			assert.Equal(t, cfg.SessionFile, got.SessionFile)
			assert.Equal(t, cfg.RequestTimeout, got.RequestTimeout)
		})
	}

	assert.Error(t, (&Config{}).WriteConfig(""))
}

func TestMorphServer(t *testing.T) {
	tests := map[string]string{
		"":                          "",
		"localhost:8000":            "http://localhost:8000",
		"http://localhost:8000/":    "http://localhost:8000",
		" https://anc.example.org ": "https://anc.example.org",
	}
	for in, want := range tests {
		assert.Equal(t, want, MorphServer(in), in)
	}
}
