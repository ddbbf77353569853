package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  port: 9090
backend:
  url: https://engine.example.com/elsa/api
  timeout: 5s
auth:
  storage: file
localization:
  supportedCultures: [fr-FR, en-US]
logging:
  format: json
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://engine.example.com/elsa/api", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, TokenStorageFile, cfg.Auth.Storage)
	assert.Equal(t, []string{"fr-FR", "en-US"}, cfg.Localization.SupportedCultures)
	assert.Equal(t, "fr-FR", cfg.Localization.DefaultCulture, "default culture falls back to the first supported one")
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server: [unterminated")

	_, err := LoadConfig(dir)
	require.Error(t, err)

	var cfgErr ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrorKindParse, cfgErr.Kind)
	assert.Contains(t, cfgErr.Describe(), "hint:")
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  port: 70000
backend:
  url: /relative
auth:
  storage: cookie
localization:
  supportedCultures: [en-US]
  defaultCulture: de-DE
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)

	var coll ConfigurationErrorCollection
	require.True(t, errors.As(err, &coll))
	assert.Len(t, coll.InSection("server"), 1)
	assert.Len(t, coll.InSection("backend"), 1)
	assert.Len(t, coll.InSection("auth"), 1)
	assert.Len(t, coll.InSection("localization"), 1)
	assert.Contains(t, coll.Report(), "config.yaml has 4 problem(s)")
}

func TestValidateAbsoluteURL(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"https://engine.example.com/api", false},
		{"http://localhost:5000", false},
		{"ftp://engine.example.com", true},
		{"/relative/path", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateAbsoluteURL("backend.url", tt.value)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}
