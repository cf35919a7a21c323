package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.yml")
	content := `
logger:
  level: debug
http_client:
  retry_count: 2
  timeout: 15s
portal:
  url: https://portal.example.com
  token: file-token
filter:
  severities: [Critical, High]
  max_findings: 100
personalization:
  highlight: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(EnvPortalToken, "env-token")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 2, cfg.HTTPClient.RetryCount)
	assert.Equal(t, 15*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, "https://portal.example.com", cfg.Portal.URL)
	assert.Equal(t, "env-token", cfg.Portal.Token, "environment must override the file")
	assert.Equal(t, []string{"Critical", "High"}, cfg.Filter.Severities)
	assert.False(t, HighlightEnabled(cfg))
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestEffectiveFilterDefaults(t *testing.T) {
	f := EffectiveFilter(&Config{})
	assert.Equal(t, DefaultSeverities, f.Severities)
	assert.Equal(t, DefaultTriageStatuses, f.TriageStatuses)
	assert.Equal(t, DefaultMaxFindings, f.MaxFindings)
	assert.Equal(t, DefaultMaxPages, f.MaxPages)

	f = EffectiveFilter(&Config{Filter: Filter{MaxFindings: 50}})
	assert.Equal(t, 50, f.MaxFindings)
}

func TestHighlightEnabledNilConfig(t *testing.T) {
	var cfg *Config
	assert.True(t, HighlightEnabled(cfg))
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty config", cfg: Config{}},
		{name: "retry count too high", cfg: Config{HTTPClient: HTTPClient{RetryCount: 21}}, wantErr: true},
		{name: "negative timeout", cfg: Config{HTTPClient: HTTPClient{Timeout: -time.Second}}, wantErr: true},
		{name: "bad proxy port", cfg: Config{HTTPClient: HTTPClient{Proxy: Proxy{Host: "proxy", Port: 70000}}}, wantErr: true},
		{name: "negative max findings", cfg: Config{Filter: Filter{MaxFindings: -1}}, wantErr: true},
		{name: "portal url without scheme", cfg: Config{Portal: Portal{URL: "portal.example.com"}}, wantErr: true},
		{name: "valid portal url", cfg: Config{Portal: Portal{URL: "https://portal.example.com/"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(&tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigRejectsDirectory(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
