package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"

	"github.com/scan-io-git/portal-lens/pkg/shared/files"
)

// Environment variables that override values from the YAML file.
const (
	EnvPortalURL   = "PORTAL_LENS_URL"
	EnvPortalToken = "PORTAL_LENS_TOKEN"
	EnvStatePath   = "PORTAL_LENS_STATE_PATH"
	EnvLogLevel    = "PORTAL_LENS_LOG_LEVEL"
	EnvHome        = "PORTAL_LENS_HOME"
)

// DefaultConfigFile is used when no --config flag is given. A missing default file is not an error.
const DefaultConfigFile = "config.yml"

type Config struct {
	Logger          Logger          `yaml:"logger"`
	HTTPClient      HTTPClient      `yaml:"http_client"`
	Portal          Portal          `yaml:"portal"`
	Filter          Filter          `yaml:"filter"`
	Personalization Personalization `yaml:"personalization"`
	State           State           `yaml:"state"`
	Workspace       Workspace       `yaml:"workspace"`
}

type Logger struct {
	Level           string `yaml:"level"`
	JSONFormat      *bool  `yaml:"json_format"`
	DisableTime     *bool  `yaml:"disable_time"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug             *bool           `yaml:"debug"`
	RetryCount        int             `yaml:"retry_count"`
	RetryWaitTime     time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime  time.Duration   `yaml:"retry_max_wait_time"`
	Timeout           time.Duration   `yaml:"timeout"`
	TLSClientConfig   TLSClientConfig `yaml:"tls_client_config"`
	Proxy             Proxy           `yaml:"proxy"`
	RequestsPerSecond float64         `yaml:"requests_per_second"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Portal holds the connection settings of the findings portal.
type Portal struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Filter narrows down which findings are requested from the portal.
type Filter struct {
	Severities     []string `yaml:"severities"`
	TriageStatuses []string `yaml:"triage_statuses"`
	MaxFindings    int      `yaml:"max_findings"`
	MaxPages       int      `yaml:"max_pages"`
}

type Personalization struct {
	Highlight *bool `yaml:"highlight"`
}

type State struct {
	Path string `yaml:"path"`
}

type Workspace struct {
	Root string `yaml:"root"`
}

// ValidateConfigPath fails unless path is a regular file. Stat errors are wrapped, so a missing
// file still satisfies errors.Is(err, os.ErrNotExist).
func ValidateConfigPath(path string) error {
	return files.ValidatePath(path)
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the YAML config, loads a .env file from the working directory when present
// and applies environment overrides. An absent default config file yields an empty config.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath == "" {
		configPath = DefaultConfigFile
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		if !(errors.Is(err, os.ErrNotExist) && configPath == DefaultConfigFile) {
			return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	applyEnvironment(cfg)
	return cfg, nil
}

// applyEnvironment gives environment variables priority over the YAML values.
func applyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvPortalURL); v != "" {
		cfg.Portal.URL = v
	}
	if v := os.Getenv(EnvPortalToken); v != "" {
		cfg.Portal.Token = v
	}
	if v := os.Getenv(EnvStatePath); v != "" {
		cfg.State.Path = v
	}
}
