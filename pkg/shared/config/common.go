package config

import (
	"crypto/tls"
	"time"
)

// Filter defaults mirror the portal's "actionable" findings view.
var (
	DefaultSeverities     = []string{"Critical", "High", "Medium"}
	DefaultTriageStatuses = []string{"Verified", "Assigned"}
)

const (
	DefaultMaxFindings = 1000
	DefaultMaxPages    = 100
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount        int           // Number of retries for failed requests
	RetryWaitTime     time.Duration // Wait time between retries
	RetryMaxWaitTime  time.Duration // Maximum wait time for retries
	Timeout           time.Duration // Timeout for requests
	TLSClientConfig   *tls.Config   // TLS configuration
	Proxy             string        // Proxy address
	RequestsPerSecond float64       // Client-side pacing of portal requests, 0 disables it
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          30 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		RequestsPerSecond: 10,
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
		Debug:          false,
	}
}

// HighlightEnabled reports whether annotations should be rendered at all.
func HighlightEnabled(cfg *Config) bool {
	return GetBoolValue(cfg, "Personalization.Highlight", true)
}

// EffectiveFilter returns the filter with defaults filled in.
func EffectiveFilter(cfg *Config) Filter {
	var f Filter
	if cfg != nil {
		f = cfg.Filter
	}
	if len(f.Severities) == 0 {
		f.Severities = DefaultSeverities
	}
	if len(f.TriageStatuses) == 0 {
		f.TriageStatuses = DefaultTriageStatuses
	}
	f.MaxFindings = SetThen(f.MaxFindings, DefaultMaxFindings)
	f.MaxPages = SetThen(f.MaxPages, DefaultMaxPages)
	return f
}
