package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/portal-lens/pkg/shared/config"
)

func TestApplyHTTPClientConfig(t *testing.T) {
	defaults := config.DefaultRestyConfig()

	t.Run("nil directive uses defaults", func(t *testing.T) {
		cfg := ApplyHTTPClientConfig(nil)
		assert.Equal(t, defaults.RetryCount, cfg.RetryCount)
		assert.Equal(t, defaults.Timeout, cfg.Timeout)
		assert.False(t, cfg.TLSClientConfig.InsecureSkipVerify)
		assert.Empty(t, cfg.Proxy)
	})

	t.Run("explicit values win", func(t *testing.T) {
		verify := false
		debug := true
		cfg := ApplyHTTPClientConfig(&config.HTTPClient{
			Debug:             &debug,
			RetryCount:        7,
			Timeout:           3 * time.Second,
			TLSClientConfig:   config.TLSClientConfig{Verify: &verify},
			Proxy:             config.Proxy{Host: "http://proxy.local", Port: 3128},
			RequestsPerSecond: 2,
		})
		assert.True(t, cfg.Debug)
		assert.Equal(t, 7, cfg.RetryCount)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, defaults.RetryWaitTime, cfg.RetryWaitTime)
		assert.True(t, cfg.TLSClientConfig.InsecureSkipVerify)
		assert.Equal(t, "http://proxy.local:3128", cfg.Proxy)
		assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	})
}
