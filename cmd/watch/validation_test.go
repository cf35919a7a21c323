package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateWatchArgs(t *testing.T) {
	testCases := []struct {
		name    string
		opts    RunOptions
		args    []string
		wantErr bool
	}{
		{name: "defaults", opts: RunOptions{}},
		{name: "interval and metrics", opts: RunOptions{Interval: 10 * time.Minute, MetricsAddr: "127.0.0.1:9464"}},
		{name: "metrics on all interfaces", opts: RunOptions{MetricsAddr: ":9464"}},
		{name: "interval too short", opts: RunOptions{Interval: time.Second}, wantErr: true},
		{name: "negative interval", opts: RunOptions{Interval: -time.Minute}, wantErr: true},
		{name: "metrics without port", opts: RunOptions{MetricsAddr: "localhost"}, wantErr: true},
		{name: "positional", args: []string{"x"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateWatchArgs(&tc.opts, tc.args)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
