package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateExportArgs(t *testing.T) {
	testCases := []struct {
		name    string
		opts    RunOptions
		args    []string
		wantErr bool
	}{
		{name: "file", opts: RunOptions{OutputPath: "out.sarif"}},
		{name: "stdout", opts: RunOptions{OutputPath: "-"}},
		{name: "missing output", opts: RunOptions{}, wantErr: true},
		{name: "positional", opts: RunOptions{OutputPath: "out.sarif"}, args: []string{"x"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateExportArgs(&tc.opts, tc.args)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
