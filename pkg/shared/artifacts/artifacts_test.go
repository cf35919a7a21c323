package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/portal-lens/pkg/shared"
)

func TestGetArtifactName(t *testing.T) {
	ts := time.Date(2025, 9, 15, 8, 28, 46, 0, time.UTC)
	assert.Equal(t, "check_2025-09-15T08:28:46Z.portal-lens-artifact", GetArtifactName("check", ts))
}

func TestSaveArtifactJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	result := shared.GenericResult{Args: "ws", Result: map[string]int{"findings": 3}, Status: shared.StatusOK}

	path, err := SaveArtifactJSON(dir, hclog.NewNullLogger(), "check", result)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "check_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded shared.GenericResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, shared.StatusOK, decoded.Status)
}
