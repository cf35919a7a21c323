package artifacts

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/portal-lens/pkg/shared"
	"github.com/scan-io-git/portal-lens/pkg/shared/files"
)

// GetArtifactName returns the artifact base name.
// Example: check_2025-09-15T08:28:46Z.portal-lens-artifact.
func GetArtifactName(command string, t time.Time) string {
	ts := t.UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s_%s.portal-lens-artifact", command, ts)
}

// SaveArtifactJSON writes result to <dir>/<base>.json and returns the full path.
func SaveArtifactJSON(dir string, logger hclog.Logger, command string, result shared.GenericResult) (string, error) {
	if err := files.CreateFolderIfNotExists(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, GetArtifactName(command, time.Now())+".json")

	resultData, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the result data: %w", err)
	}

	if err := files.WriteJsonFile(path, resultData); err != nil {
		return path, fmt.Errorf("error writing result to artifact file: %w", err)
	}
	logger.Info("artifact saved to file", "path", path)

	return path, nil
}
