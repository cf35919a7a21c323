package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineFileFullPath(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "findings.sarif")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o644))

	testCases := []struct {
		name         string
		inputPath    string
		nameTemplate string
		expectFile   string
		expectFolder string
	}{
		{
			name:         "directory path uses name template",
			inputPath:    tmpDir,
			nameTemplate: "portal-findings.sarif",
			expectFile:   filepath.Join(tmpDir, "portal-findings.sarif"),
			expectFolder: tmpDir,
		},
		{
			name:         "existing file is kept",
			inputPath:    existing,
			nameTemplate: "ignored.sarif",
			expectFile:   existing,
			expectFolder: tmpDir,
		},
		{
			name:         "missing path without extension is a folder",
			inputPath:    filepath.Join(tmpDir, "reports"),
			nameTemplate: "portal-findings.sarif",
			expectFile:   filepath.Join(tmpDir, "reports", "portal-findings.sarif"),
			expectFolder: filepath.Join(tmpDir, "reports"),
		},
		{
			name:         "missing path with extension is a file",
			inputPath:    filepath.Join(tmpDir, "out.json"),
			nameTemplate: "ignored.sarif",
			expectFile:   filepath.Join(tmpDir, "out.json"),
			expectFolder: tmpDir,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filePath, folderPath, err := DetermineFileFullPath(tc.inputPath, tc.nameTemplate)
			require.NoError(t, err)
			assert.Equal(t, tc.expectFile, filePath)
			assert.Equal(t, tc.expectFolder, folderPath)
		})
	}
}

func TestEnsureWithinRoot(t *testing.T) {
	root := t.TempDir()

	got, err := EnsureWithinRoot(root, filepath.Join(root, "src", "a.go"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "a.go"), got)

	_, err = EnsureWithinRoot(root, filepath.Join(root, "..", "etc", "passwd"))
	assert.Error(t, err)

	got, err = EnsureWithinRoot(root, filepath.Join(root, "..data", "x"))
	require.NoError(t, err, "a sibling-looking name inside root is not an escape")
	assert.Equal(t, filepath.Join(root, "..data", "x"), got)
}

func TestRelativeToRoot(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, "src/a.ts", RelativeToRoot(root, filepath.Join(root, "src", "a.ts")))
	assert.Equal(t, "src/a.ts", RelativeToRoot(root, filepath.Join("src", "a.ts")))
	assert.Equal(t, "src/a.ts", RelativeToRoot("", "src/./a.ts"))
}
