package annotate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/portal-lens/internal/annotate"
)

func TestValidateAnnotateArgs(t *testing.T) {
	var opts RunOptions
	require.NoError(t, validateAnnotateArgs(&opts, []string{"does/not/exist.go"}))
	assert.Equal(t, "does/not/exist.go", opts.File)

	assert.Error(t, validateAnnotateArgs(&opts, nil))
	assert.Error(t, validateAnnotateArgs(&opts, []string{"a.go", "b.go"}))
	assert.Error(t, validateAnnotateArgs(&opts, []string{t.TempDir()}))
}

func TestPrintAnnotations(t *testing.T) {
	var buf bytes.Buffer
	printAnnotations(&buf, FileAnnotations{Path: "a.go"})
	assert.Equal(t, "No findings for a.go\n", buf.String())

	buf.Reset()
	printAnnotations(&buf, FileAnnotations{
		Path: "a.go",
		Annotations: []AnnotationView{
			{Line: 4, FindingID: 1, Severity: "High", Status: "current", Overflow: []int{2}, Hover: "## hover"},
		},
		Lenses: []annotate.Lens{{Line: 4, FindingID: 1, Title: "Reject", Command: "portal-lens reject 1"}},
	})
	assert.Equal(t, "a.go:4 [current] High (+1 more)\n\n## hover\n\na.go:4 Reject: portal-lens reject 1\n", buf.String())
}
