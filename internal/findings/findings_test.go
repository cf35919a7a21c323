package findings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	testCases := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{input: "Critical", want: SeverityCritical},
		{input: "high", want: SeverityHigh},
		{input: "MEDIUM", want: SeverityMedium},
		{input: "Info", want: SeverityInfo},
		{input: "severe", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSeverity(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSeverityOrder(t *testing.T) {
	assert.Less(t, int(SeverityInfo), int(SeverityLow))
	assert.Less(t, int(SeverityHigh), int(SeverityCritical))
	assert.Equal(t, "🔴", SeverityCritical.Emoji())
	assert.Equal(t, "Medium", SeverityMedium.String())
	assert.Equal(t, "Severity(9)", Severity(9).String())
}

func TestParseTriageStatuses(t *testing.T) {
	got, err := ParseTriageStatuses([]string{"Verified", "assigned", "Temporarily Risk Accepted"})
	require.NoError(t, err)
	assert.Equal(t, []TriageStatus{TriageVerified, TriageAssigned, TriageTemporarilyAccepted}, got)

	_, err = ParseTriageStatuses([]string{"Verified", "Done"})
	assert.Error(t, err)
}

func TestTriageStatusWireValues(t *testing.T) {
	assert.Equal(t, 0, int(TriageResolved))
	assert.Equal(t, 4, int(TriageRejected))
	assert.Equal(t, 6, int(TriagePermanentlyAccepted))
	assert.False(t, TriageAssigned.Editable())
	assert.True(t, TriageRejected.Editable())
}

func TestCVSSDisplay(t *testing.T) {
	v31, v40 := 7.5, 8.1

	assert.Equal(t, "N / A", (*CVSS)(nil).Display())
	assert.Equal(t, "7.5", (&CVSS{V31: &CVSSScore{Score: &v31}}).Display())
	assert.Equal(t, "8.1", (&CVSS{V31: &CVSSScore{Score: &v31}, V40: &CVSSScore{Score: &v40}}).Display())
	assert.Equal(t, "7.5", (&CVSS{V31: &CVSSScore{Score: &v31}, V40: &CVSSScore{}}).Display())
}

func TestFindingDecode(t *testing.T) {
	raw := `{"id": 7, "name": "SQL injection", "file_path": "src/a.ts", "line": 10,
		"severity": 4, "current_sla_level": 2, "product": 3,
		"cvss": {"3.1": {"vector": "AV:N", "score": 9.8}}, "date_verified": "2024-05-01T10:00:00Z"}`

	var f Finding
	require.NoError(t, json.Unmarshal([]byte(raw), &f))

	assert.Equal(t, SeverityCritical, f.Severity)
	assert.Equal(t, TriageVerified, f.TriageStatus)
	assert.True(t, f.HasAnchor())
	assert.Equal(t, "src/a.ts", f.Path())
	assert.Equal(t, 10, f.LineNumber())
	assert.Equal(t, "9.8", f.CVSS.Display())
	require.NotNil(t, f.DateVerified)
}

func TestCloneDoesNotAlias(t *testing.T) {
	path, line := "a.go", 3
	orig := Finding{ID: 1, FilePath: &path, Line: &line, Tags: []string{"x"}}

	c := orig.Clone()
	*c.FilePath = "b.go"
	*c.Line = 4
	c.Tags[0] = "y"

	assert.Equal(t, "a.go", *orig.FilePath)
	assert.Equal(t, 3, *orig.Line)
	assert.Equal(t, "x", orig.Tags[0])
}
