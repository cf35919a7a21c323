package findings

import (
	"fmt"

	"golang.org/x/text/cases"
)

// Severity is the five-level criticality of a finding, as sent by the portal.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Severities lists every level from the most to the least critical.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

var severityTitles = map[Severity]string{
	SeverityInfo:     "Info",
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

var severityEmoji = map[Severity]string{
	SeverityInfo:     "🔵",
	SeverityLow:      "🟢",
	SeverityMedium:   "🟡",
	SeverityHigh:     "🟠",
	SeverityCritical: "🔴",
}

// SARIF levels used when exporting.
var severitySarifLevels = map[Severity]string{
	SeverityInfo:     "note",
	SeverityLow:      "note",
	SeverityMedium:   "warning",
	SeverityHigh:     "error",
	SeverityCritical: "error",
}

func (s Severity) Valid() bool {
	return s >= SeverityInfo && s <= SeverityCritical
}

func (s Severity) String() string {
	if title, ok := severityTitles[s]; ok {
		return title
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Emoji returns the colored marker shown next to the title.
func (s Severity) Emoji() string {
	return severityEmoji[s]
}

// SarifLevel maps the severity to a SARIF result level.
func (s Severity) SarifLevel() string {
	if level, ok := severitySarifLevels[s]; ok {
		return level
	}
	return "none"
}

var folder = cases.Fold()

// ParseSeverity resolves a title such as "critical" or "High", case-insensitively.
func ParseSeverity(title string) (Severity, error) {
	key := folder.String(title)
	for s, t := range severityTitles {
		if folder.String(t) == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", title)
}

// ParseSeverities resolves a list of titles, failing on the first unknown one.
func ParseSeverities(titles []string) ([]Severity, error) {
	out := make([]Severity, 0, len(titles))
	for _, title := range titles {
		s, err := ParseSeverity(title)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
