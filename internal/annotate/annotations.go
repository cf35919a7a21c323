package annotate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scan-io-git/portal-lens/internal/anchor"
	"github.com/scan-io-git/portal-lens/internal/findings"
)

const hoverSeparator = "\n\n---\n\n"

// Annotation is what gets rendered on one line of a file.
type Annotation struct {
	Line     int
	Primary  Classified
	Overflow []Classified
	Hover    string
}

// Severity is the severity used to style the annotation.
func (a Annotation) Severity() findings.Severity {
	return a.Primary.Finding.Severity
}

// Status is the staleness of the primary finding.
func (a Annotation) Status() Status {
	return a.Primary.Status
}

// Annotate builds one annotation per line of doc that has findings, ordered by line.
func (r Renderer) Annotate(group []findings.Finding, doc *anchor.File) []Annotation {
	byLine := make(map[int][]Classified)
	for _, c := range ClassifyGroup(group, doc) {
		line := *c.Finding.Line
		byLine[line] = append(byLine[line], c)
	}

	lines := make([]int, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	out := make([]Annotation, 0, len(lines))
	for _, line := range lines {
		members := byLine[line]
		SortForLine(members)

		a := Annotation{Line: line, Primary: members[0], Overflow: members[1:]}

		parts := []string{r.Hover(a.Primary.Finding, a.Primary.Status == Outdated, "")}
		for i, c := range a.Overflow {
			parts = append(parts, r.Hover(c.Finding, c.Status == Outdated, fmt.Sprintf("%d. ", i+1)))
		}
		a.Hover = strings.Join(parts, hoverSeparator)

		out = append(out, a)
	}
	return out
}

// Lens is a reject affordance placed on a finding line.
type Lens struct {
	Line      int
	FindingID int
	Title     string
	Command   string
}

// Lenses returns one reject lens per current, not yet rejected finding. Outdated findings never get one.
func (r Renderer) Lenses(group []findings.Finding, doc *anchor.File) []Lens {
	var out []Lens
	for _, c := range ClassifyGroup(group, doc) {
		if c.Status != Current || c.Finding.TriageStatus == findings.TriageRejected {
			continue
		}
		out = append(out, Lens{
			Line:      *c.Finding.Line,
			FindingID: c.Finding.ID,
			Title:     "Reject",
			Command:   r.RejectCommand(c.Finding),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}
