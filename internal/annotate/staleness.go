package annotate

import (
	"sort"

	"github.com/scan-io-git/portal-lens/internal/anchor"
	"github.com/scan-io-git/portal-lens/internal/findings"
)

// Status tells whether a finding's anchor line still holds the text captured at fetch time.
type Status int

const (
	Outdated Status = iota
	Current
)

func (s Status) String() string {
	if s == Current {
		return "current"
	}
	return "outdated"
}

// Classify compares the snapshot of f with the live text of its line in doc.
// A missing line or document counts as outdated.
func Classify(f findings.Finding, doc *anchor.File) Status {
	if f.Line == nil || doc == nil {
		return Outdated
	}
	live, ok := doc.Line(*f.Line)
	if ok && live == f.LineText {
		return Current
	}
	return Outdated
}

// Classified is a finding with its staleness.
type Classified struct {
	Finding findings.Finding
	Status  Status
}

// ClassifyGroup classifies every finding of one file that has a line.
func ClassifyGroup(group []findings.Finding, doc *anchor.File) []Classified {
	out := make([]Classified, 0, len(group))
	for _, f := range group {
		if f.Line == nil {
			continue
		}
		out = append(out, Classified{Finding: f, Status: Classify(f, doc)})
	}
	return out
}

// SortForLine orders findings that share a line: by name ascending, then a stable pass by
// severity descending, so the most severe finding takes the primary slot and ties keep name order.
func SortForLine(list []Classified) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Finding.Name < list[j].Finding.Name
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Finding.Severity > list[j].Finding.Severity
	})
}
