package annotate

import (
	"fmt"

	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/store"
)

// TreeNode is a file header or a finding entry of the findings tree.
type TreeNode struct {
	Label     string
	Path      string
	Line      int
	FindingID int
	Children  []TreeNode
}

// Tree renders groups as file nodes sorted by path, each holding one child per finding.
// With a severity filter only findings of that severity are kept and empty files are dropped.
func Tree(groups store.Groups, severity *findings.Severity) []TreeNode {
	var nodes []TreeNode
	for _, path := range groups.Paths() {
		var children []TreeNode
		for _, f := range groups[path] {
			if severity != nil && f.Severity != *severity {
				continue
			}
			label := f.Severity.String()
			if f.Line != nil {
				label += fmt.Sprintf(" - Line %d", *f.Line)
			}
			children = append(children, TreeNode{
				Label:     label,
				Path:      path,
				Line:      f.LineNumber(),
				FindingID: f.ID,
			})
		}
		if len(children) == 0 {
			continue
		}
		nodes = append(nodes, TreeNode{
			Label:    fmt.Sprintf("%s - %d", path, len(children)),
			Path:     path,
			Children: children,
		})
	}
	return nodes
}
