package tree

import (
	"fmt"

	"github.com/scan-io-git/portal-lens/internal/findings"
)

// validateTreeArgs validates the arguments provided to the tree command and resolves the severity filter.
func validateTreeArgs(options *RunOptions, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("invalid argument(s) received, tree takes no positional arguments")
	}

	options.severity = nil
	if options.Severity != "" {
		s, err := findings.ParseSeverity(options.Severity)
		if err != nil {
			return err
		}
		options.severity = &s
	}
	return nil
}
