package check

import "fmt"

// validateCheckArgs validates the arguments provided to the check command.
func validateCheckArgs(options *RunOptions, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("invalid argument(s) received, check takes no positional arguments")
	}
	if options.Workspace == "-" {
		return fmt.Errorf("the 'workspace' flag must be a path")
	}
	return nil
}
