package export

import "fmt"

// validateExportArgs validates the arguments provided to the export command.
func validateExportArgs(options *RunOptions, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("invalid argument(s) received, use the 'output' flag for the destination")
	}
	if options.OutputPath == "" {
		return fmt.Errorf("the 'output' flag must be specified")
	}
	return nil
}
