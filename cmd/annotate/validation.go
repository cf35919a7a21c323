package annotate

import (
	"fmt"
	"os"
	"strings"
)

// validateAnnotateArgs validates the arguments provided to the annotate command.
// A file that does not exist is accepted: its findings are reported as outdated.
func validateAnnotateArgs(options *RunOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one file is expected, got %d arguments", len(args))
	}
	file := strings.TrimSpace(args[0])
	if file == "" {
		return fmt.Errorf("file path must not be empty")
	}
	if info, err := os.Stat(file); err == nil && info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", file)
	}
	options.File = file
	return nil
}
