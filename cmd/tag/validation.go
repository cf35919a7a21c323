package tag

import (
	"fmt"
	"strconv"
	"strings"
)

// validateTagArgs validates the arguments provided to the tag command and fills options.
func validateTagArgs(options *RunOptions, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected an action, a finding id and a tag, got %d arguments", len(args))
	}

	action := strings.ToLower(args[0])
	if action != ActionAdd && action != ActionRemove {
		return fmt.Errorf("unknown action %q, use %q or %q", args[0], ActionAdd, ActionRemove)
	}

	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return fmt.Errorf("finding id %q must be a positive number", args[1])
	}

	name := strings.TrimSpace(args[2])
	if name == "" {
		return fmt.Errorf("tag must not be empty")
	}

	options.Action = action
	options.FindingID = id
	options.Name = name
	return nil
}
