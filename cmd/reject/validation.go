package reject

import (
	"fmt"
	"strconv"
)

// validateRejectArgs validates the arguments provided to the reject command and stores the finding id.
func validateRejectArgs(options *RunOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one finding id is expected, got %d arguments", len(args))
	}
	id, err := parseFindingID(args[0])
	if err != nil {
		return err
	}
	options.FindingID = id
	return nil
}

func parseFindingID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("finding id %q is not a number", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("finding id must be positive, got %d", id)
	}
	return id, nil
}
