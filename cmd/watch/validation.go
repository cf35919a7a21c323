package watch

import (
	"fmt"
	"net"
	"time"
)

// MinInterval keeps periodic passes from hammering the portal.
const MinInterval = 30 * time.Second

// validateWatchArgs validates the arguments provided to the watch command.
func validateWatchArgs(options *RunOptions, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("invalid argument(s) received, watch takes no positional arguments")
	}
	if options.Interval < 0 {
		return fmt.Errorf("the 'interval' flag must not be negative")
	}
	if options.Interval > 0 && options.Interval < MinInterval {
		return fmt.Errorf("the 'interval' flag must be at least %s", MinInterval)
	}
	if options.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(options.MetricsAddr); err != nil {
			return fmt.Errorf("invalid 'metrics-addr': %w", err)
		}
	}
	return nil
}
