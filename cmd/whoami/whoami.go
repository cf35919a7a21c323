package whoami

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/portal-lens/internal/portal"
	"github.com/scan-io-git/portal-lens/internal/reconcile"
	"github.com/scan-io-git/portal-lens/pkg/shared"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
)

var (
	AppConfig *config.Config
	logger    hclog.Logger
	asJSON    bool
)

// WhoamiCmd checks the portal URL and token by fetching the current profile.
var WhoamiCmd = &cobra.Command{
	Use:                   "whoami [--json]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Show the portal user behind the configured token",
	Args:                  cobra.NoArgs,
	RunE:                  runWhoamiCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runWhoamiCommand(cmd *cobra.Command, args []string) error {
	client, err := portal.New(logger, AppConfig)
	if err != nil {
		return errors.NewCommandErrorWithMessage(nil, reconcile.UserMessage(err), err, errors.ExitInvalidArgs)
	}

	profile, err := client.GetProfile(cmd.Context())
	if err != nil {
		logger.Error("whoami command failed", "error", err)
		return errors.NewCommandErrorWithMessage(nil, reconcile.UserMessage(err), err, errors.ExitPassFailed)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return shared.PrintResultAsJSON(out, profile)
	}
	role := "user"
	if profile.IsStaff {
		role = "staff"
	}
	fmt.Fprintf(out, "%s <%s> (%s) on %s\n", profile.Username, profile.Email, role, client.URL())
	return nil
}

func init() {
	WhoamiCmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON.")
	WhoamiCmd.Flags().BoolP("help", "h", false, "Show help for the whoami command.")
}
