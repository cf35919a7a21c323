package reject

import (
	stderrors "errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/portal-lens/internal/annotate"
	cmdutil "github.com/scan-io-git/portal-lens/internal/cmd"
	"github.com/scan-io-git/portal-lens/internal/reconcile"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
)

// RunOptions holds the arguments of the reject command.
type RunOptions struct {
	Workspace string `json:"workspace,omitempty"`
	FindingID int    `json:"finding_id"`
	Force     bool   `json:"force,omitempty"`
}

var (
	AppConfig     *config.Config
	logger        hclog.Logger
	rejectOptions RunOptions

	exampleRejectUsage = `  # Reject finding 1234 as a false positive
  portal-lens reject 1234

  # Reject a finding whose line changed since the last check
  portal-lens reject --force 1234`
)

// RejectCmd marks a finding as rejected on the portal and drops it from the cached findings.
var RejectCmd = &cobra.Command{
	Use:                   "reject [--workspace PATH] FINDING_ID",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRejectUsage,
	Short:                 "Reject a finding on the portal",
	Long: `Set the finding status to rejected and tag it with "rejected_by_developer" and the git
user.email when configured. The finding leaves the cached findings only when every portal
call succeeded. A cached finding whose line no longer matches the workspace is refused
unless --force is given.`,
	RunE: runRejectCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

var errOutdated = stderrors.New("finding is outdated")

func runRejectCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	if err := validateRejectArgs(&rejectOptions, args); err != nil {
		logger.Error("invalid reject arguments", "error", err)
		return errors.NewCommandError(rejectOptions, nil, fmt.Errorf("invalid reject arguments: %w", err), errors.ExitInvalidArgs)
	}

	ctx := cmd.Context()
	root, err := cmdutil.ResolveRoot(AppConfig, rejectOptions.Workspace)
	if err != nil {
		return errors.NewCommandError(rejectOptions, nil, err, errors.ExitInvalidArgs)
	}
	env, err := cmdutil.OpenEnvironment(ctx, AppConfig, logger, root)
	if err != nil {
		return errors.NewCommandError(rejectOptions, nil, err, errors.ExitInvalidArgs)
	}
	defer env.Close()

	if status, ok := env.Staleness(rejectOptions.FindingID); ok && status == annotate.Outdated {
		if !rejectOptions.Force {
			message := fmt.Sprintf("Finding %d is outdated: its line changed since the last check. Run check again or pass --force", rejectOptions.FindingID)
			return errors.NewCommandErrorWithMessage(rejectOptions, message, errOutdated, errors.ExitInvalidArgs)
		}
		logger.Warn("rejecting an outdated finding", "id", rejectOptions.FindingID)
	}

	client, err := env.Portal()
	if err != nil {
		return errors.NewCommandErrorWithMessage(rejectOptions, reconcile.UserMessage(err), err, errors.ExitInvalidArgs)
	}

	removed, err := env.Mutations(client).Reject(ctx, rejectOptions.FindingID)
	if err != nil {
		logger.Error("reject command failed", "id", rejectOptions.FindingID, "error", err)
		message := fmt.Sprintf("Failed to reject finding %d", rejectOptions.FindingID)
		return errors.NewCommandErrorWithMessage(rejectOptions, message, err, errors.ExitMutationFailed)
	}

	out := cmd.OutOrStdout()
	if removed {
		fmt.Fprintf(out, "Finding %d rejected\n", rejectOptions.FindingID)
	} else {
		fmt.Fprintf(out, "Finding %d rejected (it was not in the cached findings)\n", rejectOptions.FindingID)
	}
	return nil
}

func init() {
	RejectCmd.Flags().StringVarP(&rejectOptions.Workspace, "workspace", "w", "", "Path to the workspace (defaults to workspace.root or the current directory).")
	RejectCmd.Flags().BoolVar(&rejectOptions.Force, "force", false, "Reject even when the finding's line changed since the last check.")
	RejectCmd.Flags().BoolP("help", "h", false, "Show help for the reject command.")
}
