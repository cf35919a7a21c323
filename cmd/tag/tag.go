package tag

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	cmdutil "github.com/scan-io-git/portal-lens/internal/cmd"
	"github.com/scan-io-git/portal-lens/internal/reconcile"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
)

// Tag actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// RunOptions holds the arguments of the tag command.
type RunOptions struct {
	Workspace string `json:"workspace,omitempty"`
	Action    string `json:"action"`
	FindingID int    `json:"finding_id"`
	Name      string `json:"name"`
}

var (
	AppConfig  *config.Config
	logger     hclog.Logger
	tagOptions RunOptions

	exampleTagUsage = `  # Add a tag to finding 1234
  portal-lens tag add 1234 needs-review

  # Remove it again
  portal-lens tag remove 1234 needs-review`
)

// TagCmd adds or removes a tag on a portal finding.
var TagCmd = &cobra.Command{
	Use:                   "tag [--workspace PATH] {add|remove} FINDING_ID TAG",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleTagUsage,
	Short:                 "Add or remove a tag on a finding",
	RunE:                  runTagCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runTagCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	if err := validateTagArgs(&tagOptions, args); err != nil {
		logger.Error("invalid tag arguments", "error", err)
		return errors.NewCommandError(tagOptions, nil, fmt.Errorf("invalid tag arguments: %w", err), errors.ExitInvalidArgs)
	}

	ctx := cmd.Context()
	root, err := cmdutil.ResolveRoot(AppConfig, tagOptions.Workspace)
	if err != nil {
		return errors.NewCommandError(tagOptions, nil, err, errors.ExitInvalidArgs)
	}
	env, err := cmdutil.OpenEnvironment(ctx, AppConfig, logger, root)
	if err != nil {
		return errors.NewCommandError(tagOptions, nil, err, errors.ExitInvalidArgs)
	}
	defer env.Close()

	client, err := env.Portal()
	if err != nil {
		return errors.NewCommandErrorWithMessage(tagOptions, reconcile.UserMessage(err), err, errors.ExitInvalidArgs)
	}

	add := tagOptions.Action == ActionAdd
	if err := env.Mutations(client).Tag(ctx, tagOptions.FindingID, tagOptions.Name, add); err != nil {
		logger.Error("tag command failed", "error", err)
		message := fmt.Sprintf("Failed to %s tag %q on finding %d", tagOptions.Action, tagOptions.Name, tagOptions.FindingID)
		return errors.NewCommandErrorWithMessage(tagOptions, message, err, errors.ExitMutationFailed)
	}

	verb := "added to"
	if !add {
		verb = "removed from"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tag %q %s finding %d\n", tagOptions.Name, verb, tagOptions.FindingID)
	return nil
}

func init() {
	TagCmd.Flags().StringVarP(&tagOptions.Workspace, "workspace", "w", "", "Path to the workspace (defaults to workspace.root or the current directory).")
	TagCmd.Flags().BoolP("help", "h", false, "Show help for the tag command.")
}
