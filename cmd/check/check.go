package check

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	cmdutil "github.com/scan-io-git/portal-lens/internal/cmd"
	"github.com/scan-io-git/portal-lens/internal/reconcile"
	"github.com/scan-io-git/portal-lens/pkg/shared"
	"github.com/scan-io-git/portal-lens/pkg/shared/artifacts"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
)

// RunOptions holds the arguments of the check command.
type RunOptions struct {
	Workspace string `json:"workspace,omitempty"`
	JSON      bool   `json:"json,omitempty"`
	Artifact  bool   `json:"artifact,omitempty"`
}

// Summary is what a successful pass reports.
type Summary struct {
	PassID     string   `json:"pass_id"`
	Repository string   `json:"repository"`
	Assets     []string `json:"assets"`
	Findings   int      `json:"findings"`
	Count      int      `json:"count"`
	Pages      int      `json:"pages"`
	Files      int      `json:"files"`
}

var (
	AppConfig    *config.Config
	logger       hclog.Logger
	checkOptions RunOptions

	exampleCheckUsage = `  # Refresh the findings of the repository in the current directory
  portal-lens check

  # Refresh another checkout and print the summary as JSON
  portal-lens check --workspace ~/src/app --json`
)

// CheckCmd runs one reconciliation pass and refreshes the cached findings.
var CheckCmd = &cobra.Command{
	Use:                   "check [--workspace PATH] [--json] [--artifact]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCheckUsage,
	Short:                 "Fetch the portal findings of the repository and anchor them to the workspace",
	Long: `Resolve the git remote of the workspace, match it to portal assets, fetch every finding page,
capture the text of each finding line and replace the cached findings.`,
	RunE: runCheckCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	if err := validateCheckArgs(&checkOptions, args); err != nil {
		logger.Error("invalid check arguments", "error", err)
		return errors.NewCommandError(checkOptions, nil, fmt.Errorf("invalid check arguments: %w", err), errors.ExitInvalidArgs)
	}

	ctx := cmd.Context()
	root, err := cmdutil.ResolveRoot(AppConfig, checkOptions.Workspace)
	if err != nil {
		return errors.NewCommandError(checkOptions, nil, err, errors.ExitInvalidArgs)
	}

	env, err := cmdutil.OpenEnvironment(ctx, AppConfig, logger, root)
	if err != nil {
		logger.Error("failed to open workspace state", "error", err)
		return errors.NewCommandError(checkOptions, nil, err, errors.ExitInvalidArgs)
	}
	defer env.Close()

	client, err := env.Portal()
	if err != nil {
		return errors.NewCommandErrorWithMessage(checkOptions, reconcile.UserMessage(err), err, errors.ExitInvalidArgs)
	}
	pipeline, err := env.Pipeline(client)
	if err != nil {
		return errors.NewCommandError(checkOptions, nil, fmt.Errorf("invalid filter: %w", err), errors.ExitInvalidArgs)
	}

	res, _, err := reconcile.NewCoordinator(pipeline).Run(ctx)
	if err != nil {
		message := reconcile.UserMessage(err)
		logger.Error("check command failed", "message", message)
		saveArtifact(shared.GenericResult{Args: checkOptions, Status: shared.StatusFailed, Message: message})
		return errors.NewCommandErrorWithMessage(checkOptions, message, err, errors.ExitPassFailed)
	}

	summary := Summary{
		PassID:     res.PassID,
		Repository: res.Remote.String(),
		Findings:   res.Findings,
		Count:      res.Count,
		Pages:      res.Pages,
		Files:      len(env.Store.Groups()),
	}
	for _, a := range res.Assets {
		summary.Assets = append(summary.Assets, a.Value)
	}

	saveArtifact(shared.GenericResult{Args: checkOptions, Result: summary, Status: shared.StatusOK})
	logger.Info("check command completed successfully", "pass_id", summary.PassID)
	return printSummary(cmd.OutOrStdout(), summary)
}

func printSummary(w io.Writer, s Summary) error {
	if checkOptions.JSON {
		return shared.PrintResultAsJSON(w, s)
	}
	_, err := fmt.Fprintf(w, "Repository %s: %d findings in %d files (portal reported %d, %d pages)\n",
		s.Repository, s.Findings, s.Files, s.Count, s.Pages)
	return err
}

func saveArtifact(result shared.GenericResult) {
	if !checkOptions.Artifact {
		return
	}
	dir, err := config.GetArtifactsHome()
	if err != nil {
		logger.Error("failed to resolve artifacts folder", "error", err)
		return
	}
	if _, err := artifacts.SaveArtifactJSON(dir, logger, "check", result); err != nil {
		logger.Error("failed to write artifact", "error", err)
	}
}

func init() {
	CheckCmd.Flags().StringVarP(&checkOptions.Workspace, "workspace", "w", "", "Path to the workspace (defaults to workspace.root or the current directory).")
	CheckCmd.Flags().BoolVar(&checkOptions.JSON, "json", false, "Print the pass summary as JSON.")
	CheckCmd.Flags().BoolVar(&checkOptions.Artifact, "artifact", false, "Save the pass result as a JSON artifact in the home folder.")
	CheckCmd.Flags().BoolP("help", "h", false, "Show help for the check command.")
}
