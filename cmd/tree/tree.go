package tree

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/portal-lens/internal/annotate"
	cmdutil "github.com/scan-io-git/portal-lens/internal/cmd"
	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/pkg/shared"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
)

// RunOptions holds the arguments of the tree command.
type RunOptions struct {
	Workspace string `json:"workspace,omitempty"`
	Severity  string `json:"severity,omitempty"`
	JSON      bool   `json:"json,omitempty"`

	severity *findings.Severity
}

var (
	AppConfig   *config.Config
	logger      hclog.Logger
	treeOptions RunOptions

	exampleTreeUsage = `  # Show cached findings grouped by file
  portal-lens tree

  # Only critical findings
  portal-lens tree --severity critical`
)

// TreeCmd prints the cached findings grouped by file.
var TreeCmd = &cobra.Command{
	Use:                   "tree [--workspace PATH] [--severity LEVEL] [--json]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleTreeUsage,
	Short:                 "Show the cached findings grouped by file",
	Long:                  "Show the findings of the last check grouped by file, without contacting the portal.",
	RunE:                  runTreeCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runTreeCommand(cmd *cobra.Command, args []string) error {
	if err := validateTreeArgs(&treeOptions, args); err != nil {
		logger.Error("invalid tree arguments", "error", err)
		return errors.NewCommandError(treeOptions, nil, fmt.Errorf("invalid tree arguments: %w", err), errors.ExitInvalidArgs)
	}

	ctx := cmd.Context()
	root, err := cmdutil.ResolveRoot(AppConfig, treeOptions.Workspace)
	if err != nil {
		return errors.NewCommandError(treeOptions, nil, err, errors.ExitInvalidArgs)
	}
	env, err := cmdutil.OpenEnvironment(ctx, AppConfig, logger, root)
	if err != nil {
		return errors.NewCommandError(treeOptions, nil, err, errors.ExitInvalidArgs)
	}
	defer env.Close()

	nodes := annotate.Tree(env.Store.Groups(), treeOptions.severity)
	out := cmd.OutOrStdout()

	if treeOptions.JSON {
		return shared.PrintResultAsJSON(out, nodes)
	}
	if len(nodes) == 0 {
		repository, err := env.State.RepositoryURL(ctx)
		if err != nil || repository == "" {
			repository = root
		}
		fmt.Fprintf(out, "No findings to show for repository %s\n", repository)
		return nil
	}
	printTree(out, nodes, env.Store.Get)
	return nil
}

func printTree(w io.Writer, nodes []annotate.TreeNode, lookup func(int) (findings.Finding, bool)) {
	for _, file := range nodes {
		fmt.Fprintln(w, file.Label)
		for _, child := range file.Children {
			name := ""
			if f, ok := lookup(child.FindingID); ok {
				name = f.Name
			}
			fmt.Fprintf(w, "  %s  #%d %s\n", child.Label, child.FindingID, name)
		}
	}
}

func init() {
	TreeCmd.Flags().StringVarP(&treeOptions.Workspace, "workspace", "w", "", "Path to the workspace (defaults to workspace.root or the current directory).")
	TreeCmd.Flags().StringVarP(&treeOptions.Severity, "severity", "s", "", "Only show findings of this severity (Critical, High, Medium, Low, Info).")
	TreeCmd.Flags().BoolVar(&treeOptions.JSON, "json", false, "Print the tree as JSON.")
	TreeCmd.Flags().BoolP("help", "h", false, "Show help for the tree command.")
}
