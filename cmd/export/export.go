package export

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/portal-lens/cmd/version"
	cmdutil "github.com/scan-io-git/portal-lens/internal/cmd"
	"github.com/scan-io-git/portal-lens/internal/sarif"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
)

// RunOptions holds the arguments of the export command.
type RunOptions struct {
	Workspace  string `json:"workspace,omitempty"`
	OutputPath string `json:"output_path"`
}

var (
	AppConfig     *config.Config
	logger        hclog.Logger
	exportOptions RunOptions

	exampleExportUsage = `  # Write the cached findings as SARIF to a file
  portal-lens export --output findings.sarif

  # Write to a folder, the file is named portal-lens.sarif
  portal-lens export -o reports/

  # Print to stdout
  portal-lens export -o -`
)

// ExportCmd writes the cached findings as a SARIF 2.1.0 log.
var ExportCmd = &cobra.Command{
	Use:                   "export [--workspace PATH] --output/-o PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleExportUsage,
	Short:                 "Export the cached findings as SARIF",
	RunE:                  runExportCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	if err := validateExportArgs(&exportOptions, args); err != nil {
		logger.Error("invalid export arguments", "error", err)
		return errors.NewCommandError(exportOptions, nil, fmt.Errorf("invalid export arguments: %w", err), errors.ExitInvalidArgs)
	}

	ctx := cmd.Context()
	root, err := cmdutil.ResolveRoot(AppConfig, exportOptions.Workspace)
	if err != nil {
		return errors.NewCommandError(exportOptions, nil, err, errors.ExitInvalidArgs)
	}
	env, err := cmdutil.OpenEnvironment(ctx, AppConfig, logger, root)
	if err != nil {
		return errors.NewCommandError(exportOptions, nil, err, errors.ExitInvalidArgs)
	}
	defer env.Close()

	renderer := env.Renderer(env.PortalURL())
	var link sarif.Linker
	if renderer.PortalURL != "" {
		link = renderer.FindingURL
	}

	toolVersion := version.CoreVersion
	report, err := sarif.NewReport(sarif.ToolMetadata{Name: cmdutil.BinaryName, Version: &toolVersion}, link, logger)
	if err != nil {
		return errors.NewCommandError(exportOptions, nil, err, errors.ExitPassFailed)
	}
	list := env.Store.List()
	report.AddFindings(list)

	if exportOptions.OutputPath == "-" {
		return report.Write(cmd.OutOrStdout())
	}

	path, err := report.Save(exportOptions.OutputPath)
	if err != nil {
		logger.Error("failed to write SARIF report", "error", err)
		return errors.NewCommandError(exportOptions, nil, fmt.Errorf("failed to write SARIF report: %w", err), errors.ExitPassFailed)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d findings exported to %s\n", len(list), path)
	return nil
}

func init() {
	ExportCmd.Flags().StringVarP(&exportOptions.Workspace, "workspace", "w", "", "Path to the workspace (defaults to workspace.root or the current directory).")
	ExportCmd.Flags().StringVarP(&exportOptions.OutputPath, "output", "o", "", "Path to the output file or directory, or - for stdout.")
	ExportCmd.Flags().BoolP("help", "h", false, "Show help for the export command.")
}
