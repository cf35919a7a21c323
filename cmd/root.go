package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/portal-lens/cmd/annotate"
	"github.com/scan-io-git/portal-lens/cmd/check"
	"github.com/scan-io-git/portal-lens/cmd/export"
	"github.com/scan-io-git/portal-lens/cmd/reject"
	"github.com/scan-io-git/portal-lens/cmd/tag"
	"github.com/scan-io-git/portal-lens/cmd/tree"
	"github.com/scan-io-git/portal-lens/cmd/version"
	"github.com/scan-io-git/portal-lens/cmd/watch"
	"github.com/scan-io-git/portal-lens/cmd/whoami"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
	"github.com/scan-io-git/portal-lens/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "portal-lens [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Portal Lens shows vulnerability portal findings next to the code they point at.",
		Long: `Portal Lens resolves the portal assets of a git workspace, fetches their findings, anchors
	them to source lines and keeps them current while the code is edited.
	`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "Path to the configuration file.")
	rootCmd.AddCommand(
		version.VersionCmd,
		check.CheckCmd,
		reject.RejectCmd,
		tag.TagCmd,
		whoami.WhoamiCmd,
		tree.TreeCmd,
		annotate.AnnotateCmd,
		export.ExportCmd,
		watch.WatchCmd,
	)
}

// Execute runs the selected command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errors.ExitCode(err)
	}
	return 0
}

func initConfig(cmd *cobra.Command, _ []string) error {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		return errors.NewCommandError(cfgFile, nil, fmt.Errorf("failed to load config: %w", err), errors.ExitInvalidArgs)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return errors.NewCommandError(cfgFile, nil, err, errors.ExitInvalidArgs)
	}

	version.Init(AppConfig)
	check.Init(AppConfig, logger.NewLogger(AppConfig, "check"))
	reject.Init(AppConfig, logger.NewLogger(AppConfig, "reject"))
	tag.Init(AppConfig, logger.NewLogger(AppConfig, "tag"))
	whoami.Init(AppConfig, logger.NewLogger(AppConfig, "whoami"))
	tree.Init(AppConfig, logger.NewLogger(AppConfig, "tree"))
	annotate.Init(AppConfig, logger.NewLogger(AppConfig, "annotate"))
	export.Init(AppConfig, logger.NewLogger(AppConfig, "export"))
	watch.Init(AppConfig, logger.NewLogger(AppConfig, "watch"))
	return nil
}
