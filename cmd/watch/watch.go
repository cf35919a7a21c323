package watch

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	cmdutil "github.com/scan-io-git/portal-lens/internal/cmd"
	"github.com/scan-io-git/portal-lens/internal/metrics"
	"github.com/scan-io-git/portal-lens/internal/reconcile"
	"github.com/scan-io-git/portal-lens/internal/watcher"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
)

// RunOptions holds the arguments of the watch command.
type RunOptions struct {
	Workspace   string        `json:"workspace,omitempty"`
	Interval    time.Duration `json:"interval"`
	MetricsAddr string        `json:"metrics_addr,omitempty"`
	SkipInitial bool          `json:"skip_initial,omitempty"`
}

var (
	AppConfig    *config.Config
	logger       hclog.Logger
	watchOptions RunOptions

	exampleWatchUsage = `  # Re-classify findings while editing and refresh them every 10 minutes
  portal-lens watch --interval 10m

  # Expose Prometheus metrics
  portal-lens watch --metrics-addr 127.0.0.1:9464`
)

// WatchCmd keeps the findings of a workspace up to date while files are edited.
var WatchCmd = &cobra.Command{
	Use:                   "watch [--workspace PATH] [--interval DURATION] [--metrics-addr ADDR] [--skip-initial]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleWatchUsage,
	Short:                 "Watch the workspace and re-classify findings on every edit",
	Long: `Run a pass, then watch the files holding findings. Every edit re-classifies the findings of
the edited file as current or outdated. With an interval, passes are repeated; a pass requested
while another is running joins it instead of starting a second one.`,
	RunE: runWatchCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runWatchCommand(cmd *cobra.Command, args []string) error {
	if err := validateWatchArgs(&watchOptions, args); err != nil {
		logger.Error("invalid watch arguments", "error", err)
		return errors.NewCommandError(watchOptions, nil, fmt.Errorf("invalid watch arguments: %w", err), errors.ExitInvalidArgs)
	}

	ctx := cmd.Context()
	root, err := cmdutil.ResolveRoot(AppConfig, watchOptions.Workspace)
	if err != nil {
		return errors.NewCommandError(watchOptions, nil, err, errors.ExitInvalidArgs)
	}
	env, err := cmdutil.OpenEnvironment(ctx, AppConfig, logger, root)
	if err != nil {
		return errors.NewCommandError(watchOptions, nil, err, errors.ExitInvalidArgs)
	}
	defer env.Close()

	client, err := env.Portal()
	if err != nil {
		return errors.NewCommandErrorWithMessage(watchOptions, reconcile.UserMessage(err), err, errors.ExitInvalidArgs)
	}
	pipeline, err := env.Pipeline(client)
	if err != nil {
		return errors.NewCommandError(watchOptions, nil, fmt.Errorf("invalid filter: %w", err), errors.ExitInvalidArgs)
	}
	coordinator := reconcile.NewCoordinator(pipeline)

	if watchOptions.MetricsAddr != "" {
		metrics.StartServer(ctx, watchOptions.MetricsAddr, logger.Named("metrics"))
	}

	out := cmd.OutOrStdout()
	if !watchOptions.SkipInitial {
		if res, _, err := coordinator.Run(ctx); err != nil {
			fmt.Fprintln(out, reconcile.UserMessage(err))
		} else {
			fmt.Fprintf(out, "Repository %s: %d findings\n", res.Remote.String(), res.Findings)
		}
	}

	w, err := watcher.New(root, env.Store, coordinator, watcher.Options{Interval: watchOptions.Interval}, logger.Named("watcher"))
	if err != nil {
		return errors.NewCommandError(watchOptions, nil, fmt.Errorf("failed to start watcher: %w", err), errors.ExitPassFailed)
	}
	w.OnChange(func(c watcher.Change) {
		if len(c.Classified) == 0 {
			return
		}
		fmt.Fprintf(out, "%s: %d current, %d outdated\n", c.Path, c.Current, c.Outdated)
	})
	if err := w.Start(ctx); err != nil {
		return errors.NewCommandError(watchOptions, nil, err, errors.ExitPassFailed)
	}
	defer w.Stop()

	<-ctx.Done()
	logger.Info("watch command stopped")
	return nil
}

func init() {
	WatchCmd.Flags().StringVarP(&watchOptions.Workspace, "workspace", "w", "", "Path to the workspace (defaults to workspace.root or the current directory).")
	WatchCmd.Flags().DurationVar(&watchOptions.Interval, "interval", 0, "Repeat the pass at this interval (0 disables periodic passes).")
	WatchCmd.Flags().StringVar(&watchOptions.MetricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on, e.g. 127.0.0.1:9464.")
	WatchCmd.Flags().BoolVar(&watchOptions.SkipInitial, "skip-initial", false, "Use the cached findings instead of running a pass at start.")
	WatchCmd.Flags().BoolP("help", "h", false, "Show help for the watch command.")
}
