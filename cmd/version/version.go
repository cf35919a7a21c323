package version

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/portal-lens/pkg/shared"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
)

// Build information, set with -ldflags at release time.
var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"

	asJSON bool
)

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:                   "version [--json]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Print the version number of the application",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersionInfo(cmd.OutOrStdout(), Current())
	},
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// Current returns the build information of the running binary.
func Current() shared.Versions {
	return shared.Versions{
		Version:       CoreVersion,
		GolangVersion: GolangVersion,
		BuildTime:     BuildTime,
	}
}

func printVersionInfo(w io.Writer, v shared.Versions) error {
	if asJSON {
		return shared.PrintResultAsJSON(w, v)
	}
	fmt.Fprintf(w, "Core Version: v%s\n", v.Version)
	fmt.Fprintf(w, "Go Version: %s\n", v.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", v.BuildTime)
	return nil
}

func init() {
	VersionCmd.Flags().BoolVar(&asJSON, "json", false, "Print the version information as JSON.")
}
