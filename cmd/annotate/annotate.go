package annotate

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/portal-lens/internal/anchor"
	"github.com/scan-io-git/portal-lens/internal/annotate"
	cmdutil "github.com/scan-io-git/portal-lens/internal/cmd"
	"github.com/scan-io-git/portal-lens/pkg/shared"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/errors"
	"github.com/scan-io-git/portal-lens/pkg/shared/files"
)

// RunOptions holds the arguments of the annotate command.
type RunOptions struct {
	Workspace string `json:"workspace,omitempty"`
	File      string `json:"file"`
	Lenses    bool   `json:"lenses,omitempty"`
	JSON      bool   `json:"json,omitempty"`
}

// FileAnnotations is the JSON form of the annotations of one file.
type FileAnnotations struct {
	Path        string           `json:"path"`
	Annotations []AnnotationView `json:"annotations"`
	Lenses      []annotate.Lens  `json:"lenses,omitempty"`
}

// AnnotationView flattens an annotation for output.
type AnnotationView struct {
	Line      int    `json:"line"`
	FindingID int    `json:"finding_id"`
	Severity  string `json:"severity"`
	Status    string `json:"status"`
	Overflow  []int  `json:"overflow,omitempty"`
	Hover     string `json:"hover"`
}

var (
	AppConfig       *config.Config
	logger          hclog.Logger
	annotateOptions RunOptions

	exampleAnnotateUsage = `  # Show the findings of one file with their hover details
  portal-lens annotate src/db/query.go

  # Include reject lenses for findings whose line did not change
  portal-lens annotate --lenses src/db/query.go`
)

// AnnotateCmd renders the cached findings of one file against its current content.
var AnnotateCmd = &cobra.Command{
	Use:                   "annotate [--workspace PATH] [--lenses] [--json] FILE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnnotateUsage,
	Short:                 "Show current and outdated findings of a file",
	Long: `Compare the cached findings of a file with its current content. A finding whose line still
holds the text captured at check time is current, any other is possibly outdated. Several
findings on one line are merged under the most severe one.`,
	RunE: runAnnotateCommand,
}

// Init initializes the global configuration variable and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runAnnotateCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	if err := validateAnnotateArgs(&annotateOptions, args); err != nil {
		logger.Error("invalid annotate arguments", "error", err)
		return errors.NewCommandError(annotateOptions, nil, fmt.Errorf("invalid annotate arguments: %w", err), errors.ExitInvalidArgs)
	}

	if !config.HighlightEnabled(AppConfig) {
		logger.Info("annotations are disabled by personalization.highlight")
		return nil
	}

	ctx := cmd.Context()
	root, err := cmdutil.ResolveRoot(AppConfig, annotateOptions.Workspace)
	if err != nil {
		return errors.NewCommandError(annotateOptions, nil, err, errors.ExitInvalidArgs)
	}
	env, err := cmdutil.OpenEnvironment(ctx, AppConfig, logger, root)
	if err != nil {
		return errors.NewCommandError(annotateOptions, nil, err, errors.ExitInvalidArgs)
	}
	defer env.Close()

	abs, err := filepath.Abs(annotateOptions.File)
	if err != nil {
		return errors.NewCommandError(annotateOptions, nil, err, errors.ExitInvalidArgs)
	}
	rel := files.RelativeToRoot(root, abs)

	group := env.Store.Group(rel)
	var doc *anchor.File
	if len(group) > 0 {
		if doc, err = anchor.ReadFile(abs); err != nil {
			logger.Warn("file is not readable, its findings are outdated", "path", rel, "error", err)
			doc = nil
		}
	}

	renderer := env.Renderer(env.PortalURL())
	result := FileAnnotations{Path: rel, Annotations: []AnnotationView{}}
	for _, a := range renderer.Annotate(group, doc) {
		view := AnnotationView{
			Line:      a.Line,
			FindingID: a.Primary.Finding.ID,
			Severity:  a.Severity().String(),
			Status:    a.Status().String(),
			Hover:     a.Hover,
		}
		for _, o := range a.Overflow {
			view.Overflow = append(view.Overflow, o.Finding.ID)
		}
		result.Annotations = append(result.Annotations, view)
	}
	if annotateOptions.Lenses {
		result.Lenses = renderer.Lenses(group, doc)
	}

	logger.Debug("file annotated", "path", rel, "findings", len(group), "annotations", len(result.Annotations))

	out := cmd.OutOrStdout()
	if annotateOptions.JSON {
		return shared.PrintResultAsJSON(out, result)
	}
	printAnnotations(out, result)
	return nil
}

func printAnnotations(w io.Writer, result FileAnnotations) {
	if len(result.Annotations) == 0 {
		fmt.Fprintf(w, "No findings for %s\n", result.Path)
		return
	}
	for i, a := range result.Annotations {
		if i > 0 {
			fmt.Fprintln(w)
		}
		more := ""
		if len(a.Overflow) > 0 {
			more = fmt.Sprintf(" (+%d more)", len(a.Overflow))
		}
		fmt.Fprintf(w, "%s:%d [%s] %s%s\n\n%s\n", result.Path, a.Line, a.Status, a.Severity, more, a.Hover)
	}
	if len(result.Lenses) > 0 {
		fmt.Fprintln(w)
		for _, l := range result.Lenses {
			fmt.Fprintf(w, "%s:%d %s: %s\n", result.Path, l.Line, l.Title, l.Command)
		}
	}
}

func init() {
	AnnotateCmd.Flags().StringVarP(&annotateOptions.Workspace, "workspace", "w", "", "Path to the workspace (defaults to workspace.root or the current directory).")
	AnnotateCmd.Flags().BoolVar(&annotateOptions.Lenses, "lenses", false, "Also list reject lenses for current findings.")
	AnnotateCmd.Flags().BoolVar(&annotateOptions.JSON, "json", false, "Print the annotations as JSON.")
	AnnotateCmd.Flags().BoolP("help", "h", false, "Show help for the annotate command.")
}
