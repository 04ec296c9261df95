package blame

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-analysis/internal/ci"
	"github.com/scan-io-git/scanio-analysis/pkg/blame"
	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/logger"
)

// RunOptions holds flags for the blame command.
type RunOptions struct {
	ReportPath string `json:"report_path,omitempty"`
	Workspace  string `json:"workspace,omitempty"`
	Revision   string `json:"revision,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	PluginPath string `json:"plugin_path,omitempty"`
}

var (
	AppConfig *config.Config
	opts      RunOptions

	exampleBlameUsage = `  # Blame the issues of a report in the current workspace
  scanio-analysis blame --report results/firmware.json --output results/blames.json

  # Blame a specific revision through the blamer plugin
  scanio-analysis blame --report results/firmware.json --revision v1.2.0 --plugin ./git-blamer`

	// BlameCmd attributes the issues of a stored report to commits and authors.
	BlameCmd = &cobra.Command{
		Use:                   "blame --report PATH [--workspace PATH] [--revision REV] [--output PATH] [--plugin PATH]",
		Short:                 "Compute git blame information for the issues of a report",
		Example:               exampleBlameUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runBlame,
	}
)

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runBlame(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "blame")

	resolved := ci.ResolveFromEnvironment(lg, ci.Resolution{Revision: opts.Revision, Workspace: opts.Workspace})
	opts.Revision = resolved.Revision
	opts.Workspace = resolved.Workspace
	if opts.PluginPath == "" && AppConfig != nil {
		opts.PluginPath = AppConfig.Blame.PluginPath
	}

	if err := validate(&opts); err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: %w", err), 1)
	}

	blames, err := Run(cmd.Context(), opts, lg)
	if err != nil {
		lg.Error("blame failed", "error", err)
		return errors.NewCommandError(opts, nil, err, 2)
	}

	fmt.Printf("Blamed %d file(s), %d error message(s)\n", blames.Size(), len(blames.ErrorMessages))
	return nil
}

// Run loads the report, blames its issues and writes the result when an
// output path is set.
func Run(ctx context.Context, o RunOptions, lg hclog.Logger) (*blame.Blames, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := history.ReadReport(o.ReportPath)
	if err != nil {
		return nil, err
	}

	blamer := blame.Resolve(blame.Options{
		Workspace:  o.Workspace,
		Revision:   o.Revision,
		PluginPath: o.PluginPath,
	}, lg.Named("blame"))

	blames, err := blamer.Blame(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("blame interrupted: %w", err)
	}
	for _, message := range blames.ErrorMessages {
		lg.Warn(message)
	}

	if o.OutputPath != "" {
		if err := files.WriteJSON(o.OutputPath, blames); err != nil {
			return nil, err
		}
	}
	return blames, nil
}

func validate(o *RunOptions) error {
	if strings.TrimSpace(o.ReportPath) == "" {
		return fmt.Errorf("--report is required")
	}
	if strings.TrimSpace(o.Workspace) == "" {
		o.Workspace = "."
	}
	for _, path := range []*string{&o.ReportPath, &o.Workspace, &o.OutputPath, &o.PluginPath} {
		expanded, err := files.ExpandPath(*path)
		if err != nil {
			return err
		}
		*path = expanded
	}
	return files.ValidatePath(o.ReportPath)
}

func init() {
	BlameCmd.Flags().StringVar(&opts.ReportPath, "report", "", "Path to a report in JSON format")
	BlameCmd.Flags().StringVar(&opts.Workspace, "workspace", "", "Workspace the issue paths are relative to (defaults to the CI workspace or the current folder)")
	BlameCmd.Flags().StringVar(&opts.Revision, "revision", "", "Revision to blame (defaults to the CI commit or HEAD)")
	BlameCmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Path to write the blames as JSON")
	BlameCmd.Flags().StringVar(&opts.PluginPath, "plugin", "", "Path to a blamer plugin binary")
	BlameCmd.Flags().BoolP("help", "h", false, "Show help for blame command.")
}
