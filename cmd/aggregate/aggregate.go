package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/scanio-analysis/pkg/aggregate"
	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/logger"
)

// RunOptions holds flags for the aggregate command.
type RunOptions struct {
	Axes       []string `json:"axes,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
}

// Axis is one build axis and the report file it produced.
type Axis struct {
	Name string
	Path string
}

var (
	AppConfig *config.Config
	opts      RunOptions

	exampleAggregateUsage = `  # Merge the results of a matrix build
  scanio-analysis aggregate --axis linux=results/linux.json --axis windows=results/windows.json -o results/merged.json`

	// AggregateCmd merges the reports of parallel build axes.
	AggregateCmd = &cobra.Command{
		Use:                   "aggregate --axis NAME=PATH [--axis NAME=PATH...] --output PATH",
		Short:                 "Merge the reports of parallel build axes into one report per tool",
		Example:               exampleAggregateUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runAggregate,
	}
)

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runAggregate(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "aggregate")

	axes, err := parseAxes(opts.Axes)
	if err == nil && strings.TrimSpace(opts.OutputPath) == "" {
		err = fmt.Errorf("--output is required")
	}
	if err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: %w", err), 1)
	}

	merged, err := Run(cmd.Context(), axes, lg)
	if err != nil {
		lg.Error("aggregation failed", "error", err)
		return errors.NewCommandError(opts, nil, err, 2)
	}
	if err := files.WriteJSON(opts.OutputPath, merged); err != nil {
		return errors.NewCommandError(opts, nil, err, 2)
	}

	toolIDs := make([]string, 0, len(merged))
	for toolID := range merged {
		toolIDs = append(toolIDs, toolID)
	}
	sort.Strings(toolIDs)
	for _, toolID := range toolIDs {
		fmt.Printf("%s: %d issues from %d axes\n", toolID, merged[toolID].Size(), len(axes))
	}
	return nil
}

// Run loads the reports of all axes concurrently and merges them per tool.
func Run(ctx context.Context, axes []Axis, lg hclog.Logger) (map[string]*issues.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	names := make([]string, 0, len(axes))
	for _, axis := range axes {
		names = append(names, axis.Name)
	}
	merger := aggregate.NewMerger(names...)

	g, _ := errgroup.WithContext(ctx)
	for _, axis := range axes {
		axis := axis
		g.Go(func() error {
			report, err := history.ReadReport(axis.Path)
			if err != nil {
				return fmt.Errorf("axis %s: %w", axis.Name, err)
			}
			lg.Debug("axis finished", "axis", axis.Name, "issues", report.Size())
			return merger.EndRun(axis.Name, report)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merger.Merge()
}

func parseAxes(raw []string) ([]Axis, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --axis is required")
	}
	axes := make([]Axis, 0, len(raw))
	for _, value := range raw {
		name, path, ok := strings.Cut(value, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --axis %q, expected NAME=PATH", value)
		}
		expanded, err := files.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		axes = append(axes, Axis{Name: name, Path: expanded})
	}
	return axes, nil
}

func init() {
	AggregateCmd.Flags().StringArrayVar(&opts.Axes, "axis", nil, "Axis name and report path as NAME=PATH (repeat for every axis)")
	AggregateCmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Path to write the merged reports as JSON")
	AggregateCmd.Flags().BoolP("help", "h", false, "Show help for aggregate command.")
}
