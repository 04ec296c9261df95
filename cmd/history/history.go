package history

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-analysis/internal/store"
	"github.com/scan-io-git/scanio-analysis/pkg/axivion"
	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/logger"
)

// RunOptions holds flags for the history command.
type RunOptions struct {
	Job    string `json:"job,omitempty"`
	ToolID string `json:"tool_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

var (
	AppConfig *config.Config
	opts      RunOptions

	// HistoryCmd prints the recorded results of a job.
	HistoryCmd = &cobra.Command{
		Use:                   "history --job NAME [--tool ID] [--limit N]",
		Short:                 "Show the analysis results recorded for a job",
		Example:               "  scanio-analysis history --job firmware --limit 10",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runHistory,
	}
)

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runHistory(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "history")

	if strings.TrimSpace(opts.Job) == "" {
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: --job is required"), 1)
	}
	if opts.Limit < 0 {
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: --limit must not be negative"), 1)
	}

	folder := config.DefaultStoreFolder
	historyCfg := config.History{}
	if AppConfig != nil {
		historyCfg = AppConfig.History
		folder = config.SetThen(historyCfg.StoreFolder, folder)
	}

	h, err := Load(store.NewStore(folder, lg.Named("store")), opts, historyCfg)
	if err != nil {
		return errors.NewCommandError(opts, nil, err, 2)
	}
	Print(os.Stdout, h, opts.Limit)
	return nil
}

// Load creates the result history of the last run of a job.
func Load(st *store.Store, o RunOptions, cfg config.History) (*history.AnalysisHistory, error) {
	jobHistory, err := st.History(o.Job)
	if err != nil {
		return nil, err
	}
	qualityGate, err := history.ParseQualityGateEvaluationMode(cfg.QualityGateMode)
	if err != nil {
		return nil, err
	}
	jobResult, err := history.ParseJobResultEvaluationMode(cfg.JobResultMode)
	if err != nil {
		return nil, err
	}

	toolID := o.ToolID
	if toolID == "" {
		toolID = axivion.ToolID
	}

	var last history.Run
	if run := jobHistory.Last(); run != nil {
		last = run
	}
	return history.NewAnalysisHistory(last, history.ByID(toolID), history.Options{
		QualityGate: qualityGate,
		JobResult:   jobResult,
	}), nil
}

// Print writes one line per result, newest first.
func Print(w io.Writer, h *history.AnalysisHistory, limit int) {
	results := h.Results(limit)
	if len(results) == 0 {
		fmt.Fprintln(w, "No results recorded")
		return
	}
	fmt.Fprintf(w, "Reference of the last run: %s\n", h.Reference())
	for _, result := range results {
		fmt.Fprintf(w, "%-24s %-8s total=%d new=%d fixed=%d outstanding=%d gate=%s\n",
			result.RunID, result.OverallResult, result.Issues().Size(),
			result.NewSize, result.FixedSize, result.OutstandingSize, result.QualityGateStatus)
	}
}

func init() {
	HistoryCmd.Flags().StringVar(&opts.Job, "job", "", "Job to show the results of")
	HistoryCmd.Flags().StringVar(&opts.ToolID, "tool", "", "Tool id of the results (defaults to "+axivion.ToolID+")")
	HistoryCmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of results, 0 shows all")
	HistoryCmd.Flags().BoolP("help", "h", false, "Show help for history command.")
}
