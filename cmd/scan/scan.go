package scan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-analysis/internal/ci"
	"github.com/scan-io-git/scanio-analysis/pkg/axivion"
	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/httpclient"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/logger"
)

// RunOptions holds flags for the scan command.
type RunOptions struct {
	Workspace    string `json:"workspace,omitempty"`
	Job          string `json:"job,omitempty"`
	RunNumber    int    `json:"run_number,omitempty"`
	Revision     string `json:"revision,omitempty"`
	ReferenceJob string `json:"reference_job,omitempty"`
	OutputPath   string `json:"output_path,omitempty"`
	SarifPath    string `json:"sarif_path,omitempty"`
	NoBlame      bool   `json:"no_blame,omitempty"`
	FailOnGate   bool   `json:"fail_on_gate,omitempty"`
}

var (
	AppConfig *config.Config
	opts      RunOptions

	exampleScanUsage = `  # Import the dashboard issues of the current Jenkins build
  scanio-analysis scan --config analysis.yml

  # Run outside of CI with explicit job and workspace
  scanio-analysis scan --job firmware --workspace /src/firmware --output results/firmware.json

  # Compare against the last run of another job and export SARIF
  scanio-analysis scan --job firmware-pr --reference-job firmware --sarif results/firmware.sarif`

	// ScanCmd imports the issues of the configured dashboard project.
	ScanCmd = &cobra.Command{
		Use:                   "scan [--job NAME] [--workspace PATH] [--revision REV] [--reference-job NAME] [--output PATH] [--sarif PATH]",
		Short:                 "Import dashboard issues and compare them with the reference run",
		Example:               exampleScanUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runScan,
	}
)

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runScan(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "scan")

	resolved := ci.ResolveFromEnvironment(lg, ci.Resolution{
		JobName:   opts.Job,
		RunNumber: opts.RunNumber,
		Revision:  opts.Revision,
		Workspace: opts.Workspace,
	})
	opts.Job = resolved.JobName
	opts.RunNumber = resolved.RunNumber
	opts.Revision = resolved.Revision
	opts.Workspace = resolved.Workspace
	if opts.ReferenceJob == "" && AppConfig != nil {
		opts.ReferenceJob = AppConfig.History.ReferenceJob
	}

	if err := validate(&opts, AppConfig); err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: %w", err), 1)
	}
	if opts.Revision == "" {
		opts.Revision = workspaceRevision(opts.Workspace, lg)
	}

	user, password := config.Credentials(nil)
	client := httpclient.InitializeRestyClient(lg.Named("http"), AppConfig)
	dashboard := axivion.NewRemoteDashboard(client, AppConfig.Dashboard.ProjectURL, axivion.Credentials{
		Username: user,
		Password: password,
	}, AppConfig.Dashboard.NamedFilter)

	outcome, err := Run(cmd.Context(), AppConfig, opts, dashboard, lg)
	if err != nil {
		lg.Error("scan failed", "error", err)
		return errors.NewCommandError(opts, nil, err, 2)
	}

	printSummary(outcome)

	if opts.FailOnGate && outcome.Result.QualityGateStatus == history.QualityGateFailed {
		return errors.NewCommandError(opts, outcome.Result, fmt.Errorf("quality gate failed"), 3)
	}
	return nil
}

func init() {
	ScanCmd.Flags().StringVar(&opts.Workspace, "workspace", "", "Workspace the issues are resolved against (defaults to the CI workspace or the current folder)")
	ScanCmd.Flags().StringVar(&opts.Job, "job", "", "Job the run is recorded under (defaults to the CI job name)")
	ScanCmd.Flags().IntVar(&opts.RunNumber, "run-number", 0, "Number of the run (defaults to the CI build number or the next free number)")
	ScanCmd.Flags().StringVar(&opts.Revision, "revision", "", "Revision to blame (defaults to the CI commit or HEAD)")
	ScanCmd.Flags().StringVar(&opts.ReferenceJob, "reference-job", "", "Use the last run of another job as reference")
	ScanCmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Path to write the analysis result as JSON")
	ScanCmd.Flags().StringVar(&opts.SarifPath, "sarif", "", "Path to write the issues as SARIF")
	ScanCmd.Flags().BoolVar(&opts.NoBlame, "no-blame", false, "Skip git blame")
	ScanCmd.Flags().BoolVar(&opts.FailOnGate, "fail-on-quality-gate", false, "Exit with code 3 when a quality gate fails")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for scan command.")
}
