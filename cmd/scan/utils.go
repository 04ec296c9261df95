package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-analysis/internal/git"
	"github.com/scan-io-git/scanio-analysis/internal/sarif"
	"github.com/scan-io-git/scanio-analysis/internal/store"
	"github.com/scan-io-git/scanio-analysis/pkg/axivion"
	"github.com/scan-io-git/scanio-analysis/pkg/blame"
	"github.com/scan-io-git/scanio-analysis/pkg/delta"
	"github.com/scan-io-git/scanio-analysis/pkg/history"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

// Outcome is what a scan produced and stored.
type Outcome struct {
	Run       *store.RunRecord
	Result    *history.AnalysisResult
	Reference history.Reference
	Gate      history.GateResult
}

// Run imports the dashboard issues, blames them, compares them with the
// reference run and records the result. Only a failing dashboard import or
// store aborts the run.
func Run(ctx context.Context, cfg *config.Config, o RunOptions, dashboard axivion.Dashboard, lg hclog.Logger) (*Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	suite := axivion.NewSuite(axivion.SuiteConfig{
		ProjectURL:                  cfg.Dashboard.ProjectURL,
		BaseDir:                     cfg.Dashboard.BaseDir,
		NamedFilter:                 cfg.Dashboard.NamedFilter,
		IgnoreSuppressedOrJustified: config.BoolOr(cfg.Dashboard.IgnoreSuppressedOrJustified, true),
	}, dashboard, lg.Named("axivion"))

	imported, err := suite.Scan(ctx)
	if err != nil {
		return nil, err
	}

	blamer := blame.Resolve(blame.Options{
		Workspace:  o.Workspace,
		Revision:   o.Revision,
		Disabled:   o.NoBlame || cfg.Blame.Disabled,
		PluginPath: cfg.Blame.PluginPath,
	}, lg.Named("blame"))
	blames, err := blamer.Blame(ctx, imported)
	if err != nil {
		return nil, fmt.Errorf("blame interrupted: %w", err)
	}
	blames.CopyMessagesTo(imported)

	report := issues.RelativizePaths(imported, sourceDirectories(o.Workspace, suite.ProjectDir()))

	st := store.NewStore(cfg.History.StoreFolder, lg.Named("store"))
	jobHistory, err := st.History(o.Job)
	if err != nil {
		return nil, err
	}
	record, err := st.Start(o.Job, o.RunNumber, o.Revision)
	if err != nil {
		return nil, err
	}
	baseline := jobHistory.Append(record)

	reference, err := findReference(st, baseline, cfg.History, o.ReferenceJob)
	if err != nil {
		return nil, err
	}
	report.LogInfo("Reference run: %s", reference)

	diff := delta.Compute(report, reference.Issues(), record.RunID())
	current := diff.Current()
	copyMessages(report, current)

	newSize, fixedSize, outstandingSize := diff.Sizes()
	gate := history.EvaluateQualityGates(cfg.QualityGates, history.NewStatistics(current, diff.New))
	for _, message := range gate.Messages {
		current.LogInfo("%s", message)
	}

	result := &history.AnalysisResult{
		ID:                uuid.New().String(),
		ToolID:            axivion.ToolID,
		CreatedAt:         time.Now().UTC(),
		Report:            current,
		Blames:            blames,
		QualityGateStatus: gate.Status,
		OverallResult:     gate.OverallResult(),
		ReferenceRunID:    reference.RunID(),
		NewSize:           newSize,
		FixedSize:         fixedSize,
		OutstandingSize:   outstandingSize,
	}
	record.AddResult(result)
	record.Result = history.ResultSuccess.Combine(gate.OverallResult())
	if err := st.Save(record); err != nil {
		return nil, err
	}

	if o.OutputPath != "" {
		if err := files.WriteJSON(o.OutputPath, result); err != nil {
			return nil, err
		}
	}
	if o.SarifPath != "" {
		if err := sarif.WriteReport(current, o.SarifPath, sarif.ExportOptions{
			ToolName:  axivion.ToolName,
			Workspace: o.Workspace,
			Blames:    blames,
			NewRunID:  record.RunID(),
		}); err != nil {
			return nil, err
		}
	}

	lg.Info("scan finished", "run", record.RunID(), "issues", current.Size(),
		"new", newSize, "fixed", fixedSize, "outstanding", outstandingSize, "quality_gate", gate.Status)
	return &Outcome{Run: record, Result: result, Reference: reference, Gate: gate}, nil
}

// findReference walks the own history, or the history of referenceJob when set.
func findReference(st *store.Store, baseline *store.Run, cfg config.History, referenceJob string) (history.Reference, error) {
	qualityGate, err := history.ParseQualityGateEvaluationMode(cfg.QualityGateMode)
	if err != nil {
		return history.Reference{}, err
	}
	jobResult, err := history.ParseJobResultEvaluationMode(cfg.JobResultMode)
	if err != nil {
		return history.Reference{}, err
	}
	opts := history.Options{QualityGate: qualityGate, JobResult: jobResult}
	selector := history.ByID(axivion.ToolID)

	if referenceJob == "" {
		return history.FindReference(baseline, selector, opts), nil
	}

	other, err := st.History(referenceJob)
	if err != nil {
		return history.Reference{}, err
	}
	last := other.Last()
	if last == nil {
		return history.Reference{}, nil
	}
	opts.OtherJob = true
	return history.FindReference(last, selector, opts), nil
}

// workspaceRevision returns the HEAD commit of the repository containing the
// workspace, or an empty string when there is none.
func workspaceRevision(workspace string, lg hclog.Logger) string {
	repo, err := git.Open(workspace)
	if err != nil {
		lg.Debug("no repository found for workspace", "workspace", workspace, "error", err)
		return ""
	}
	head, err := repo.ResolveCommit("")
	if err != nil {
		lg.Debug("no revision found for workspace", "workspace", workspace, "error", err)
		return ""
	}
	return head.Hash.String()
}

func sourceDirectories(workspace, baseDir string) []string {
	dirs := []string{issues.CanonicalPath(workspace)}
	if baseDir != "" {
		dirs = append(dirs, issues.CanonicalPath(baseDir))
	}
	return dirs
}

func copyMessages(from, to *issues.Report) {
	to.InfoMessages = append(append([]string{}, from.InfoMessages...), to.InfoMessages...)
	to.ErrorMessages = append(append([]string{}, from.ErrorMessages...), to.ErrorMessages...)
}

func printSummary(o *Outcome) {
	fmt.Printf("Run %s: %d issues (%d new, %d fixed, %d outstanding)\n",
		o.Run.RunID(), o.Result.Issues().Size(), o.Result.NewSize, o.Result.FixedSize, o.Result.OutstandingSize)
	fmt.Printf("Reference: %s\n", o.Reference)
	fmt.Printf("Quality gate: %s\n", o.Result.QualityGateStatus)
}
