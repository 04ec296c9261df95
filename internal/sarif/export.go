// Package sarif exports analysis reports as SARIF 2.1.0 documents.
package sarif

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/scanio-analysis/pkg/blame"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
)

const fingerprintKey = "scanioFingerprint/v1"

// ExportOptions control the optional parts of an export.
type ExportOptions struct {
	ToolName       string
	InformationURI string
	// Workspace resolves relative issue paths for the blame lookup.
	Workspace string
	Blames    *blame.Blames
	// NewRunID marks issues first seen in this run as new; other issues are
	// reported as unchanged. Empty disables baseline states.
	NewRunID string
}

// NewReport converts report into a SARIF document with a single run.
func NewReport(report *issues.Report, opts ExportOptions) (*sarif.Report, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	toolName := opts.ToolName
	if toolName == "" {
		toolName = report.Name
	}
	run := sarif.NewRunWithInformationURI(toolName, opts.InformationURI)

	seenRules := map[string]bool{}
	for _, issue := range report.Issues {
		ruleID := ruleID(issue)
		if !seenRules[ruleID] {
			seenRules[ruleID] = true
			run.AddRule(ruleID).
				WithDescription(issue.Category).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: toSarifLevel(issue.Severity),
				})
		}

		result := sarif.NewRuleResult(ruleID).
			WithMessage(sarif.NewTextMessage(issue.Message)).
			WithLevel(toSarifLevel(issue.Severity))
		if issue.HasFileName() {
			result.WithLocations([]*sarif.Location{location(issue)})
		}
		result.PartialFingerprints = map[string]interface{}{fingerprintKey: issue.Fingerprint}
		result.Properties = properties(issue, opts)

		run.AddResult(result)
	}
	reportSarif.AddRun(run)

	return reportSarif, nil
}

// WriteReport exports report to outputPath.
func WriteReport(report *issues.Report, outputPath string, opts ExportOptions) error {
	reportSarif, err := NewReport(report, opts)
	if err != nil {
		return err
	}
	if err := files.CreateFolderIfNotExists(filepath.Dir(outputPath)); err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()

	return reportSarif.PrettyWrite(file)
}

// ReadReport parses a SARIF document written by WriteReport.
func ReadReport(inputPath string) (*sarif.Report, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SARIF report %q: %w", inputPath, err)
	}
	var reportSarif sarif.Report
	if err := json.Unmarshal(data, &reportSarif); err != nil {
		return nil, fmt.Errorf("failed to parse SARIF report %q: %w", inputPath, err)
	}
	return &reportSarif, nil
}

func ruleID(issue issues.Issue) string {
	if issue.Type != "" && issue.Type != issues.UndefinedValue {
		return issue.Type
	}
	return issue.Category
}

func location(issue issues.Issue) *sarif.Location {
	region := sarif.NewRegion()
	if issue.LineStart > 0 {
		region.WithStartLine(issue.LineStart).WithEndLine(issue.LineEnd)
	}
	if issue.ColumnStart > 0 {
		region.WithStartColumn(issue.ColumnStart)
	}
	if issue.ColumnEnd > 0 {
		region.WithEndColumn(issue.ColumnEnd)
	}

	return sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(issues.NormalizePath(issue.FileName))).
			WithRegion(region),
	)
}

func properties(issue issues.Issue, opts ExportOptions) map[string]interface{} {
	props := map[string]interface{}{
		"Level":    toSarifLevel(issue.Severity),
		"Severity": issue.Severity.String(),
		"Category": issue.Category,
	}
	if issue.Description != "" {
		props["Description"] = issue.Description
	}
	if issue.Reference != "" {
		props["Reference"] = issue.Reference
	}
	if opts.NewRunID != "" {
		state := "unchanged"
		if issue.Reference == opts.NewRunID {
			state = "new"
		}
		props["BaselineState"] = state
	}

	if opts.Blames != nil && issue.HasFileName() && issue.LineStart > 0 {
		absolute := issues.CanonicalPath(issue.AbsolutePath(opts.Workspace))
		if relative, ok := issues.RelativePath(absolute, opts.Blames.Workspace); ok {
			if request, ok := opts.Blames.Get(relative); ok {
				props["Commit"] = request.Commit(issue.LineStart)
				props["Author"] = request.Name(issue.LineStart)
				props["Email"] = request.Email(issue.LineStart)
			}
		}
	}
	return props
}

func toSarifLevel(severity issues.Severity) string {
	switch severity {
	case issues.SeverityError, issues.SeverityHigh:
		return "error"
	case issues.SeverityNormal:
		return "warning"
	case issues.SeverityLow:
		return "note"
	default:
		return "none"
	}
}

// RuleIDs returns the sorted rule ids of the first run of a document.
func RuleIDs(reportSarif *sarif.Report) []string {
	if reportSarif == nil || len(reportSarif.Runs) == 0 {
		return nil
	}
	var ids []string
	for _, rule := range reportSarif.Runs[0].Tool.Driver.Rules {
		ids = append(ids, rule.ID)
	}
	sort.Strings(ids)
	return ids
}
