// Package history resolves reference results from the run history of a job.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/scan-io-git/scanio-analysis/pkg/blame"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// BuildResult is the overall result of a run. Known results are ordered from
// best to worst; ResultUnknown marks a run that is still in progress.
type BuildResult int

const (
	ResultUnknown BuildResult = iota
	ResultSuccess
	ResultUnstable
	ResultFailure
	ResultNotBuilt
	ResultAborted
)

var buildResultNames = map[BuildResult]string{
	ResultUnknown:  "UNKNOWN",
	ResultSuccess:  "SUCCESS",
	ResultUnstable: "UNSTABLE",
	ResultFailure:  "FAILURE",
	ResultNotBuilt: "NOT_BUILT",
	ResultAborted:  "ABORTED",
}

func (r BuildResult) String() string {
	if name, ok := buildResultNames[r]; ok {
		return name
	}
	return buildResultNames[ResultUnknown]
}

// IsCompleted reports whether the run has finished.
func (r BuildResult) IsCompleted() bool {
	return r != ResultUnknown
}

// IsBetterThan reports whether r is a better result than other. Unknown
// results are not comparable.
func (r BuildResult) IsBetterThan(other BuildResult) bool {
	return r.IsCompleted() && other.IsCompleted() && r < other
}

// IsWorseOrEqualTo reports whether r is as bad as other or worse.
func (r BuildResult) IsWorseOrEqualTo(other BuildResult) bool {
	return r.IsCompleted() && other.IsCompleted() && r >= other
}

// Combine returns the worse of both results.
func (r BuildResult) Combine(other BuildResult) BuildResult {
	if !r.IsCompleted() {
		return other
	}
	if other.IsWorseOrEqualTo(r) {
		return other
	}
	return r
}

// ParseBuildResult converts a result name.
func ParseBuildResult(raw string) (BuildResult, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for result, n := range buildResultNames {
		if n == name {
			return result, nil
		}
	}
	return ResultUnknown, fmt.Errorf("unknown build result %q", raw)
}

func (r BuildResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *BuildResult) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseBuildResult(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// QualityGateStatus is the outcome of evaluating the quality gates of a result.
type QualityGateStatus string

const (
	QualityGateInactive QualityGateStatus = "INACTIVE"
	QualityGatePassed   QualityGateStatus = "PASSED"
	QualityGateWarning  QualityGateStatus = "WARNING"
	QualityGateFailed   QualityGateStatus = "FAILED"
)

// IsSuccessful reports whether no gate has been violated.
func (s QualityGateStatus) IsSuccessful() bool {
	return s == QualityGatePassed || s == QualityGateInactive || s == ""
}

// BuildResult maps the status to the result it imposes on the run.
func (s QualityGateStatus) BuildResult() BuildResult {
	switch s {
	case QualityGateFailed:
		return ResultFailure
	case QualityGateWarning:
		return ResultUnstable
	default:
		return ResultSuccess
	}
}

func (s QualityGateStatus) severity() int {
	switch s {
	case QualityGatePassed:
		return 1
	case QualityGateWarning:
		return 2
	case QualityGateFailed:
		return 3
	default:
		return 0
	}
}

// AnalysisResult is the persisted outcome of analysing one run with one tool.
type AnalysisResult struct {
	ID                string            `json:"id"`
	RunID             string            `json:"run_id"`
	ToolID            string            `json:"tool_id"`
	CreatedAt         time.Time         `json:"created_at"`
	Report            *issues.Report    `json:"report"`
	Blames            *blame.Blames     `json:"blames,omitempty"`
	QualityGateStatus QualityGateStatus `json:"quality_gate_status"`
	OverallResult     BuildResult       `json:"overall_result"`
	ReferenceRunID    string            `json:"reference_run_id,omitempty"`
	NewSize           int               `json:"new_size"`
	FixedSize         int               `json:"fixed_size"`
	OutstandingSize   int               `json:"outstanding_size"`
}

// Issues returns the report of the result, never nil.
func (r *AnalysisResult) Issues() *issues.Report {
	if r == nil || r.Report == nil {
		return issues.NewReport("", "")
	}
	return r.Report
}

// ResultAction attaches an analysis result to the run that owns it.
type ResultAction struct {
	Owner  Run
	Result *AnalysisResult
}

// IsSuccessful reports whether the quality gate of the result passed.
func (a *ResultAction) IsSuccessful() bool {
	return a.Result != nil && a.Result.QualityGateStatus.IsSuccessful()
}

// Run is an element of a linear run history.
type Run interface {
	ID() string
	// Previous returns the preceding run, or nil at the start of the history.
	Previous() Run
	// Result returns ResultUnknown while the run is in progress.
	Result() BuildResult
	Actions() []*ResultAction
}
