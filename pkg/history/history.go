package history

import (
	"fmt"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// Options configure the reference resolution.
type Options struct {
	QualityGate QualityGateEvaluationMode
	JobResult   JobResultEvaluationMode
	// OtherJob marks a baseline that belongs to a separate reference job. Its
	// own result is then preferred, before the history of that job is searched.
	OtherJob bool
}

// Reference is the run chosen as reference together with its action. The zero
// value means no reference has been found.
type Reference struct {
	Run    Run
	Action *ResultAction
}

// Found reports whether a reference run exists.
func (r Reference) Found() bool {
	return r.Action != nil && r.Action.Result != nil
}

// Result returns the analysis result of the reference.
func (r Reference) Result() (*AnalysisResult, bool) {
	if !r.Found() {
		return nil, false
	}
	return r.Action.Result, true
}

// RunID returns the id of the reference run, or an empty string.
func (r Reference) RunID() string {
	if r.Run == nil {
		return ""
	}
	return r.Run.ID()
}

// Issues returns the issues of the reference. Without a reference an empty
// report is returned, so every current issue is new.
func (r Reference) Issues() *issues.Report {
	if !r.Found() {
		return issues.NewReport("", "")
	}
	return r.Action.Result.Issues()
}

func (r Reference) String() string {
	if !r.Found() {
		return "no reference"
	}
	return fmt.Sprintf("run %s (%s)", r.Run.ID(), r.Action.Result.ToolID)
}

// FindReference returns the newest run before baseline whose selected action
// passes both gates of opts. With OtherJob set the baseline is checked first,
// without applying the gates.
func FindReference(baseline Run, selector ResultSelector, opts Options) Reference {
	if baseline == nil {
		return Reference{}
	}
	if opts.OtherJob {
		if action, ok := selector.Select(baseline); ok && action.Result != nil {
			return Reference{Run: baseline, Action: action}
		}
	}
	return findRun(baseline.Previous(), selector, opts.QualityGate, opts.JobResult)
}

func findRun(start Run, selector ResultSelector, qualityGate QualityGateEvaluationMode, jobResult JobResultEvaluationMode) Reference {
	for run := start; run != nil; run = run.Previous() {
		action, ok := selector.Select(run)
		if !ok || action.Result == nil {
			continue
		}
		if hasCorrectJobResult(run, action, jobResult) && hasCorrectQualityGateStatus(action, qualityGate) {
			return Reference{Run: run, Action: action}
		}
	}
	return Reference{}
}

// hasCorrectJobResult rejects runs in progress. When the job result is ignored
// a failed run is still accepted if the analysis itself failed it.
func hasCorrectJobResult(run Run, action *ResultAction, mode JobResultEvaluationMode) bool {
	result := run.Result()
	if !result.IsCompleted() {
		return false
	}
	if mode == JobMustBeSuccessful {
		return result == ResultSuccess
	}
	return result.IsBetterThan(ResultFailure) || action.Result.OverallResult.IsWorseOrEqualTo(ResultFailure)
}

func hasCorrectQualityGateStatus(action *ResultAction, mode QualityGateEvaluationMode) bool {
	return mode == IgnoreQualityGate || action.IsSuccessful()
}

// AnalysisHistory gives access to the results of one tool in the history of a
// baseline run. The baseline may still be in progress, so subsequent calls can
// return different results.
type AnalysisHistory struct {
	baseline Run
	selector ResultSelector
	opts     Options
}

// NewAnalysisHistory creates a history starting at baseline.
func NewAnalysisHistory(baseline Run, selector ResultSelector, opts Options) *AnalysisHistory {
	return &AnalysisHistory{baseline: baseline, selector: selector, opts: opts}
}

// BaselineResult returns the result attached to the baseline itself.
func (h *AnalysisHistory) BaselineResult() (*AnalysisResult, bool) {
	if h.baseline == nil {
		return nil, false
	}
	action, ok := h.selector.Select(h.baseline)
	if !ok || action.Result == nil {
		return nil, false
	}
	return action.Result, true
}

// Reference resolves the reference run of the baseline.
func (h *AnalysisHistory) Reference() Reference {
	return FindReference(h.baseline, h.selector, h.opts)
}

// PreviousResult returns the result of the reference run.
func (h *AnalysisHistory) PreviousResult() (*AnalysisResult, bool) {
	return h.Reference().Result()
}

// Iterator returns all results starting with the baseline, ignoring the
// quality gate and the job result.
func (h *AnalysisHistory) Iterator() *ResultIterator {
	return newResultIterator(h.baseline, h.selector)
}

// HasMultipleResults reports whether at least two results are available.
func (h *AnalysisHistory) HasMultipleResults() bool {
	it := h.Iterator()
	for count := 0; it.HasNext(); count++ {
		if count >= 1 {
			return true
		}
		if _, err := it.Next(); err != nil {
			return false
		}
	}
	return false
}

// Results collects at most limit results of the iterator, all when limit is
// not positive.
func (h *AnalysisHistory) Results(limit int) []*AnalysisResult {
	var out []*AnalysisResult
	for it := h.Iterator(); it.HasNext(); {
		if limit > 0 && len(out) >= limit {
			break
		}
		result, err := it.Next()
		if err != nil {
			break
		}
		out = append(out, result)
	}
	return out
}

// ResultIterator walks the results of a history lazily, newest first. It can
// not be restarted.
type ResultIterator struct {
	cursor   Reference
	selector ResultSelector
}

func newResultIterator(baseline Run, selector ResultSelector) *ResultIterator {
	return &ResultIterator{
		cursor:   findRun(baseline, selector, IgnoreQualityGate, IgnoreJobResult),
		selector: selector,
	}
}

// HasNext reports whether Next will return a result.
func (it *ResultIterator) HasNext() bool {
	return it.cursor.Found()
}

// Next returns the current result and advances to the next run with a result.
func (it *ResultIterator) Next() (*AnalysisResult, error) {
	if !it.cursor.Found() {
		return nil, ErrNoMoreElements
	}
	current := it.cursor
	it.cursor = findRun(current.Run.Previous(), it.selector, IgnoreQualityGate, IgnoreJobResult)
	return current.Action.Result, nil
}
