package store

import (
	"github.com/scan-io-git/scanio-analysis/pkg/history"
)

// JobHistory is the ordered list of runs of one job, oldest first.
type JobHistory struct {
	runs []*Run
}

// Append adds record as the newest run and returns it.
func (h *JobHistory) Append(record *RunRecord) *Run {
	run := &Run{record: record}
	if len(h.runs) > 0 {
		run.previous = h.runs[len(h.runs)-1]
	}
	h.runs = append(h.runs, run)
	return run
}

// Last returns the newest run, or nil for an empty history.
func (h *JobHistory) Last() *Run {
	if len(h.runs) == 0 {
		return nil
	}
	return h.runs[len(h.runs)-1]
}

// Get returns the run with the given number.
func (h *JobHistory) Get(number int) (*Run, bool) {
	for _, run := range h.runs {
		if run.record.Number == number {
			return run, true
		}
	}
	return nil, false
}

// Len returns the number of runs.
func (h *JobHistory) Len() int {
	return len(h.runs)
}

// Run adapts a record to history.Run.
type Run struct {
	record   *RunRecord
	previous *Run
}

var _ history.Run = (*Run)(nil)

func (r *Run) ID() string {
	return r.record.RunID()
}

func (r *Run) Previous() history.Run {
	if r.previous == nil {
		return nil
	}
	return r.previous
}

func (r *Run) Result() history.BuildResult {
	return r.record.Result
}

func (r *Run) Actions() []*history.ResultAction {
	actions := make([]*history.ResultAction, 0, len(r.record.Results))
	for _, result := range r.record.Results {
		actions = append(actions, &history.ResultAction{Owner: r, Result: result})
	}
	return actions
}

// Record returns the underlying record.
func (r *Run) Record() *RunRecord {
	return r.record
}
