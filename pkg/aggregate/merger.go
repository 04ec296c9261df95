// Package aggregate combines the reports of parallel build axes into one
// report per tool.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

var (
	ErrDuplicateAxis = errors.New("axis has already reported")
	ErrUnknownAxis   = errors.New("axis is not expected")
	ErrIncomplete    = errors.New("not all axes have reported")
	ErrAlreadyMerged = errors.New("results have already been merged")
)

// Merger buffers the reports of all axes of a build. Axes may report
// concurrently and in any order; the merged result only depends on the axis
// names.
type Merger struct {
	mu       sync.Mutex
	expected map[string]bool
	names    []string
	results  map[string][]*issues.Report
	merged   bool
}

// NewMerger creates a merger waiting for the given axes. Without expected axes
// every axis is accepted and Merge can be called at any time.
func NewMerger(expected ...string) *Merger {
	m := &Merger{
		expected: map[string]bool{},
		results:  map[string][]*issues.Report{},
	}
	for _, axis := range expected {
		m.expected[axis] = true
	}
	return m
}

// EndRun records the reports of a finished axis.
func (m *Merger) EndRun(axis string, reports ...*issues.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.merged {
		return ErrAlreadyMerged
	}
	if len(m.expected) > 0 && !m.expected[axis] {
		return fmt.Errorf("%w: %s", ErrUnknownAxis, axis)
	}
	if _, ok := m.results[axis]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAxis, axis)
	}
	copies := make([]*issues.Report, 0, len(reports))
	for _, report := range reports {
		if report != nil {
			copies = append(copies, report.Copy())
		}
	}
	m.results[axis] = copies
	m.names = append(m.names, axis)
	return nil
}

// Names returns the axes that reported so far, in arrival order.
func (m *Merger) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.names...)
}

// Pending returns the expected axes that have not reported yet, sorted.
func (m *Merger) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []string
	for axis := range m.expected {
		if _, ok := m.results[axis]; !ok {
			pending = append(pending, axis)
		}
	}
	sort.Strings(pending)
	return pending
}

// ResultsPerTool groups the buffered reports by tool id and axis.
func (m *Merger) ResultsPerTool() map[string]map[string]*issues.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	return resultsPerTool(m.results)
}

// Merge combines the reports once all expected axes have reported. Merge can
// be called only once.
func (m *Merger) Merge() (map[string]*issues.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.merged {
		return nil, ErrAlreadyMerged
	}
	var pending []string
	for axis := range m.expected {
		if _, ok := m.results[axis]; !ok {
			pending = append(pending, axis)
		}
	}
	if len(pending) > 0 {
		sort.Strings(pending)
		return nil, fmt.Errorf("%w: waiting for %v", ErrIncomplete, pending)
	}

	m.merged = true
	merged := map[string]*issues.Report{}
	for toolID, axes := range resultsPerTool(m.results) {
		merged[toolID] = MergeReports(axes)
	}
	return merged, nil
}

func resultsPerTool(results map[string][]*issues.Report) map[string]map[string]*issues.Report {
	perTool := map[string]map[string]*issues.Report{}
	for axis, reports := range results {
		for _, report := range reports {
			axes, ok := perTool[report.ID]
			if !ok {
				axes = map[string]*issues.Report{}
				perTool[report.ID] = axes
			}
			if existing, ok := axes[axis]; ok {
				existing.AddAll(report)
			} else {
				axes[axis] = report.Copy()
			}
		}
	}
	return perTool
}

// MergeReports appends the reports of all axes in sorted axis order. The
// result carries id and name of the first report.
func MergeReports(axes map[string]*issues.Report) *issues.Report {
	names := make([]string, 0, len(axes))
	for axis := range axes {
		names = append(names, axis)
	}
	sort.Strings(names)

	var merged *issues.Report
	for _, axis := range names {
		report := axes[axis]
		if report == nil {
			continue
		}
		if merged == nil {
			merged = report.CopyEmpty()
		}
		merged.AddAll(report)
	}
	if merged == nil {
		merged = issues.NewReport("", "")
	}
	return merged
}
