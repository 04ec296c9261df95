package issues

import (
	"fmt"
	"strings"
)

// Report is an ordered collection of issues together with the info and error
// messages produced while creating it.
type Report struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Issues        []Issue        `json:"issues"`
	InfoMessages  []string       `json:"info_messages"`
	ErrorMessages []string       `json:"error_messages"`
	OriginSizes   map[string]int `json:"origin_sizes,omitempty"`
}

// NewReport creates an empty report for the tool with the given id.
func NewReport(id, name string) *Report {
	return &Report{
		ID:          id,
		Name:        name,
		OriginSizes: map[string]int{},
	}
}

// Add appends issues in the given order.
func (r *Report) Add(issues ...Issue) {
	if r.OriginSizes == nil {
		r.OriginSizes = map[string]int{}
	}
	for _, issue := range issues {
		r.Issues = append(r.Issues, issue)
		if issue.Origin != "" {
			r.OriginSizes[issue.Origin]++
		}
	}
}

// AddAll appends the issues and messages of the other reports.
func (r *Report) AddAll(others ...*Report) {
	for _, other := range others {
		if other == nil {
			continue
		}
		r.Add(other.Issues...)
		r.InfoMessages = append(r.InfoMessages, other.InfoMessages...)
		r.ErrorMessages = append(r.ErrorMessages, other.ErrorMessages...)
	}
}

// LogInfo records an info message.
func (r *Report) LogInfo(format string, args ...interface{}) {
	r.InfoMessages = append(r.InfoMessages, fmt.Sprintf(format, args...))
}

// LogError records an error message.
func (r *Report) LogError(format string, args ...interface{}) {
	r.ErrorMessages = append(r.ErrorMessages, fmt.Sprintf(format, args...))
}

// LogException records an error message followed by the error text.
func (r *Report) LogException(err error, format string, args ...interface{}) {
	r.LogError(format, args...)
	if err != nil {
		r.ErrorMessages = append(r.ErrorMessages, strings.Split(err.Error(), "\n")...)
	}
}

// Size returns the number of issues.
func (r *Report) Size() int {
	return len(r.Issues)
}

// IsEmpty reports whether the report has no issues.
func (r *Report) IsEmpty() bool {
	return len(r.Issues) == 0
}

// HasErrors reports whether errors have been logged.
func (r *Report) HasErrors() bool {
	return len(r.ErrorMessages) > 0
}

// SizeOf returns the number of issues created by origin.
func (r *Report) SizeOf(origin string) int {
	return r.OriginSizes[origin]
}

// Get returns the issue at index i.
func (r *Report) Get(i int) Issue {
	return r.Issues[i]
}

// Filter returns a new report with the issues matching the predicate. Messages are kept.
func (r *Report) Filter(predicate func(Issue) bool) *Report {
	out := r.CopyEmpty()
	out.InfoMessages = append(out.InfoMessages, r.InfoMessages...)
	out.ErrorMessages = append(out.ErrorMessages, r.ErrorMessages...)
	for _, issue := range r.Issues {
		if predicate(issue) {
			out.Add(issue)
		}
	}
	return out
}

// SizeOfSeverity counts the issues with the given severity.
func (r *Report) SizeOfSeverity(severity Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

// Fingerprints returns the fingerprints of all issues in report order.
func (r *Report) Fingerprints() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Fingerprint)
	}
	return out
}

// CopyEmpty returns a report with the same identity but no issues or messages.
func (r *Report) CopyEmpty() *Report {
	return NewReport(r.ID, r.Name)
}

// Copy returns a deep copy of the report.
func (r *Report) Copy() *Report {
	out := r.CopyEmpty()
	out.AddAll(r)
	return out
}
