// Package delta splits the issues of a report into new, fixed and
// outstanding issues relative to a reference report.
package delta

import "github.com/scan-io-git/scanio-analysis/pkg/issues"

// Difference is the outcome of comparing a report with its reference.
type Difference struct {
	New         *issues.Report
	Fixed       *issues.Report
	Outstanding *issues.Report
}

// Compute compares current with reference. New issues are tagged with
// currentRunID, outstanding issues keep the run reference of the issue they
// correspond to. A nil reference makes every issue new.
func Compute(current, reference *issues.Report, currentRunID string) Difference {
	if current == nil {
		current = issues.NewReport("", "")
	}
	if reference == nil {
		reference = current.CopyEmpty()
	}

	diff := Difference{
		New:         current.CopyEmpty(),
		Fixed:       current.CopyEmpty(),
		Outstanding: current.CopyEmpty(),
	}

	c := NewCorrelator(current.Issues, reference.Issues)
	for _, pair := range c.Matches() {
		issue := pair.Current
		if pair.Reference.Reference != "" {
			issue = issue.WithReference(pair.Reference.Reference)
		}
		diff.Outstanding.Add(issue)
	}
	for _, issue := range c.UnmatchedCurrent() {
		diff.New.Add(issue.WithReference(currentRunID))
	}
	diff.Fixed.Add(c.UnmatchedReference()...)
	return diff
}

// Sizes returns the number of new, fixed and outstanding issues.
func (d Difference) Sizes() (newSize, fixedSize, outstandingSize int) {
	return d.New.Size(), d.Fixed.Size(), d.Outstanding.Size()
}

// Current returns the issues of the current report with their references
// applied: outstanding issues first, then new issues.
func (d Difference) Current() *issues.Report {
	out := d.Outstanding.CopyEmpty()
	out.Add(d.Outstanding.Issues...)
	out.Add(d.New.Issues...)
	return out
}
