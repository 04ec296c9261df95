package delta

import "github.com/scan-io-git/scanio-analysis/pkg/issues"

// Correlator pairs the issues of a current report with the issues of a
// reference report. Every issue is paired at most once.
type Correlator struct {
	Current   []issues.Issue
	Reference []issues.Issue

	currentToReference map[int]int
	referenceToCurrent map[int]int

	processed bool
}

// NewCorrelator creates a Correlator. It is inert until Process is called.
func NewCorrelator(current, reference []issues.Issue) *Correlator {
	return &Correlator{Current: current, Reference: reference}
}

// Process pairs issues in three ordered stages. Issues paired in a stage are
// excluded from later stages. Within a stage current issues are visited in
// report order and take the first unpaired reference issue that matches.
// Reference issues are bucketed by the stage key, so each stage is linear.
//
// Stages:
// 1: fingerprint + file name + start line + end line
// 2: fingerprint
// 3: category + type + file name + start line + message
func (c *Correlator) Process() {
	if c.processed {
		return
	}
	c.currentToReference = make(map[int]int)
	c.referenceToCurrent = make(map[int]int)

	for _, stage := range []int{1, 2, 3} {
		buckets := make(map[matchKey][]int)
		for ri, ref := range c.Reference {
			if _, ok := c.referenceToCurrent[ri]; ok {
				continue
			}
			if key, ok := stageKey(ref, stage); ok {
				buckets[key] = append(buckets[key], ri)
			}
		}

		for ci, cur := range c.Current {
			if _, ok := c.currentToReference[ci]; ok {
				continue
			}
			key, ok := stageKey(cur, stage)
			if !ok {
				continue
			}
			candidates := buckets[key]
			if len(candidates) == 0 {
				continue
			}
			ri := candidates[0]
			buckets[key] = candidates[1:]
			c.currentToReference[ci] = ri
			c.referenceToCurrent[ri] = ci
		}
	}

	c.processed = true
}

type matchKey struct {
	fingerprint string
	fileName    string
	category    string
	issueType   string
	message     string
	lineStart   int
	lineEnd     int
}

// stageKey returns the fields an issue is matched on in a stage. Issues
// without fingerprint take no part in the fingerprint stages.
func stageKey(issue issues.Issue, stage int) (matchKey, bool) {
	switch stage {
	case 1:
		return matchKey{
			fingerprint: issue.Fingerprint,
			fileName:    issue.FileName,
			lineStart:   issue.LineStart,
			lineEnd:     issue.LineEnd,
		}, issue.Fingerprint != ""
	case 2:
		return matchKey{fingerprint: issue.Fingerprint}, issue.Fingerprint != ""
	case 3:
		return matchKey{
			category:  issue.Category,
			issueType: issue.Type,
			fileName:  issue.FileName,
			lineStart: issue.LineStart,
			message:   issue.Message,
		}, true
	default:
		return matchKey{}, false
	}
}

// Pair is a current issue together with its reference counterpart.
type Pair struct {
	Current   issues.Issue
	Reference issues.Issue
}

// Matches returns the paired issues in current report order.
func (c *Correlator) Matches() []Pair {
	c.Process()

	var out []Pair
	for ci, cur := range c.Current {
		if ri, ok := c.currentToReference[ci]; ok {
			out = append(out, Pair{Current: cur, Reference: c.Reference[ri]})
		}
	}
	return out
}

// UnmatchedCurrent returns the current issues without counterpart.
func (c *Correlator) UnmatchedCurrent() []issues.Issue {
	c.Process()

	var out []issues.Issue
	for ci, cur := range c.Current {
		if _, ok := c.currentToReference[ci]; !ok {
			out = append(out, cur)
		}
	}
	return out
}

// UnmatchedReference returns the reference issues without counterpart.
func (c *Correlator) UnmatchedReference() []issues.Issue {
	c.Process()

	var out []issues.Issue
	for ri, ref := range c.Reference {
		if _, ok := c.referenceToCurrent[ri]; !ok {
			out = append(out, ref)
		}
	}
	return out
}
