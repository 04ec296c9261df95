package history

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// GateType selects the issue count a quality gate is compared with.
type GateType string

const (
	GateTotal       GateType = "total"
	GateTotalError  GateType = "total_error"
	GateTotalHigh   GateType = "total_high"
	GateTotalNormal GateType = "total_normal"
	GateTotalLow    GateType = "total_low"
	GateNew         GateType = "new"
	GateNewError    GateType = "new_error"
	GateNewHigh     GateType = "new_high"
	GateNewNormal   GateType = "new_normal"
	GateNewLow      GateType = "new_low"
)

var gateTypeNames = map[GateType]string{
	GateTotal:       "Total (any severity)",
	GateTotalError:  "Total (errors only)",
	GateTotalHigh:   "Total (severity high only)",
	GateTotalNormal: "Total (severity normal only)",
	GateTotalLow:    "Total (severity low only)",
	GateNew:         "New (any severity)",
	GateNewError:    "New (errors only)",
	GateNewHigh:     "New (severity high only)",
	GateNewNormal:   "New (severity normal only)",
	GateNewLow:      "New (severity low only)",
}

// DisplayName returns a human readable name of the gate type.
func (t GateType) DisplayName() string {
	if name, ok := gateTypeNames[t]; ok {
		return name
	}
	return string(t)
}

func ParseGateType(raw string) (GateType, error) {
	t := GateType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := gateTypeNames[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGateType, raw)
	}
	return t, nil
}

// QualityGate fails, or marks the run unstable, once the number of issues
// selected by Type reaches Threshold.
type QualityGate struct {
	Threshold int      `yaml:"threshold" json:"threshold"`
	Type      GateType `yaml:"type" json:"type"`
	Unstable  bool     `yaml:"unstable" json:"unstable"`
}

// Validate checks threshold and type of the gate.
func (g QualityGate) Validate() error {
	if g.Threshold <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, g.Threshold)
	}
	if _, err := ParseGateType(string(g.Type)); err != nil {
		return err
	}
	return nil
}

// Status is the status reported when the gate is violated.
func (g QualityGate) Status() QualityGateStatus {
	if g.Unstable {
		return QualityGateWarning
	}
	return QualityGateFailed
}

// Statistics are the issue counts quality gates are evaluated against.
type Statistics struct {
	Total map[issues.Severity]int
	New   map[issues.Severity]int
}

// NewStatistics counts the issues of the current report and of its new issues.
func NewStatistics(current, newIssues *issues.Report) Statistics {
	return Statistics{Total: countSeverities(current), New: countSeverities(newIssues)}
}

func countSeverities(report *issues.Report) map[issues.Severity]int {
	counts := map[issues.Severity]int{}
	if report == nil {
		return counts
	}
	for _, issue := range report.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// Size returns the count selected by t.
func (s Statistics) Size(t GateType) int {
	switch t {
	case GateTotal:
		return sum(s.Total)
	case GateTotalError:
		return s.Total[issues.SeverityError]
	case GateTotalHigh:
		return s.Total[issues.SeverityHigh]
	case GateTotalNormal:
		return s.Total[issues.SeverityNormal]
	case GateTotalLow:
		return s.Total[issues.SeverityLow]
	case GateNew:
		return sum(s.New)
	case GateNewError:
		return s.New[issues.SeverityError]
	case GateNewHigh:
		return s.New[issues.SeverityHigh]
	case GateNewNormal:
		return s.New[issues.SeverityNormal]
	case GateNewLow:
		return s.New[issues.SeverityLow]
	}
	return 0
}

func sum(counts map[issues.Severity]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// GateResult is the outcome of evaluating a set of quality gates.
type GateResult struct {
	Status   QualityGateStatus
	Messages []string
}

// OverallResult is the build result imposed by the gates.
func (r GateResult) OverallResult() BuildResult {
	return r.Status.BuildResult()
}

// EvaluateQualityGates compares every gate with stats. The worst status wins;
// without gates the status is INACTIVE.
func EvaluateQualityGates(gates []QualityGate, stats Statistics) GateResult {
	result := GateResult{Status: QualityGateInactive}
	if len(gates) == 0 {
		result.Messages = append(result.Messages, "No quality gates have been set - skipping")
		return result
	}

	result.Status = QualityGatePassed
	for _, gate := range gates {
		actual := stats.Size(gate.Type)
		status := QualityGatePassed
		if actual >= gate.Threshold {
			status = gate.Status()
		}
		if status.severity() > result.Status.severity() {
			result.Status = status
		}
		result.Messages = append(result.Messages, fmt.Sprintf("-> %s - %s: %d - Quality Gate: %d",
			status, gate.Type.DisplayName(), actual, gate.Threshold))
	}
	return result
}
