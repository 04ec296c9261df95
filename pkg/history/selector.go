package history

import (
	"fmt"
	"strings"
)

// ResultSelector picks the action of interest from a run.
type ResultSelector interface {
	Select(run Run) (*ResultAction, bool)
}

// SelectorFunc adapts a function to ResultSelector.
type SelectorFunc func(run Run) (*ResultAction, bool)

func (f SelectorFunc) Select(run Run) (*ResultAction, bool) {
	return f(run)
}

// ByID selects the first action whose result was produced by toolID.
func ByID(toolID string) ResultSelector {
	return SelectorFunc(func(run Run) (*ResultAction, bool) {
		if run == nil {
			return nil, false
		}
		for _, action := range run.Actions() {
			if action != nil && action.Result != nil && action.Result.ToolID == toolID {
				return action, true
			}
		}
		return nil, false
	})
}

// QualityGateEvaluationMode decides whether runs that violated their quality
// gate can serve as reference.
type QualityGateEvaluationMode int

const (
	IgnoreQualityGate QualityGateEvaluationMode = iota
	SuccessfulQualityGate
)

func (m QualityGateEvaluationMode) String() string {
	if m == SuccessfulQualityGate {
		return "SUCCESSFUL_QUALITY_GATE"
	}
	return "IGNORE_QUALITY_GATE"
}

// ParseQualityGateEvaluationMode accepts the mode name, case insensitive. An
// empty value selects IGNORE_QUALITY_GATE.
func ParseQualityGateEvaluationMode(raw string) (QualityGateEvaluationMode, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "IGNORE_QUALITY_GATE":
		return IgnoreQualityGate, nil
	case "SUCCESSFUL_QUALITY_GATE":
		return SuccessfulQualityGate, nil
	}
	return IgnoreQualityGate, fmt.Errorf("%w: quality gate mode %q", ErrUnknownMode, raw)
}

// JobResultEvaluationMode decides whether runs with a non successful overall
// result can serve as reference.
type JobResultEvaluationMode int

const (
	IgnoreJobResult JobResultEvaluationMode = iota
	JobMustBeSuccessful
)

func (m JobResultEvaluationMode) String() string {
	if m == JobMustBeSuccessful {
		return "JOB_MUST_BE_SUCCESSFUL"
	}
	return "IGNORE_JOB_RESULT"
}

// ParseJobResultEvaluationMode accepts the mode name, case insensitive. An
// empty value selects IGNORE_JOB_RESULT.
func ParseJobResultEvaluationMode(raw string) (JobResultEvaluationMode, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "IGNORE_JOB_RESULT":
		return IgnoreJobResult, nil
	case "JOB_MUST_BE_SUCCESSFUL":
		return JobMustBeSuccessful, nil
	}
	return IgnoreJobResult, fmt.Errorf("%w: job result mode %q", ErrUnknownMode, raw)
}
