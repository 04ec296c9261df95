package axivion

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/scan-io-git/scanio-analysis/pkg/issues"
)

// RawIssue is a single dashboard row together with the context needed to
// convert it.
type RawIssue struct {
	Kind         Kind
	Payload      map[string]interface{}
	DashboardURL string
	ProjectDir   string
}

// TransformFunc converts a raw row of one kind into an issue.
type TransformFunc func(raw RawIssue) (issues.Issue, error)

// transformations is the closed set of supported kinds.
var transformations = map[Kind]TransformFunc{
	KindAV: transformArchitectureViolation,
	KindCL: transformClone,
	KindCY: transformCycle,
	KindDE: transformDeadEntity,
	KindMV: transformMetricViolation,
	KindSV: transformStyleViolation,
}

// Transform converts a raw row using the transformation registered for its kind.
func Transform(raw RawIssue) (issues.Issue, error) {
	transform, ok := transformations[raw.Kind]
	if !ok {
		return issues.Issue{}, fmt.Errorf("%w: %q", ErrUnknownKind, raw.Kind)
	}
	return transform(raw)
}

type architectureViolation struct {
	ID                     int    `mapstructure:"id"`
	ViolationType          string `mapstructure:"violationType"`
	ArchitectureSource     string `mapstructure:"architectureSource"`
	ArchitectureSourceType string `mapstructure:"architectureSourceType"`
	ArchitectureTarget     string `mapstructure:"architectureTarget"`
	ArchitectureTargetType string `mapstructure:"architectureTargetType"`
	DependencyType         string `mapstructure:"dependencyType"`
	SourceEntity           string `mapstructure:"sourceEntity"`
	SourceEntityType       string `mapstructure:"sourceEntityType"`
	TargetEntity           string `mapstructure:"targetEntity"`
	TargetEntityType       string `mapstructure:"targetEntityType"`
	SourcePath             string `mapstructure:"sourcePath"`
	SourceLine             int    `mapstructure:"sourceLine"`
}

type clone struct {
	ID          int    `mapstructure:"id"`
	CloneType   int    `mapstructure:"cloneType"`
	LeftLength  int    `mapstructure:"leftLength"`
	LeftPath    string `mapstructure:"leftPath"`
	LeftLine    int    `mapstructure:"leftLine"`
	LeftEndLine int    `mapstructure:"leftEndLine"`
}

type cycle struct {
	ID           int    `mapstructure:"id"`
	SourceEntity string `mapstructure:"sourceEntity"`
	TargetEntity string `mapstructure:"targetEntity"`
	SourcePath   string `mapstructure:"sourcePath"`
	SourceLine   int    `mapstructure:"sourceLine"`
}

type deadEntity struct {
	ID         int    `mapstructure:"id"`
	EntityType string `mapstructure:"entityType"`
	Entity     string `mapstructure:"entity"`
	Path       string `mapstructure:"path"`
	Line       int    `mapstructure:"line"`
}

type metricViolation struct {
	ID          int    `mapstructure:"id"`
	EntityType  string `mapstructure:"entityType"`
	Entity      string `mapstructure:"entity"`
	Value       int    `mapstructure:"value"`
	Max         int    `mapstructure:"max"`
	Min         int    `mapstructure:"min"`
	Description string `mapstructure:"description"`
	Path        string `mapstructure:"path"`
	Line        int    `mapstructure:"line"`
}

type styleViolation struct {
	ID          int    `mapstructure:"id"`
	Message     string `mapstructure:"message"`
	Entity      string `mapstructure:"entity"`
	ErrorNumber string `mapstructure:"errorNumber"`
	Severity    string `mapstructure:"severity"`
	Path        string `mapstructure:"path"`
	Line        int    `mapstructure:"line"`
}

// decodeRow fills row from the payload. Fields absent from the payload, or
// null, keep the values row was initialized with.
func decodeRow(raw RawIssue, row interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           row,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw.Payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRow, raw.Kind, err)
	}
	return nil
}

func transformArchitectureViolation(raw RawIssue) (issues.Issue, error) {
	row := architectureViolation{ID: -1, SourceLine: -1}
	if err := decodeRow(raw, &row); err != nil {
		return issues.Issue{}, err
	}

	var description string
	if row.ViolationType == "Divergence" {
		description = fmt.Sprintf("Unexpected dependency from <i>%s &lt;%s&gt;</i> to <i>%s &lt;%s&gt;</i>"+
			"<p>Cause is a <i>%s</i> dependency from <i>%s &lt;%s&gt;</i> to <i>%s &lt;%s&gt;</i>",
			row.ArchitectureSourceType, row.ArchitectureSource,
			row.ArchitectureTargetType, row.ArchitectureTarget,
			row.DependencyType,
			row.SourceEntityType, row.SourceEntity,
			row.TargetEntityType, row.TargetEntity)
	} else {
		description = fmt.Sprintf("Missing Architecture Dependency from <i>%s &lt;%s&gt;</i> to <i>%s &lt;%s&gt;</i>",
			row.ArchitectureSourceType, row.ArchitectureSource,
			row.ArchitectureTargetType, row.ArchitectureTarget)
	}

	return newBuilder(raw, row.ID).
		WithFileName(row.SourcePath).
		WithLineStart(row.SourceLine).
		WithType(row.ViolationType).
		WithMessage("Architecture Violation").
		WithDescription(description + detailsLink(raw, row.ID)).
		WithSeverity(issues.SeverityHigh).
		Build(), nil
}

func transformClone(raw RawIssue) (issues.Issue, error) {
	row := clone{ID: -1, CloneType: -1, LeftLength: -1, LeftLine: -1, LeftEndLine: -1}
	if err := decodeRow(raw, &row); err != nil {
		return issues.Issue{}, err
	}

	cloneType := fmt.Sprintf("type %d", row.CloneType)
	description := fmt.Sprintf("Left part of clone pair of %s clone of length %dLOC", cloneType, row.LeftLength)

	return newBuilder(raw, row.ID).
		WithFileName(row.LeftPath).
		WithLineStart(row.LeftLine).
		WithLineEnd(row.LeftEndLine).
		WithType(cloneType).
		WithMessage(cloneType + " clone").
		WithDescription(description + detailsLink(raw, row.ID)).
		WithSeverity(issues.SeverityNormal).
		Build(), nil
}

func transformCycle(raw RawIssue) (issues.Issue, error) {
	row := cycle{ID: -1, SourceLine: -1}
	if err := decodeRow(raw, &row); err != nil {
		return issues.Issue{}, err
	}

	description := fmt.Sprintf("Source: %s Target: %s", row.SourceEntity, row.TargetEntity)

	return newBuilder(raw, row.ID).
		WithFileName(row.SourcePath).
		WithLineStart(row.SourceLine).
		WithType("Cycle").
		WithMessage("Call cycle").
		WithDescription(description + detailsLink(raw, row.ID)).
		WithSeverity(issues.SeverityHigh).
		Build(), nil
}

func transformDeadEntity(raw RawIssue) (issues.Issue, error) {
	row := deadEntity{ID: -1, Line: -1}
	if err := decodeRow(raw, &row); err != nil {
		return issues.Issue{}, err
	}

	description := fmt.Sprintf("%s<i>%s</i>", row.EntityType, row.Entity)

	return newBuilder(raw, row.ID).
		WithFileName(row.Path).
		WithLineStart(row.Line).
		WithType("Dead Entity").
		WithMessage("Entity is dead").
		WithDescription(description + detailsLink(raw, row.ID)).
		WithSeverity(issues.SeverityHigh).
		Build(), nil
}

func transformMetricViolation(raw RawIssue) (issues.Issue, error) {
	row := metricViolation{ID: -1, Value: -1, Max: -1, Min: -1, Line: -1}
	if err := decodeRow(raw, &row); err != nil {
		return issues.Issue{}, err
	}

	description := fmt.Sprintf("%s <i>%s</i><p>Val: <b>%d</b><br>Max: %d<br>Min: %d",
		row.EntityType, row.Entity, row.Value, row.Max, row.Min)

	return newBuilder(raw, row.ID).
		WithFileName(row.Path).
		WithLineStart(row.Line).
		WithType(row.Description).
		WithMessage("Metric " + row.Description + " out of valid range").
		WithDescription(description + detailsLink(raw, row.ID)).
		WithSeverity(issues.SeverityHigh).
		Build(), nil
}

func transformStyleViolation(raw RawIssue) (issues.Issue, error) {
	row := styleViolation{ID: -1, Line: -1}
	if err := decodeRow(raw, &row); err != nil {
		return issues.Issue{}, err
	}

	description := fmt.Sprintf("%s <i>%s</i>", row.Message, row.Entity)

	return newBuilder(raw, row.ID).
		WithFileName(row.Path).
		WithLineStart(row.Line).
		WithType(row.ErrorNumber).
		WithMessage("Style violation " + row.ErrorNumber).
		WithDescription(description + detailsLink(raw, row.ID)).
		WithSeverity(styleSeverity(row.Severity)).
		Build(), nil
}

func styleSeverity(severity string) issues.Severity {
	switch severity {
	case "mandatory":
		return issues.SeverityHigh
	case "advisory":
		return issues.SeverityLow
	default:
		return issues.SeverityNormal
	}
}

func newBuilder(raw RawIssue, id int) *issues.Builder {
	return issues.NewBuilder().
		WithDirectory(raw.ProjectDir).
		WithCategory(raw.Kind.String()).
		WithFingerprint(Fingerprint(raw.Kind, id))
}

// Fingerprint is the dashboard identity of an issue. Rows without an id all
// share the fingerprint "<kind>-1".
func Fingerprint(kind Kind, id int) string {
	return fmt.Sprintf("%s%d", kind, id)
}

func detailsLink(raw RawIssue, id int) string {
	return fmt.Sprintf(`<p><a target="_blank" rel="noopener noreferrer" href="%s/issues/%s%d">More details</a>`,
		raw.DashboardURL, raw.Kind, id)
}
